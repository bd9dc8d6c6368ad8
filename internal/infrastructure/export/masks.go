package export

import (
	"context"
	"os"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

const (
	maskSuffix = "_masks.npz"
	maskEntry  = "masks.npy"
)

// MaskWriter сохраняет маску меток в сжатый архив .npz.
type MaskWriter struct {
	outDir string
}

func NewMaskWriter(outDir string) *MaskWriter {
	return &MaskWriter{outDir: outDir}
}

func (w *MaskWriter) Name() string { return "masks" }

// Write пишет <stem>_masks.npz с единственным массивом int32 формы (H, W).
func (w *MaskWriter) Write(_ context.Context, res *entity.Result) (string, error) {
	path, err := artifactPath(w.outDir, res.Record, maskSuffix)
	if err != nil {
		return "", err
	}
	if err := WriteMasks(path, res.Mask); err != nil {
		return "", err
	}
	return path, nil
}

// WriteMasks записывает маску в архив по указанному пути.
func WriteMasks(path string, mask *entity.LabelMask) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	zw := zip.NewWriter(f)
	entry, err := zw.CreateHeader(&zip.FileHeader{Name: maskEntry, Method: zip.Deflate})
	if err != nil {
		return errors.Wrap(err, "create npz entry")
	}
	if err := mask.Tensor().WriteNpy(entry); err != nil {
		return errors.Wrap(err, "encode masks")
	}
	return errors.Wrap(zw.Close(), "finish npz")
}

// ReadMasks читает маску, сохранённую MaskWriter.
func ReadMasks(path string) (*entity.LabelMask, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != maskEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open %s entry", maskEntry)
		}
		defer rc.Close()

		t := new(tensor.Dense)
		if err := t.ReadNpy(rc); err != nil {
			return nil, errors.Wrap(err, "decode masks")
		}
		if t.Dims() != 2 {
			return nil, errors.Errorf("masks have shape %v, want (H, W)", t.Shape())
		}
		labels, ok := t.Data().([]int32)
		if !ok {
			return nil, errors.Errorf("masks have dtype %v, want int32", t.Dtype())
		}
		return entity.NewLabelMask(t.Shape()[1], t.Shape()[0], labels)
	}
	return nil, errors.Errorf("%s has no %s entry", path, maskEntry)
}

var _ port.ResultWriter = (*MaskWriter)(nil)
