package export

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

const (
	roiSuffix      = "_rois.zip"
	roiHeaderSize  = 64
	roiVersion     = 228
	roiTypePolygon = 0

	// допуск упрощения контура в пикселях
	outlineEpsilon = 0.5
)

// ROIWriter сохраняет контуры объектов в архив ImageJ.
type ROIWriter struct {
	outDir string
}

func NewROIWriter(outDir string) *ROIWriter {
	return &ROIWriter{outDir: outDir}
}

func (w *ROIWriter) Name() string { return "rois" }

// Write пишет <stem>_rois.zip с одним полигоном на метку.
// Если объектов нет, файл не создаётся.
func (w *ROIWriter) Write(_ context.Context, res *entity.Result) (string, error) {
	if res.Count == 0 {
		return "", nil
	}
	regions := res.Mask.Regions()
	if len(regions) == 0 {
		return "", nil
	}

	path, err := artifactPath(w.outDir, res.Record, roiSuffix)
	if err != nil {
		return "", err
	}
	if err := writeROIArchive(path, res.Mask, regions); err != nil {
		return "", err
	}
	return path, nil
}

func writeROIArchive(path string, mask *entity.LabelMask, regions []entity.Region) (err error) {
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
	for _, region := range regions {
		outline := SimplifyOutline(TraceOutline(mask, region), outlineEpsilon)
		data, err := EncodeROI(outline)
		if err != nil {
			return errors.Wrapf(err, "encode roi %d", region.Label)
		}

		entry, err := zw.CreateHeader(&zip.FileHeader{Name: ROIEntryName(region), Method: zip.Deflate})
		if err != nil {
			return errors.Wrapf(err, "create roi entry %d", region.Label)
		}
		if _, err := entry.Write(data); err != nil {
			return errors.Wrapf(err, "write roi %d", region.Label)
		}
	}
	return errors.Wrap(zw.Close(), "finish roi archive")
}

// ROIEntryName возвращает имя файла в архиве: метка и центр рамки (y, x).
func ROIEntryName(region entity.Region) string {
	cx, cy := region.Center()
	return fmt.Sprintf("%04d-%04d-%04d.roi", region.Label, cy, cx)
}

// EncodeROI кодирует полигон в бинарный формат ImageJ .roi.
// Заголовок 64 байта big-endian, затем x и y вершин относительно рамки.
func EncodeROI(points []image.Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, errors.New("empty polygon")
	}
	if len(points) > 0xFFFF {
		return nil, errors.Errorf("polygon has %d points", len(points))
	}

	bounds := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bounds.Min.X = min(bounds.Min.X, p.X)
		bounds.Min.Y = min(bounds.Min.Y, p.Y)
		bounds.Max.X = max(bounds.Max.X, p.X)
		bounds.Max.Y = max(bounds.Max.Y, p.Y)
	}
	// заголовок и координаты в формате ImageJ знаковые 16-битные
	if bounds.Min.X < 0 || bounds.Min.Y < 0 || bounds.Max.X > math.MaxInt16 || bounds.Max.Y > math.MaxInt16 {
		return nil, errors.Errorf("polygon bounds %v exceed the ROI coordinate range [0, %d]", bounds, math.MaxInt16)
	}

	header := make([]byte, roiHeaderSize)
	copy(header[0:4], "Iout")
	binary.BigEndian.PutUint16(header[4:], roiVersion)
	header[6] = roiTypePolygon
	binary.BigEndian.PutUint16(header[8:], uint16(bounds.Min.Y))
	binary.BigEndian.PutUint16(header[10:], uint16(bounds.Min.X))
	binary.BigEndian.PutUint16(header[12:], uint16(bounds.Max.Y))
	binary.BigEndian.PutUint16(header[14:], uint16(bounds.Max.X))
	binary.BigEndian.PutUint16(header[16:], uint16(len(points)))

	buf := bytes.NewBuffer(header)
	coords := make([]int16, 0, 2*len(points))
	for _, p := range points {
		coords = append(coords, int16(p.X-bounds.Min.X))
	}
	for _, p := range points {
		coords = append(coords, int16(p.Y-bounds.Min.Y))
	}
	if err := binary.Write(buf, binary.BigEndian, coords); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ port.ResultWriter = (*ROIWriter)(nil)
