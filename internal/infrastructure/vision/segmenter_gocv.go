//go:build gocv
// +build gocv

package vision

import (
	"context"
	"encoding/binary"
	"image"
	"math"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// DefaultModel используется, когда имя модели не задано.
const DefaultModel = "cpsam"

// trainedDiameter — диаметр объекта, под который обучалась сеть.
const trainedDiameter = 30.0

// DNNSegmenter запускает сеть через модуль dnn из OpenCV.
// Выход сети: (1, 3, H, W), каналы 0 и 1 — потоки, канал 2 — логит вероятности клетки.
type DNNSegmenter struct {
	mu      sync.Mutex // сеть не рассчитана на параллельные вызовы
	net     gocv.Net
	backend entity.Backend
}

func newDNNSegmenter(path string, backend entity.Backend) (port.Segmenter, error) {
	net := gocv.ReadNet(path, "")
	if net.Empty() {
		net.Close()
		return nil, errors.Errorf("failed to read network %s", path)
	}

	netBackend, netTarget := netPreferences(backend)
	if err := net.SetPreferableBackend(netBackend); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "set preferable backend")
	}
	if err := net.SetPreferableTarget(netTarget); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "set preferable target")
	}

	return &DNNSegmenter{net: net, backend: backend}, nil
}

func netPreferences(backend entity.Backend) (gocv.NetBackendType, gocv.NetTargetType) {
	switch backend {
	case entity.BackendCUDA:
		return gocv.NetBackendCUDA, gocv.NetTargetCUDA
	case entity.BackendOpenCL:
		// NetTargetFP32 соответствует DNN_TARGET_OPENCL.
		return gocv.NetBackendOpenCV, gocv.NetTargetFP32
	default:
		return gocv.NetBackendDefault, gocv.NetTargetCPU
	}
}

// Evaluate масштабирует изображение под обучающий диаметр, прогоняет сеть
// и размечает связные области, где логит больше CellProbThreshold.
func (s *DNNSegmenter) Evaluate(ctx context.Context, img entity.PixelArray, params entity.EvalParams) (*entity.Segmentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.Diameter <= 0 {
		return nil, errors.Errorf("diameter must be positive, got %v", params.Diameter)
	}

	gray, w, h, err := GrayValues(img)
	if err != nil {
		return nil, err
	}
	norm := NormalizeUnit(gray, params.Normalize)

	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV32F, float32Bytes(toFloat32(norm)))
	if err != nil {
		return nil, errors.Wrap(err, "build input mat")
	}
	defer src.Close()

	scale := trainedDiameter / params.Diameter
	size := image.Pt(alignTo16(float64(w)*scale), alignTo16(float64(h)*scale))
	blob := gocv.BlobFromImage(src, 1.0, size, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	s.mu.Lock()
	s.net.SetInput(blob, "")
	out := s.net.Forward("")
	s.mu.Unlock()
	defer out.Close()

	dims := out.Size()
	if len(dims) != 4 || dims[1] < 3 {
		return nil, errors.Errorf("unexpected network output shape %v", dims)
	}
	outH, outW := dims[2], dims[3]
	plane := outH * outW

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "read network output")
	}

	prob, err := gocv.NewMatFromBytes(outH, outW, gocv.MatTypeCV32F, float32Bytes(data[2*plane:3*plane]))
	if err != nil {
		return nil, errors.Wrap(err, "build probability mat")
	}
	defer prob.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(prob, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(resized, &thresh, float32(params.CellProbThreshold), 255, gocv.ThresholdBinary)

	binaryMask := gocv.NewMat()
	defer binaryMask.Close()
	thresh.ConvertTo(&binaryMask, gocv.MatTypeCV8U)

	components := gocv.NewMat()
	defer components.Close()
	gocv.ConnectedComponents(binaryMask, &components)

	raw, err := components.DataPtrInt32()
	if err != nil {
		return nil, errors.Wrap(err, "read component labels")
	}
	labels := make([]int32, len(raw))
	copy(labels, raw)
	labels = FilterSmall(labels, MinObjectArea(params.Diameter))

	mask, err := entity.NewLabelMask(w, h, labels)
	if err != nil {
		return nil, err
	}

	flows := make([]float32, 2*plane)
	copy(flows, data[:2*plane])
	return &entity.Segmentation{
		Mask:  mask,
		Flows: tensor.New(tensor.WithShape(2, outH, outW), tensor.WithBacking(flows)),
	}, nil
}

func (s *DNNSegmenter) Backend() entity.Backend {
	return s.backend
}

func (s *DNNSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

func alignTo16(v float64) int {
	n := int(math.Round(v/16)) * 16
	return max(16, n)
}

func toFloat32(vals []float64) []float32 {
	out := make([]float32, len(vals))
	for i, v := range vals {
		out[i] = float32(v)
	}
	return out
}

func float32Bytes(vals []float32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// Проверка реализации интерфейса
var _ port.Segmenter = (*DNNSegmenter)(nil)
