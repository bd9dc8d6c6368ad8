package vision

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// ModelOtsu — имя встроенной модели, не требующей OpenCV.
const ModelOtsu = "otsu"

// cellProbGain переводит расстояние до порога Оцу в логит вероятности клетки.
const cellProbGain = 10.0

// OtsuSegmenter — встроенная модель: нормализация, порог Оцу, связные компоненты.
// Порог согласованности потоков к ней неприменим и игнорируется.
type OtsuSegmenter struct{}

// NewOtsuSegmenter создаёт встроенную модель.
func NewOtsuSegmenter() *OtsuSegmenter {
	return &OtsuSegmenter{}
}

// Evaluate размечает изображение. Пиксель относится к объекту, если
// cellProbGain*(v - t) > CellProbThreshold, где t — порог Оцу.
func (s *OtsuSegmenter) Evaluate(ctx context.Context, img entity.PixelArray, params entity.EvalParams) (*entity.Segmentation, error) {
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
	t := OtsuThreshold(norm)

	fg := make([]bool, len(norm))
	for i, v := range norm {
		fg[i] = cellProbGain*(v-t) > params.CellProbThreshold
	}

	labels := FilterSmall(LabelComponents(fg, w, h), MinObjectArea(params.Diameter))
	mask, err := entity.NewLabelMask(w, h, labels)
	if err != nil {
		return nil, err
	}
	return &entity.Segmentation{Mask: mask}, nil
}

// Backend — встроенная модель всегда считает на CPU.
func (s *OtsuSegmenter) Backend() entity.Backend {
	return entity.BackendCPU
}

func (s *OtsuSegmenter) Close() error {
	return nil
}

// OtsuThreshold считает порог Оцу для значений из [0, 1] по 256 корзинам.
// При плато максимума берётся его середина. Если разделить классы нельзя,
// возвращается 1.
func OtsuThreshold(vals []float64) float64 {
	var hist [256]float64
	for _, v := range vals {
		b := int(v * 256)
		b = min(255, max(0, b))
		hist[b]++
	}

	total := float64(len(vals))
	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i) * n
	}

	best := -1.0
	first, last := -1, -1
	var w0, sum0 float64
	for k := 0; k < 255; k++ {
		w0 += hist[k]
		sum0 += float64(k) * hist[k]
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		d := sum0/w0 - (sumAll-sum0)/w1
		between := w0 * w1 * d * d

		switch {
		case between > best && math.Abs(between-best) > 1e-9*between:
			best = between
			first, last = k, k
		case math.Abs(between-best) <= 1e-9*between:
			last = k
		}
	}

	if first < 0 {
		return 1
	}
	k := (first + last) / 2
	return float64(k+1) / 256
}

// Проверка реализации интерфейса
var _ port.Segmenter = (*OtsuSegmenter)(nil)
