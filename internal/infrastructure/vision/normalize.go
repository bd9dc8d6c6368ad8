package vision

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"cellseg/internal/domain/entity"
)

// Percentiles возвращает значения на процентилях lo и hi (в диапазоне 0..100).
func Percentiles(vals []float32, lo, hi float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(vals))
	for i, v := range vals {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)
	return stat.Quantile(lo/100, stat.Empirical, sorted, nil),
		stat.Quantile(hi/100, stat.Empirical, sorted, nil)
}

// MinMax возвращает наименьшее и наибольшее значение.
func MinMax(vals []float32) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, float64(v))
		hi = math.Max(hi, float64(v))
	}
	return lo, hi
}

// Rescale переводит значения в [0, 1] по границам lo и hi с обрезкой.
// При hi <= lo все значения становятся нулями.
func Rescale(vals []float32, lo, hi float64) []float64 {
	out := make([]float64, len(vals))
	if hi <= lo {
		return out
	}
	span := hi - lo
	for i, v := range vals {
		out[i] = math.Min(1, math.Max(0, (float64(v)-lo)/span))
	}
	return out
}

// NormalizeUnit масштабирует значения в [0, 1]: по 1 и 99 процентилям,
// если byPercentile, иначе по минимуму и максимуму.
func NormalizeUnit(vals []float32, byPercentile bool) []float64 {
	var lo, hi float64
	if byPercentile {
		lo, hi = Percentiles(vals, 1, 99)
	} else {
		lo, hi = MinMax(vals)
	}
	return Rescale(vals, lo, hi)
}

// GrayValues сводит массив к одному каналу усреднением каналов.
func GrayValues(img entity.PixelArray) (vals []float32, width, height int, err error) {
	src, err := img.Values()
	if err != nil {
		return nil, 0, 0, err
	}

	switch img.Dims() {
	case 2:
		return src, img.Width(), img.Height(), nil
	case 3:
		w, h, c := img.Width(), img.Height(), img.Channels()
		if c == 0 {
			return nil, 0, 0, errors.New("image has no channels")
		}
		out := make([]float32, w*h)
		for i := range out {
			var sum float32
			for k := 0; k < c; k++ {
				sum += src[i*c+k]
			}
			out[i] = sum / float32(c)
		}
		return out, w, h, nil
	default:
		return nil, 0, 0, errors.Errorf("unsupported image shape %v", img.Shape())
	}
}
