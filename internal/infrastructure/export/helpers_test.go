package export

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"cellseg/internal/domain/entity"
)

// maskWithRects строит маску, где каждый прямоугольник получает свою метку по порядку.
func maskWithRects(t *testing.T, w, h int, rects ...image.Rectangle) *entity.LabelMask {
	t.Helper()
	labels := make([]int32, w*h)
	for i, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				labels[y*w+x] = int32(i + 1)
			}
		}
	}
	mask, err := entity.NewLabelMask(w, h, labels)
	require.NoError(t, err)
	return mask
}

func resultFor(mask *entity.LabelMask, relDir, filename string) *entity.Result {
	return &entity.Result{
		Record: entity.ImageRecord{Path: "/in/" + filename, RelDir: relDir, Filename: filename},
		Input:  entity.NewPixelArray(make([]float32, mask.Width*mask.Height), 8, mask.Height, mask.Width),
		Mask:   mask,
		Count:  mask.Count(),
	}
}

func maskFromLabels(t *testing.T, w, h int, labels []int32) *entity.LabelMask {
	t.Helper()
	mask, err := entity.NewLabelMask(w, h, labels)
	require.NoError(t, err)
	return mask
}
