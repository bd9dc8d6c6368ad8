package export

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cellseg/internal/domain/entity"
)

func TestTitle(t *testing.T) {
	require.Equal(t, "3 cells detected in a.png", Title(3, "a.png"))
}

func TestRenderOverlay_UpscalesAndBlends(t *testing.T) {
	mask := maskWithRects(t, 16, 16, image.Rect(0, 12, 16, 16))
	res := resultFor(mask, ".", "small.png")

	img, err := RenderOverlay(res, false)
	require.NoError(t, err)
	require.Equal(t, 256, img.Bounds().Dx())
	require.Equal(t, 256, img.Bounds().Dy())

	bgR, bgG, bgB, _ := img.At(128, 128).RGBA()
	require.Zero(t, bgR+bgG+bgB)

	r, g, b, _ := img.At(128, 14*16).RGBA()
	require.NotZero(t, r+g+b)
}

func TestRenderOverlay_SizeMismatch(t *testing.T) {
	mask := maskWithRects(t, 8, 8)
	res := resultFor(mask, ".", "x.png")
	res.Input = entity.NewPixelArray(make([]float32, 4*4), 8, 4, 4)

	_, err := RenderOverlay(res, true)
	require.Error(t, err)
}

func TestRenderOverlay_Color(t *testing.T) {
	mask := maskWithRects(t, 300, 20, image.Rect(0, 0, 10, 10))
	res := resultFor(mask, ".", "rgb.png")
	res.Input = entity.NewPixelArray(make([]float32, 300*20*3), 8, 20, 300, 3)

	img, err := RenderOverlay(res, true)
	require.NoError(t, err)
	require.Equal(t, 300, img.Bounds().Dx())
}

func TestOverlayWriter_Suffix(t *testing.T) {
	out := t.TempDir()
	mask := maskWithRects(t, 20, 20, image.Rect(5, 5, 10, 10))

	path, err := NewOverlayWriter(out, SuffixOverlay, true).Write(context.Background(), resultFor(mask, "run1", "img.tif"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "run1", "img_overlay.png"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	path, err = NewOverlayWriter(out, "", false).Write(context.Background(), resultFor(mask, ".", "img.tif"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "img_viz.png"), path)
}

func TestLabelColor_Distinct(t *testing.T) {
	require.NotEqual(t, LabelColor(1), LabelColor(2))
}
