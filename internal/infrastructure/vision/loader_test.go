package vision

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"cellseg/internal/domain/entity"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestFileLoader_Gray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.SetGray(2, 1, color.Gray{Y: 200})
	path := filepath.Join(t.TempDir(), "g.png")
	writePNG(t, path, img)

	arr, err := NewFileLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, arr.Shape())
	require.Equal(t, 8, arr.BitDepth)

	v, err := arr.Data.At(1, 2)
	require.NoError(t, err)
	require.Equal(t, float32(200), v)
}

func TestFileLoader_RGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 2))
	img.SetNRGBA(4, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	path := filepath.Join(t.TempDir(), "c.png")
	writePNG(t, path, img)

	arr, err := NewFileLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, []int{2, 5, 3}, arr.Shape())
	require.Equal(t, 3, arr.Channels())

	for c, want := range []float32{10, 20, 30} {
		v, err := arr.Data.At(1, 4, c)
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}

func TestFileLoader_Gray16TIFF(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 3))
	img.SetGray16(1, 2, color.Gray16{Y: 40000})
	path := filepath.Join(t.TempDir(), "deep.tif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, img, nil))
	require.NoError(t, f.Close())

	arr, err := NewFileLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, 16, arr.BitDepth)
	require.Equal(t, []int{3, 3}, arr.Shape())

	v, err := arr.Data.At(2, 1)
	require.NoError(t, err)
	require.Equal(t, float32(40000), v)
}

func TestFileLoader_DecodeErrors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o644))

	for _, path := range []string{corrupt, filepath.Join(dir, "missing.png")} {
		_, err := NewFileLoader().Load(path)
		require.Error(t, err)

		var decodeErr *entity.DecodeError
		require.True(t, errors.As(err, &decodeErr))
		require.Equal(t, path, decodeErr.Path)
	}
}
