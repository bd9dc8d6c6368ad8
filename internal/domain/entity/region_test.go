package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionCenter(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 8, Height: 6}
	x, y := r.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
	require.Equal(t, image.Rect(10, 20, 18, 26), r.Bounds())
}
