package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLabelMask_Validates(t *testing.T) {
	_, err := NewLabelMask(2, 2, []int32{0, 1, 2})
	require.Error(t, err)

	_, err = NewLabelMask(0, 2, nil)
	require.Error(t, err)
}

func TestLabelMask_CountAndRegions(t *testing.T) {
	m, err := NewLabelMask(4, 3, []int32{
		0, 1, 1, 0,
		0, 1, 0, 3,
		0, 0, 0, 3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, m.Count())
	require.Equal(t, int32(3), m.At(3, 2))
	require.Equal(t, int32(0), m.At(-1, 0))

	regions := m.Regions()
	require.Len(t, regions, 2)

	require.Equal(t, int32(1), regions[0].Label)
	require.Equal(t, image.Rect(1, 0, 3, 2), regions[0].Bounds())
	require.Equal(t, 3, regions[0].Area)
	require.Equal(t, image.Pt(1, 0), regions[0].Start)

	require.Equal(t, int32(3), regions[1].Label)
	require.Equal(t, 2, regions[1].Area)
	require.Equal(t, image.Pt(3, 1), regions[1].Start)
}

func TestLabelMask_EmptyHasZeroCount(t *testing.T) {
	m, err := NewLabelMask(3, 1, []int32{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, 0, m.Count())
	require.Empty(t, m.Regions())
}

func TestLabelMask_Tensor(t *testing.T) {
	m, err := NewLabelMask(3, 2, []int32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	tt := m.Tensor()
	require.Equal(t, []int{2, 3}, []int(tt.Shape()))
	v, err := tt.At(1, 2)
	require.NoError(t, err)
	require.Equal(t, int32(6), v)
}
