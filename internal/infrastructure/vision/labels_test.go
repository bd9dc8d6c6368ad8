package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelComponents_EightConnected(t *testing.T) {
	fg := []bool{
		true, false, false, true,
		false, true, false, true,
		false, false, false, false,
		true, true, false, false,
	}
	labels := LabelComponents(fg, 4, 4)
	require.Equal(t, []int32{
		1, 0, 0, 2,
		0, 1, 0, 2,
		0, 0, 0, 0,
		3, 3, 0, 0,
	}, labels)
}

func TestFilterSmall_Relabels(t *testing.T) {
	labels := []int32{1, 1, 0, 2, 3, 3, 3, 0}
	got := FilterSmall(labels, 2)
	require.Equal(t, []int32{1, 1, 0, 0, 2, 2, 2, 0}, got)
}

func TestMinObjectArea(t *testing.T) {
	require.Equal(t, 15, MinObjectArea(10))
	require.Equal(t, 1767, MinObjectArea(150))
}
