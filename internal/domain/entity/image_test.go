package entity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageRecord_RootFile(t *testing.T) {
	r := ImageRecord{Path: "/in/a.tif", RelDir: ".", Filename: "a.tif"}
	require.Equal(t, "a", r.BaseName())
	require.Equal(t, "a", r.Stem())
	require.Equal(t, "a.tif", r.Name())
}

func TestImageRecord_NestedFile(t *testing.T) {
	r := ImageRecord{Path: "/in/day1/well2/img.v2.PNG", RelDir: filepath.Join("day1", "well2"), Filename: "img.v2.PNG"}
	require.Equal(t, "img.v2", r.BaseName())
	require.Equal(t, filepath.Join("day1", "well2", "img.v2"), r.Stem())
	require.Equal(t, "day1/well2/img.v2.PNG", r.Name())
}
