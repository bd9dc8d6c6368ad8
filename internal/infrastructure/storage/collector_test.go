package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cellseg/internal/domain/entity"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFileCollector_FindsNestedImages(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "b.JPG"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "day1", "c.TIFF"))
	touch(t, filepath.Join(root, "day1", "well", "d.jpeg"))
	touch(t, filepath.Join(root, "day1", "well", "e.tif"))
	touch(t, filepath.Join(root, "day1", "well", "archive.zip"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.png"), 0o755))

	records, err := NewFileCollector(root).Collect(context.Background())
	require.NoError(t, err)

	got := make(map[string]entity.ImageRecord)
	for _, r := range records {
		got[r.Name()] = r
	}
	require.Len(t, got, 5)
	require.Contains(t, got, "a.png")
	require.Contains(t, got, "b.JPG")
	require.Contains(t, got, "day1/c.TIFF")
	require.Contains(t, got, "day1/well/d.jpeg")
	require.Contains(t, got, "day1/well/e.tif")

	nested := got["day1/well/e.tif"]
	require.Equal(t, filepath.Join("day1", "well"), nested.RelDir)
	require.Equal(t, "e.tif", nested.Filename)
	require.True(t, filepath.IsAbs(nested.Path))
	require.Equal(t, ".", got["a.png"].RelDir)
}

func TestFileCollector_EmptyDir(t *testing.T) {
	records, err := NewFileCollector(t.TempDir()).Collect(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestFileCollector_MissingDir(t *testing.T) {
	_, err := NewFileCollector(filepath.Join(t.TempDir(), "missing")).Collect(context.Background())
	require.Error(t, err)
}

func TestFileCollector_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "b.bmp"))

	records, err := NewFileCollector(root, ".BMP").Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "b.bmp", records[0].Filename)
}
