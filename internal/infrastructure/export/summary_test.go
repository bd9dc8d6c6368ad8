package export

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestSummaryWriter_AppendsAcrossRuns(t *testing.T) {
	out := t.TempDir()
	mask := maskWithRects(t, 8, 8, image.Rect(0, 0, 2, 2), image.Rect(4, 4, 6, 6))

	w := NewSummaryWriter(out)
	path, err := w.Write(context.Background(), resultFor(mask, ".", "a.png"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, SummaryFile), path)
	_, err = w.Write(context.Background(), resultFor(mask, "sub", "b.png"))
	require.NoError(t, err)

	require.Equal(t, []string{
		"image_name,number_detected",
		"a.png,2",
		"sub/b.png,2",
	}, readLines(t, path))

	// повторный запуск дописывает строки без второго заголовка
	again := NewSummaryWriter(out)
	require.NoError(t, again.Append("c.png", 0))

	lines := readLines(t, path)
	require.Len(t, lines, 4)
	require.Equal(t, "c.png,0", lines[3])
}

func TestSummaryWriter_QuotesNames(t *testing.T) {
	w := NewSummaryWriter(t.TempDir())
	require.NoError(t, w.Append("odd,name.png", 3))
	require.Equal(t, `"odd,name.png",3`, readLines(t, w.Path())[1])
}
