package vision_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	app "cellseg/internal/application"
	"cellseg/internal/domain/entity"
	"cellseg/internal/infrastructure/vision"
)

type tiffPage struct {
	w, h int
	fill byte
}

// writeStack пишет несжатый многостраничный 8-битный TIFF, каждая страница залита одним значением.
func writeStack(t *testing.T, path string, pages ...tiffPage) {
	t.Helper()
	le := binary.LittleEndian

	var buf bytes.Buffer
	buf.Write([]byte{'I', 'I', 0x2A, 0, 0, 0, 0, 0})
	nextPtr := 4

	for _, p := range pages {
		dataOff := buf.Len()
		buf.Write(bytes.Repeat([]byte{p.fill}, p.w*p.h))
		if buf.Len()%2 == 1 {
			buf.WriteByte(0)
		}

		ifdOff := buf.Len()
		raw := buf.Bytes()
		le.PutUint32(raw[nextPtr:], uint32(ifdOff))

		type entry struct {
			tag, typ uint16
			value    uint32
		}
		entries := []entry{
			{256, 4, uint32(p.w)},       // ImageWidth
			{257, 4, uint32(p.h)},       // ImageLength
			{258, 3, 8},                 // BitsPerSample
			{259, 3, 1},                 // Compression: none
			{262, 3, 1},                 // Photometric: BlackIsZero
			{273, 4, uint32(dataOff)},   // StripOffsets
			{277, 3, 1},                 // SamplesPerPixel
			{278, 4, uint32(p.h)},       // RowsPerStrip
			{279, 4, uint32(p.w * p.h)}, // StripByteCounts
		}
		ifd := make([]byte, 2+12*len(entries)+4)
		le.PutUint16(ifd, uint16(len(entries)))
		for i, e := range entries {
			rec := ifd[2+12*i:]
			le.PutUint16(rec[0:], e.tag)
			le.PutUint16(rec[2:], e.typ)
			le.PutUint32(rec[4:], 1)
			if e.typ == 3 {
				le.PutUint16(rec[8:], uint16(e.value))
			} else {
				le.PutUint32(rec[8:], e.value)
			}
		}
		buf.Write(ifd)
		nextPtr = ifdOff + 2 + 12*len(entries)
	}

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestFileLoader_MultiPageTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.tif")
	writeStack(t, path, tiffPage{8, 8, 10}, tiffPage{8, 8, 200}, tiffPage{8, 8, 50})

	arr, err := vision.NewFileLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, []int{3, 8, 8}, arr.Shape())
	require.Equal(t, 8, arr.BitDepth)

	v, err := arr.Data.At(1, 0, 0)
	require.NoError(t, err)
	require.Equal(t, float32(200), v)
}

func TestFileLoader_StackThroughChannelSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.tif")
	writeStack(t, path, tiffPage{8, 8, 10}, tiffPage{8, 8, 200}, tiffPage{8, 8, 50})

	arr, err := vision.NewFileLoader().Load(path)
	require.NoError(t, err)

	arr, moved, err := app.NormalizeAxes(arr, app.DefaultChannelAxisThreshold)
	require.NoError(t, err)
	require.True(t, moved)
	require.Equal(t, []int{8, 8, 3}, arr.Shape())

	green, err := app.SelectChannel(arr, entity.ChannelGreen)
	require.NoError(t, err)
	require.Equal(t, []int{8, 8}, green.Shape())

	vals, err := green.Values()
	require.NoError(t, err)
	for _, v := range vals {
		require.Equal(t, float32(200), v)
	}
}

func TestFileLoader_SinglePageTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.tif")
	writeStack(t, path, tiffPage{6, 4, 77})

	arr, err := vision.NewFileLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, []int{4, 6}, arr.Shape())
}

func TestFileLoader_StackPageSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tif")
	writeStack(t, path, tiffPage{8, 8, 10}, tiffPage{4, 4, 20})

	_, err := vision.NewFileLoader().Load(path)
	var decodeErr *entity.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}
