package vision

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"cellseg/internal/domain/entity"
)

// maxTIFFPages ограничивает обход цепочки IFD в повреждённых файлах.
const maxTIFFPages = 4096

// tiffPages возвращает смещения всех IFD файла TIFF. Для файлов другого
// формата и для повреждённой цепочки возвращается nil.
func tiffPages(r io.ReaderAt) ([]uint32, binary.ByteOrder) {
	header := make([]byte, 8)
	if _, err := r.ReadAt(header, 0); err != nil {
		return nil, nil
	}

	var order binary.ByteOrder
	switch string(header[:4]) {
	case "II\x2A\x00":
		order = binary.LittleEndian
	case "MM\x00\x2A":
		order = binary.BigEndian
	default:
		return nil, nil
	}

	var offsets []uint32
	seen := make(map[uint32]bool)
	buf := make([]byte, 4)
	for off := order.Uint32(header[4:8]); off != 0; {
		if seen[off] || len(offsets) == maxTIFFPages {
			return nil, nil
		}
		seen[off] = true
		offsets = append(offsets, off)

		if _, err := r.ReadAt(buf[:2], int64(off)); err != nil {
			return nil, nil
		}
		entries := int64(order.Uint16(buf[:2]))
		if _, err := r.ReadAt(buf, int64(off)+2+12*entries); err != nil {
			return nil, nil
		}
		off = order.Uint32(buf)
	}
	return offsets, order
}

// pageReader подменяет смещение первого IFD в заголовке, чтобы
// tiff.Decode прочитал выбранную страницу.
type pageReader struct {
	r   io.ReaderAt
	ifd [4]byte
}

func (p *pageReader) ReadAt(b []byte, off int64) (int, error) {
	n, err := p.r.ReadAt(b, off)
	for i := 0; i < n; i++ {
		if pos := off + int64(i); pos >= 4 && pos < 8 {
			b[i] = p.ifd[pos-4]
		}
	}
	return n, err
}

// decodeStack собирает страницы многостраничного TIFF в массив (C, H, W),
// по странице на канал. Страницы должны быть полутоновыми и одного размера.
func decodeStack(r io.ReaderAt, size int64, order binary.ByteOrder, offsets []uint32) (entity.PixelArray, error) {
	var (
		backing     []float32
		h, w, depth int
	)
	for i, off := range offsets {
		page := &pageReader{r: r}
		order.PutUint32(page.ifd[:], off)

		img, err := tiff.Decode(io.NewSectionReader(page, 0, size))
		if err != nil {
			return entity.PixelArray{}, errors.Wrapf(err, "page %d", i)
		}
		arr := toPixelArray(img)
		if arr.Dims() != 2 {
			return entity.PixelArray{}, errors.Errorf("page %d is not grayscale, multi-page color TIFF is not supported", i)
		}
		if i == 0 {
			h, w, depth = arr.Height(), arr.Width(), arr.BitDepth
		} else if arr.Height() != h || arr.Width() != w {
			return entity.PixelArray{}, errors.Errorf("page %d is %dx%d, first page is %dx%d", i, arr.Width(), arr.Height(), w, h)
		}
		depth = max(depth, arr.BitDepth)

		vals, err := arr.Values()
		if err != nil {
			return entity.PixelArray{}, err
		}
		backing = append(backing, vals...)
	}
	return entity.NewPixelArray(backing, depth, len(offsets), h, w), nil
}
