package vision

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// FileLoader декодирует png, jpeg и tiff (включая 16-битные) в массив пикселей.
type FileLoader struct{}

// NewFileLoader создаёт загрузчик изображений.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load читает файл. Полутоновые изображения дают форму (H, W),
// цветные — (H, W, 3); альфа-канал отбрасывается. Многостраничный TIFF
// даёт (C, H, W), по странице на канал.
func (l *FileLoader) Load(path string) (entity.PixelArray, error) {
	file, err := os.Open(path)
	if err != nil {
		return entity.PixelArray{}, &entity.DecodeError{Path: path, Err: err}
	}
	defer file.Close()

	if pages, order := tiffPages(file); len(pages) > 1 {
		info, err := file.Stat()
		if err != nil {
			return entity.PixelArray{}, &entity.DecodeError{Path: path, Err: err}
		}
		arr, err := decodeStack(file, info.Size(), order, pages)
		if err != nil {
			return entity.PixelArray{}, &entity.DecodeError{Path: path, Err: err}
		}
		return arr, nil
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return entity.PixelArray{}, &entity.DecodeError{Path: path, Err: err}
	}

	b := img.Bounds()
	if b.Empty() {
		return entity.PixelArray{}, &entity.DecodeError{Path: path, Err: errors.New("empty image")}
	}
	return toPixelArray(img), nil
}

func toPixelArray(img image.Image) entity.PixelArray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		vals := make([]float32, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				vals[y*w+x] = float32(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return entity.NewPixelArray(vals, 8, h, w)
	case *image.Gray16:
		vals := make([]float32, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				vals[y*w+x] = float32(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return entity.NewPixelArray(vals, 16, h, w)
	}

	depth := bitDepth(img.ColorModel())
	shift := uint(0)
	if depth == 8 {
		shift = 8
	}
	vals := make([]float32, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			i := (y*w + x) * 3
			vals[i] = float32(c.R >> shift)
			vals[i+1] = float32(c.G >> shift)
			vals[i+2] = float32(c.B >> shift)
		}
	}
	return entity.NewPixelArray(vals, depth, h, w, 3)
}

func bitDepth(m color.Model) int {
	switch m {
	case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model:
		return 16
	default:
		return 8
	}
}

// Проверка реализации интерфейса
var _ port.ImageLoader = (*FileLoader)(nil)
