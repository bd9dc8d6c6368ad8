package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
	"cellseg/internal/infrastructure/vision"
)

const (
	// SuffixViz и SuffixOverlay — допустимые суффиксы файла наложения.
	SuffixViz     = "viz"
	SuffixOverlay = "overlay"

	overlayAlpha    = 0.5
	minOverlayWidth = 256
	goldenAngle     = 137.508
)

var titleFont *truetype.Font

func init() {
	var err error
	titleFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// OverlayWriter рисует маску поверх входного изображения и подписывает число объектов.
type OverlayWriter struct {
	outDir       string
	suffix       string
	byPercentile bool
}

// NewOverlayWriter создаёт писателя; пустой суффикс заменяется на viz.
func NewOverlayWriter(outDir, suffix string, byPercentile bool) *OverlayWriter {
	if suffix == "" {
		suffix = SuffixViz
	}
	return &OverlayWriter{outDir: outDir, suffix: suffix, byPercentile: byPercentile}
}

func (w *OverlayWriter) Name() string { return "overlay" }

func (w *OverlayWriter) Write(_ context.Context, res *entity.Result) (string, error) {
	img, err := RenderOverlay(res, w.byPercentile)
	if err != nil {
		return "", err
	}
	path, err := artifactPath(w.outDir, res.Record, "_"+w.suffix+".png")
	if err != nil {
		return "", err
	}
	if err := imaging.Save(img, path); err != nil {
		return "", errors.Wrapf(err, "save %s", path)
	}
	return path, nil
}

// Title возвращает подпись над изображением.
func Title(count int, filename string) string {
	return fmt.Sprintf("%d cells detected in %s", count, filename)
}

// RenderOverlay смешивает изображение с цветами меток, при необходимости
// увеличивает его и рисует заголовок.
func RenderOverlay(res *entity.Result, byPercentile bool) (image.Image, error) {
	base, err := baseImage(res.Input, byPercentile)
	if err != nil {
		return nil, err
	}
	mask := res.Mask
	if base.Bounds().Dx() != mask.Width || base.Bounds().Dy() != mask.Height {
		return nil, errors.Errorf("mask %dx%d does not match image %dx%d",
			mask.Width, mask.Height, base.Bounds().Dx(), base.Bounds().Dy())
	}

	palette := make(map[int32]colorful.Color)
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			label := mask.At(x, y)
			if label <= 0 {
				continue
			}
			c, ok := palette[label]
			if !ok {
				c = LabelColor(label)
				palette[label] = c
			}
			px := base.NRGBAAt(x, y)
			under := colorful.Color{R: float64(px.R) / 255, G: float64(px.G) / 255, B: float64(px.B) / 255}
			r, g, b := under.BlendRgb(c, overlayAlpha).Clamped().RGB255()
			base.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}

	var canvas image.Image = base
	if w := base.Bounds().Dx(); w < minOverlayWidth {
		scale := int(math.Ceil(float64(minOverlayWidth) / float64(w)))
		canvas = imaging.Resize(base, w*scale, base.Bounds().Dy()*scale, imaging.NearestNeighbor)
	}

	dc := gg.NewContextForImage(canvas)
	size := math.Max(10, float64(dc.Width())/32)
	dc.SetFontFace(truetype.NewFace(titleFont, &truetype.Options{Size: size}))
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, 0, float64(dc.Width()), size*1.6)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(Title(res.Count, res.Record.Filename), float64(dc.Width())/2, size*0.8, 0.5, 0.5)
	return dc.Image(), nil
}

// LabelColor возвращает насыщенный цвет метки; соседние метки расходятся по тону на золотой угол.
func LabelColor(label int32) colorful.Color {
	hue := math.Mod(float64(label)*goldenAngle, 360)
	return colorful.Hsv(hue, 0.8, 1)
}

// baseImage переводит массив в 8-битное изображение. Трёхканальный массив
// остаётся цветным, остальные сводятся к яркости.
func baseImage(img entity.PixelArray, byPercentile bool) (*image.NRGBA, error) {
	if img.Dims() == 3 && img.Channels() >= 3 {
		return colorBase(img, byPercentile)
	}

	vals, w, h, err := vision.GrayValues(img)
	if err != nil {
		return nil, err
	}
	unit := vision.NormalizeUnit(vals, byPercentile)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, v := range unit {
		g := uint8(math.Round(v * 255))
		out.SetNRGBA(i%w, i/w, color.NRGBA{R: g, G: g, B: g, A: 255})
	}
	return out, nil
}

func colorBase(img entity.PixelArray, byPercentile bool) (*image.NRGBA, error) {
	vals, err := img.Values()
	if err != nil {
		return nil, err
	}
	w, h, c := img.Width(), img.Height(), img.Channels()
	unit := vision.NormalizeUnit(vals, byPercentile)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		px := unit[i*c : i*c+3]
		out.SetNRGBA(i%w, i/w, color.NRGBA{
			R: uint8(math.Round(px[0] * 255)),
			G: uint8(math.Round(px[1] * 255)),
			B: uint8(math.Round(px[2] * 255)),
			A: 255,
		})
	}
	return out, nil
}

var _ port.ResultWriter = (*OverlayWriter)(nil)
