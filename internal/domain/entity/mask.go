package entity

import (
	"fmt"
	"image"

	"gorgonia.org/tensor"
)

// LabelMask — маска меток: 0 фон, каждое положительное число — один объект.
// После создания не изменяется.
type LabelMask struct {
	Width  int
	Height int
	Labels []int32 // длина Width*Height, порядок строк
}

// NewLabelMask проверяет размер буфера и создаёт маску.
func NewLabelMask(width, height int, labels []int32) (*LabelMask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask size %dx%d", width, height)
	}
	if len(labels) != width*height {
		return nil, fmt.Errorf("mask buffer has %d values, want %d", len(labels), width*height)
	}
	return &LabelMask{Width: width, Height: height, Labels: labels}, nil
}

// At возвращает метку пикселя, за границами — 0.
func (m *LabelMask) At(x, y int) int32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Labels[y*m.Width+x]
}

// Count возвращает число объектов, то есть максимальную метку.
func (m *LabelMask) Count() int {
	var maxLabel int32
	for _, l := range m.Labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	return int(maxLabel)
}

// Bounds возвращает прямоугольник маски.
func (m *LabelMask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Tensor оборачивает метки в тензор формы (H, W) без копирования.
func (m *LabelMask) Tensor() *tensor.Dense {
	return tensor.New(tensor.WithShape(m.Height, m.Width), tensor.WithBacking(m.Labels))
}

// Regions собирает рамки и площади всех меток в порядке возрастания метки.
// Метки без пикселей пропускаются.
func (m *LabelMask) Regions() []Region {
	count := m.Count()
	if count == 0 {
		return nil
	}

	type box struct {
		minX, minY, maxX, maxY int
		area                   int
		startX, startY         int
	}
	boxes := make([]*box, count+1)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			l := m.Labels[y*m.Width+x]
			if l <= 0 {
				continue
			}
			b := boxes[l]
			if b == nil {
				boxes[l] = &box{minX: x, minY: y, maxX: x, maxY: y, area: 1, startX: x, startY: y}
				continue
			}
			b.area++
			b.minX = min(b.minX, x)
			b.maxX = max(b.maxX, x)
			b.maxY = max(b.maxY, y)
		}
	}

	regions := make([]Region, 0, count)
	for label := 1; label <= count; label++ {
		b := boxes[label]
		if b == nil {
			continue
		}
		regions = append(regions, Region{
			Label:  int32(label),
			X:      b.minX,
			Y:      b.minY,
			Width:  b.maxX - b.minX + 1,
			Height: b.maxY - b.minY + 1,
			Area:   b.area,
			Start:  image.Pt(b.startX, b.startY),
		})
	}
	return regions
}
