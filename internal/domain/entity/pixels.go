package entity

import (
	"fmt"

	"gorgonia.org/tensor"
)

// PixelArray хранит пиксели изображения в виде тензора float32.
// Форма (H, W) для полутоновых, (H, W, C) для цветных изображений.
type PixelArray struct {
	Data     *tensor.Dense
	BitDepth int // 8 или 16, глубина исходного файла
}

// NewPixelArray создаёт массив заданной формы поверх готового буфера.
func NewPixelArray(backing []float32, bitDepth int, shape ...int) PixelArray {
	return PixelArray{
		Data:     tensor.New(tensor.WithShape(shape...), tensor.WithBacking(backing)),
		BitDepth: bitDepth,
	}
}

// Shape возвращает копию формы массива.
func (p PixelArray) Shape() []int {
	if p.Data == nil {
		return nil
	}
	return p.Data.Shape().Clone()
}

// Dims возвращает число осей.
func (p PixelArray) Dims() int {
	if p.Data == nil {
		return 0
	}
	return p.Data.Dims()
}

// Height и Width считают, что оси уже приведены к виду (H, W[, C]).
func (p PixelArray) Height() int { return p.Shape()[0] }

func (p PixelArray) Width() int { return p.Shape()[1] }

// Channels возвращает 1 для двумерного массива.
func (p PixelArray) Channels() int {
	if p.Dims() < 3 {
		return 1
	}
	return p.Shape()[2]
}

// Values возвращает плоский буфер значений в порядке строк.
func (p PixelArray) Values() ([]float32, error) {
	if p.Data == nil {
		return nil, fmt.Errorf("empty pixel array")
	}
	vals, ok := p.Data.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected pixel dtype %v", p.Data.Dtype())
	}
	return vals, nil
}

// MaxValue возвращает верхнюю границу диапазона для глубины исходного файла.
func (p PixelArray) MaxValue() float64 {
	if p.BitDepth == 16 {
		return 65535
	}
	return 255
}
