package entity

import "image"

// Region представляет один размеченный объект
type Region struct {
	Label  int32       // метка объекта в маске
	X      int         // координата X левого верхнего угла рамки
	Y      int         // координата Y левого верхнего угла рамки
	Width  int         // ширина рамки в пикселях
	Height int         // высота рамки в пикселях
	Area   int         // площадь объекта в пикселях
	Start  image.Point // первый пиксель объекта при обходе по строкам
}

// Center возвращает координаты центра рамки
func (r Region) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Bounds возвращает рамку как image.Rectangle
func (r Region) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}
