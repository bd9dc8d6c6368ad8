package export

import (
	"image"
	"math"

	"github.com/golang/geo/r2"

	"cellseg/internal/domain/entity"
)

// Окрестность Мура по часовой стрелке, начиная с запада.
var moore = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func mooreIndex(d image.Point) int {
	for i, p := range moore {
		if p == d {
			return i
		}
	}
	return 0
}

// TraceOutline обходит внешнюю границу объекта по часовой стрелке,
// начиная с его первого пикселя при обходе по строкам.
// Одиночный пиксель даёт контур из одной точки.
func TraceOutline(mask *entity.LabelMask, region entity.Region) []image.Point {
	inside := func(p image.Point) bool {
		return mask.At(p.X, p.Y) == region.Label
	}

	start := region.Start
	contour := []image.Point{start}
	cur, back := start, 0 // слева от первого пикселя всегда фон

	limit := 4*region.Area + 8
	for step := 0; step < limit; step++ {
		next, nextBack, ok := mooreStep(cur, back, inside)
		if !ok {
			return contour
		}
		// контур замкнулся: из начала снова идём во вторую точку
		if cur == start && len(contour) > 1 && next == contour[1] {
			return contour[:len(contour)-1]
		}
		cur, back = next, nextBack
		contour = append(contour, cur)
	}
	return contour
}

// mooreStep ищет следующий пиксель границы по часовой стрелке от направления back
// и возвращает его вместе с новым направлением на фон.
func mooreStep(cur image.Point, back int, inside func(image.Point) bool) (image.Point, int, bool) {
	for k := 1; k <= 8; k++ {
		d := (back + k) % 8
		next := cur.Add(moore[d])
		if !inside(next) {
			continue
		}
		prev := cur.Add(moore[(d+7)%8])
		return next, mooreIndex(prev.Sub(next)), true
	}
	return cur, back, false
}

// SimplifyOutline упрощает замкнутый контур алгоритмом Дугласа-Пекера.
func SimplifyOutline(contour []image.Point, epsilon float64) []image.Point {
	if len(contour) < 4 {
		return contour
	}
	path := make([]r2.Point, 0, len(contour)+1)
	for _, p := range contour {
		path = append(path, r2.Point{X: float64(p.X), Y: float64(p.Y)})
	}
	path = append(path, path[0])

	simplified := simplifyPath(path, epsilon)
	out := make([]image.Point, 0, len(simplified)-1)
	for _, p := range simplified[:len(simplified)-1] {
		out = append(out, image.Pt(int(p.X), int(p.Y)))
	}
	if len(out) < 3 {
		return contour
	}
	return out
}

func simplifyPath(path []r2.Point, epsilon float64) []r2.Point {
	if len(path) <= 2 {
		return path
	}

	dmax, index := 0.0, 0
	end := len(path) - 1
	for i := 1; i < end; i++ {
		if d := perpendicularDistance(path[i], path[0], path[end]); d > dmax {
			dmax, index = d, i
		}
	}

	if dmax <= epsilon {
		return []r2.Point{path[0], path[end]}
	}
	left := simplifyPath(path[:index+1], epsilon)
	right := simplifyPath(path[index:], epsilon)

	result := make([]r2.Point, 0, len(left)+len(right)-1)
	result = append(result, left[:len(left)-1]...)
	return append(result, right...)
}

func perpendicularDistance(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	if ab.Norm() == 0 {
		return p.Sub(a).Norm()
	}
	return math.Abs(ab.Cross(p.Sub(a))) / ab.Norm()
}
