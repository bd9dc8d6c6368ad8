package vision

import "math"

// minObjectSize — нижняя граница площади объекта в пикселях.
const minObjectSize = 15

// MinObjectArea возвращает минимальную площадь объекта для заданного диаметра:
// десятая часть площади круга, но не меньше minObjectSize.
func MinObjectArea(diameter float64) int {
	area := int(math.Round(0.1 * math.Pi * (diameter / 2) * (diameter / 2)))
	return max(minObjectSize, area)
}

var neighbours8 = [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

// LabelComponents размечает 8-связные компоненты переднего плана.
// Метки идут с 1 в порядке обхода по строкам.
func LabelComponents(fg []bool, width, height int) []int32 {
	labels := make([]int32, width*height)
	var next int32
	queue := make([]int, 0, 64)

	for start := range fg {
		if !fg[start] || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		queue = append(queue[:0], start)

		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := i%width, i/width
			for _, d := range neighbours8 {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if fg[j] && labels[j] == 0 {
					labels[j] = next
					queue = append(queue, j)
				}
			}
		}
	}
	return labels
}

// FilterSmall обнуляет компоненты площадью меньше minArea и
// перенумеровывает оставшиеся подряд с 1. Буфер меняется на месте.
func FilterSmall(labels []int32, minArea int) []int32 {
	var maxLabel int32
	for _, l := range labels {
		maxLabel = max(maxLabel, l)
	}
	if maxLabel == 0 {
		return labels
	}

	areas := make([]int, maxLabel+1)
	for _, l := range labels {
		if l > 0 {
			areas[l]++
		}
	}

	remap := make([]int32, maxLabel+1)
	var next int32
	for l := int32(1); l <= maxLabel; l++ {
		if areas[l] >= minArea {
			next++
			remap[l] = next
		}
	}

	for i, l := range labels {
		if l > 0 {
			labels[i] = remap[l]
		}
	}
	return labels
}
