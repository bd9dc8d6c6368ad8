package entity

import "gorgonia.org/tensor"

// EvalParams — параметры одного вызова модели.
type EvalParams struct {
	Diameter          float64 // ожидаемый диаметр объекта в пикселях
	CellProbThreshold float64
	FlowThreshold     float64
	Normalize         bool
}

// DefaultEvalParams возвращает пороги, с которыми работает пакетный режим.
func DefaultEvalParams(diameter float64) EvalParams {
	return EvalParams{
		Diameter:          diameter,
		CellProbThreshold: -1.0,
		FlowThreshold:     0.6,
		Normalize:         true,
	}
}

// Segmentation — результат модели. Flows может быть nil и не сохраняется.
type Segmentation struct {
	Mask  *LabelMask
	Flows *tensor.Dense
}

// Result — всё, что нужно писателям артефактов для одного изображения.
type Result struct {
	Record ImageRecord
	Input  PixelArray // массив, поданный в модель (после выбора канала)
	Mask   *LabelMask
	Count  int
}
