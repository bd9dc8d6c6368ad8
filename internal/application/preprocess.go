package app

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"cellseg/internal/domain/entity"
)

// DefaultChannelAxisThreshold — ось короче этого значения считается осью каналов.
const DefaultChannelAxisThreshold = 5

// NormalizeAxes переводит массив (C, H, W) в (H, W, C).
//
// Это эвристика, а не гарантия: трёхмерный массив транспонируется, если его
// первая ось короче threshold, а последняя — нет. Массивы, у которых последняя
// ось уже похожа на каналы, и двумерные массивы возвращаются без изменений.
// Второе значение сообщает, было ли транспонирование.
func NormalizeAxes(img entity.PixelArray, threshold int) (entity.PixelArray, bool, error) {
	if img.Dims() != 3 || threshold <= 0 {
		return img, false, nil
	}
	shape := img.Shape()
	if shape[0] >= threshold || shape[2] < threshold {
		return img, false, nil
	}

	moved, err := tensor.Transpose(img.Data, 1, 2, 0)
	if err != nil {
		return img, false, errors.Wrap(err, "move channel axis last")
	}
	dense, ok := moved.(*tensor.Dense)
	if !ok {
		return img, false, errors.Errorf("unexpected tensor type %T", moved)
	}
	return entity.PixelArray{Data: dense, BitDepth: img.BitDepth}, true, nil
}

// SelectChannel вырезает один канал из массива (H, W, C) в (H, W).
// Двумерный массив и ChannelNone возвращаются как есть.
func SelectChannel(img entity.PixelArray, ch entity.Channel) (entity.PixelArray, error) {
	idx := ch.Index()
	if idx < 0 || img.Dims() != 3 {
		return img, nil
	}
	if idx >= img.Channels() {
		return img, errors.Errorf("channel %s not present, image has %d channels", ch, img.Channels())
	}

	view, err := img.Data.Slice(nil, nil, tensor.S(idx))
	if err != nil {
		return img, errors.Wrapf(err, "slice channel %s", ch)
	}
	dense, ok := view.Materialize().(*tensor.Dense)
	if !ok {
		return img, errors.Errorf("unexpected tensor type %T", view)
	}
	return entity.PixelArray{Data: dense, BitDepth: img.BitDepth}, nil
}
