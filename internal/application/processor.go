package app

import (
	"context"

	"github.com/pkg/errors"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// ProcessorOptions — настройки обработки одного изображения.
type ProcessorOptions struct {
	Params               entity.EvalParams
	Channel              entity.Channel
	ChannelAxisThreshold int
}

// ImageProcessor загружает изображение, готовит массив и вызывает модель.
type ImageProcessor struct {
	loader    port.ImageLoader
	segmenter port.Segmenter
	opts      ProcessorOptions
}

// NewImageProcessor создаёт обработчик поверх общей модели.
func NewImageProcessor(loader port.ImageLoader, segmenter port.Segmenter, opts ProcessorOptions) *ImageProcessor {
	if opts.ChannelAxisThreshold == 0 {
		opts.ChannelAxisThreshold = DefaultChannelAxisThreshold
	}
	return &ImageProcessor{
		loader:    loader,
		segmenter: segmenter,
		opts:      opts,
	}
}

// Process выполняет шаги декодирования, выбора канала и сегментации
// и возвращает результат, общий для всех писателей.
func (p *ImageProcessor) Process(ctx context.Context, record entity.ImageRecord) (*entity.Result, error) {
	if p.segmenter == nil {
		return nil, errors.New("segmenter is not configured")
	}

	img, err := p.loader.Load(record.Path)
	if err != nil {
		return nil, err
	}

	img, _, err = NormalizeAxes(img, p.opts.ChannelAxisThreshold)
	if err != nil {
		return nil, err
	}

	input, err := SelectChannel(img, p.opts.Channel)
	if err != nil {
		return nil, err
	}

	seg, err := p.segmenter.Evaluate(ctx, input, p.opts.Params)
	if err != nil {
		return nil, errors.Wrap(err, "segmentation")
	}
	if seg == nil || seg.Mask == nil {
		return nil, errors.New("segmentation returned no mask")
	}

	return &entity.Result{
		Record: record,
		Input:  input,
		Mask:   seg.Mask,
		Count:  seg.Mask.Count(),
	}, nil
}
