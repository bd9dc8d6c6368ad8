package container

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cellseg/config"
	telegram "cellseg/internal/api"
	app "cellseg/internal/application"
	"cellseg/internal/domain/port"
	"cellseg/internal/infrastructure/export"
	"cellseg/internal/infrastructure/storage"
	"cellseg/internal/infrastructure/vision"
)

type Container struct {
	Segmenter port.Segmenter
	Processor *app.ImageProcessor
	Writers   []port.ResultWriter
	Notifier  port.Notifier
	Batch     *app.BatchService
}

// New проверяет входной каталог, загружает модель и собирает сервисы.
// Конфигурация должна быть уже проверена Validate.
func New(cfg *config.Config, logger *zap.SugaredLogger) (*Container, error) {
	info, err := os.Stat(cfg.InputDir)
	if err != nil {
		return nil, errors.Wrap(err, "input directory")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("input path %s is not a directory", cfg.InputDir)
	}

	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}
	channel, err := cfg.Channel()
	if err != nil {
		return nil, err
	}

	segmenter, err := vision.NewSegmenter(vision.ModelConfig{
		Name:    cfg.Model.Name,
		Dir:     cfg.Model.Dir,
		Backend: backend,
	}, logger)
	if err != nil {
		return nil, err
	}

	processor := app.NewImageProcessor(vision.NewFileLoader(), segmenter, app.ProcessorOptions{
		Params:               cfg.EvalParams(),
		Channel:              channel,
		ChannelAxisThreshold: cfg.Segmentation.ChannelAxisThreshold,
	})

	// порядок записи: маска, наложение, контуры, сводка
	writers := []port.ResultWriter{
		export.NewMaskWriter(cfg.OutputDir),
		export.NewOverlayWriter(cfg.OutputDir, cfg.Output.OverlaySuffix, cfg.Output.NormalizeOverlay),
	}
	if cfg.Output.WriteROIs {
		writers = append(writers, export.NewROIWriter(cfg.OutputDir))
	}
	writers = append(writers, export.NewSummaryWriter(cfg.OutputDir))

	var notifier port.Notifier
	if cfg.NotifyEnabled() {
		notifier = telegram.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
	}

	batch := app.NewBatchService(storage.NewFileCollector(cfg.InputDir), processor, writers, notifier, logger)

	return &Container{
		Segmenter: segmenter,
		Processor: processor,
		Writers:   writers,
		Notifier:  notifier,
		Batch:     batch,
	}, nil
}

// Close освобождает модель
func (c *Container) Close() error {
	return c.Segmenter.Close()
}
