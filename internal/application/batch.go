package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// BatchService проходит по всем файлам и собирает итоги в отчёт.
type BatchService struct {
	source    port.ImageSource
	processor *ImageProcessor
	writers   []port.ResultWriter
	notifier  port.Notifier
	logger    *zap.SugaredLogger
}

// NewBatchService создаёт контроллер пакета. notifier может быть nil.
func NewBatchService(source port.ImageSource, processor *ImageProcessor, writers []port.ResultWriter, notifier port.Notifier, logger *zap.SugaredLogger) *BatchService {
	return &BatchService{
		source:    source,
		processor: processor,
		writers:   writers,
		notifier:  notifier,
		logger:    logger,
	}
}

// Run обрабатывает файлы по одному. Ошибка возвращается только если не удалось
// получить список файлов; ошибки отдельных изображений попадают в отчёт.
func (s *BatchService) Run(ctx context.Context) (*entity.BatchReport, error) {
	report := entity.NewBatchReport()

	records, err := s.source.Collect(ctx)
	if err != nil {
		return report, err
	}
	if len(records) == 0 {
		s.logger.Infof("No images found in %s", s.source.Root())
		report.SetState(entity.StateDone)
		return report, nil
	}

	s.logger.Infof("Found %d images to process, channel: %s", len(records), s.processor.opts.Channel)
	report.SetState(entity.StateRunning)

	for i, record := range records {
		s.logger.Infof("Processing %d/%d: %s", i+1, len(records), record.Name())

		outcome := s.processOne(ctx, record)
		if outcome.Err != nil {
			s.logger.Errorf("ERROR processing %s: %v", record.Name(), outcome.Err)
		}
		report.Add(outcome)
	}

	report.SetState(entity.StateDone)
	s.logger.Infof("Batch complete: %s", report.Summary())

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, report); err != nil {
			s.logger.Warnf("Failed to send batch notification: %v", err)
		}
	}
	return report, nil
}

// processOne прогоняет одно изображение через модель и все писатели.
// Первая ошибка писателя прерывает обработку файла; уже записанные файлы остаются.
func (s *BatchService) processOne(ctx context.Context, record entity.ImageRecord) entity.Outcome {
	outcome := entity.Outcome{Record: record}

	start := time.Now()
	result, err := s.processor.Process(ctx, record)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Debugw("Processing failed", "image", record.Name(), "elapsed", elapsed)
		outcome.Err = err
		return outcome
	}
	outcome.Count = result.Count
	s.logger.With("elapsed", elapsed).Infof("Result: %d detected", result.Count)

	for _, w := range s.writers {
		path, err := w.Write(ctx, result)
		if err != nil {
			outcome.Err = err
			return outcome
		}
		if path == "" {
			s.logger.Debugf("Skipped %s for %s", w.Name(), record.Name())
			continue
		}
		outcome.Artifacts = append(outcome.Artifacts, path)
		s.logger.Debugf("Saved %s: %s", w.Name(), path)
	}
	return outcome
}
