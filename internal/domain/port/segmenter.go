package port

import (
	"context"

	"cellseg/internal/domain/entity"
)

// Segmenter интерфейс модели сегментации
type Segmenter interface {
	// Evaluate размечает изображение и возвращает маску меток
	Evaluate(ctx context.Context, img entity.PixelArray, params entity.EvalParams) (*entity.Segmentation, error)

	// Backend возвращает устройство, на котором работает модель
	Backend() entity.Backend

	// Close освобождает веса и устройство
	Close() error
}
