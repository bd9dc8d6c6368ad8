package port

import (
	"context"

	"cellseg/internal/domain/entity"
)

// Notifier интерфейс уведомления о завершении пакета
type Notifier interface {
	// Notify отправляет сводку по пакету
	Notify(ctx context.Context, report *entity.BatchReport) error
}
