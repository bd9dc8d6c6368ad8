package port

import (
	"context"

	"cellseg/internal/domain/entity"
)

// ResultWriter интерфейс записи одного вида артефакта
type ResultWriter interface {
	// Name возвращает короткое имя артефакта для логов
	Name() string

	// Write сохраняет артефакт и возвращает путь; пустой путь значит, что запись пропущена
	Write(ctx context.Context, result *entity.Result) (string, error)
}
