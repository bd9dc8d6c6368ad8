package port

import (
	"context"

	"cellseg/internal/domain/entity"
)

// ImageSource интерфейс источника входных файлов
type ImageSource interface {
	// Root возвращает корневой каталог обхода
	Root() string

	// Collect возвращает все найденные изображения, пустой список не ошибка
	Collect(ctx context.Context) ([]entity.ImageRecord, error)
}

// ImageLoader интерфейс декодера изображений
type ImageLoader interface {
	// Load читает файл в массив пикселей, ошибки оборачиваются в entity.DecodeError
	Load(path string) (entity.PixelArray, error)
}
