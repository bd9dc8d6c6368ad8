//go:build !gocv
// +build !gocv

package vision

import (
	"github.com/pkg/errors"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// DefaultModel используется, когда имя модели не задано. Без gocv доступна
// только встроенная модель.
const DefaultModel = ModelOtsu

// newDNNSegmenter возвращает ошибку, если сборка без тега gocv.
func newDNNSegmenter(path string, backend entity.Backend) (port.Segmenter, error) {
	_ = backend
	return nil, errors.Errorf("gocv build tag is not enabled, cannot load network %s (use --model %s)", path, ModelOtsu)
}
