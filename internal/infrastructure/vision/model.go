package vision

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// ModelConfig описывает, какую модель и на каком устройстве загрузить.
type ModelConfig struct {
	Name    string         // "otsu", имя/путь файла сети или пусто для DefaultModel
	Dir     string         // каталог с файлами сетей
	Backend entity.Backend // auto или конкретное устройство
}

// NewSegmenter выбирает устройство и загружает модель. Ошибка здесь фатальна
// для всего пакета.
func NewSegmenter(cfg ModelConfig, logger *zap.SugaredLogger) (port.Segmenter, error) {
	return newSegmenter(cfg, DefaultProbes(), logger)
}

func newSegmenter(cfg ModelConfig, probes []BackendProbe, logger *zap.SugaredLogger) (port.Segmenter, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultModel
	}
	if strings.EqualFold(cfg.Name, ModelOtsu) {
		logger.Info(entity.BackendCPU.Description())
		logger.Infof("Initialized segmentation model: %s", ModelOtsu)
		return NewOtsuSegmenter(), nil
	}

	backend := SelectBackend(cfg.Backend, probes)
	logger.Info(backend.Description())

	path := ResolveModelPath(cfg)
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load model %q", cfg.Name)
	}
	if info.IsDir() {
		return nil, errors.Errorf("load model %q: %s is a directory", cfg.Name, path)
	}

	seg, err := newDNNSegmenter(path, backend)
	if err != nil {
		return nil, errors.Wrapf(err, "load model %q", cfg.Name)
	}
	logger.Infof("Initialized segmentation model: %s (%s)", cfg.Name, path)
	return seg, nil
}

// ResolveModelPath превращает имя модели в путь: имя с расширением или
// с разделителем пути используется как есть, иначе ищется <Dir>/<Name>.onnx.
func ResolveModelPath(cfg ModelConfig) string {
	if filepath.Ext(cfg.Name) != "" || strings.ContainsRune(cfg.Name, filepath.Separator) {
		return cfg.Name
	}
	return filepath.Join(cfg.Dir, cfg.Name+".onnx")
}
