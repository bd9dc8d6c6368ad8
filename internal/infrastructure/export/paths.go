package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"cellseg/internal/domain/entity"
)

// artifactPath строит путь <out>/<stem><suffix> и создаёт нужные каталоги.
func artifactPath(outDir string, record entity.ImageRecord, suffix string) (string, error) {
	path := filepath.Join(outDir, record.Stem()+suffix)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrapf(err, "create directory for %s", path)
	}
	return path, nil
}
