package storage

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// DefaultExtensions — расширения, которые считаются изображениями.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// FileCollector рекурсивно ищет изображения под корневым каталогом
type FileCollector struct {
	root       string
	extensions []string
}

// NewFileCollector создаёт сборщик; без расширений используется DefaultExtensions
func NewFileCollector(root string, extensions ...string) *FileCollector {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &FileCollector{
		root: root,
		extensions: lo.Map(extensions, func(ext string, _ int) string {
			return strings.ToLower(ext)
		}),
	}
}

// Root возвращает корневой каталог
func (c *FileCollector) Root() string {
	return c.root
}

// Collect обходит дерево каталогов и возвращает подходящие файлы.
// Порядок — по относительному пути, но вызывающий код на него не опирается.
func (c *FileCollector) Collect(ctx context.Context) ([]entity.ImageRecord, error) {
	root, err := filepath.Abs(c.root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve input dir %s", c.root)
	}

	var records []entity.ImageRecord
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !lo.Contains(c.extensions, strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		records = append(records, entity.ImageRecord{
			Path:     path,
			RelDir:   rel,
			Filename: d.Name(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan input dir %s", c.root)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Name() < records[j].Name()
	})
	return records, nil
}

// Проверка реализации интерфейса
var _ port.ImageSource = (*FileCollector)(nil)
