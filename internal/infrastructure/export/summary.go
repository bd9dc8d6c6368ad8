package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"cellseg/internal/domain/entity"
	"cellseg/internal/domain/port"
)

// SummaryFile — имя сводной таблицы в выходном каталоге.
const SummaryFile = "segmentation_summary.csv"

var summaryHeader = []string{"image_name", "number_detected"}

// SummaryWriter дописывает по строке на изображение в общую таблицу.
// Заголовок пишется только в новый файл, поэтому повторный запуск продолжает таблицу.
type SummaryWriter struct {
	mu   sync.Mutex
	path string
}

func NewSummaryWriter(outDir string) *SummaryWriter {
	return &SummaryWriter{path: filepath.Join(outDir, SummaryFile)}
}

func (w *SummaryWriter) Name() string { return "summary" }

// Path возвращает путь к таблице.
func (w *SummaryWriter) Path() string { return w.path }

func (w *SummaryWriter) Write(_ context.Context, res *entity.Result) (string, error) {
	if err := w.Append(res.Record.Name(), res.Count); err != nil {
		return "", err
	}
	return w.path, nil
}

// Append добавляет строку name,count.
func (w *SummaryWriter) Append(name string, count int) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", w.path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", w.path)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", w.path)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(summaryHeader); err != nil {
			return errors.Wrap(err, "write summary header")
		}
	}
	if err := cw.Write([]string{name, strconv.Itoa(count)}); err != nil {
		return errors.Wrap(err, "write summary row")
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush summary")
}

var _ port.ResultWriter = (*SummaryWriter)(nil)
