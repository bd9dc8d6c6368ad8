package app

import (
	"context"
	"errors"
	"sync"

	"cellseg/internal/domain/entity"
)

type fakeSource struct {
	records []entity.ImageRecord
	err     error
}

func (s *fakeSource) Root() string { return "/in" }

func (s *fakeSource) Collect(context.Context) ([]entity.ImageRecord, error) {
	return s.records, s.err
}

// fakeLoader отдаёт заранее заданные массивы по пути, неизвестный путь — ошибка декодирования.
type fakeLoader struct {
	images map[string]entity.PixelArray
}

func (l *fakeLoader) Load(path string) (entity.PixelArray, error) {
	img, ok := l.images[path]
	if !ok {
		return entity.PixelArray{}, &entity.DecodeError{Path: path, Err: errors.New("not an image")}
	}
	return img, nil
}

// fakeSegmenter возвращает маску из count объектов по одному пикселю.
type fakeSegmenter struct {
	mu     sync.Mutex
	counts map[int]int // ширина входа -> число объектов
	inputs [][]int
	params []entity.EvalParams
}

func (s *fakeSegmenter) Evaluate(_ context.Context, img entity.PixelArray, params entity.EvalParams) (*entity.Segmentation, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, img.Shape())
	s.params = append(s.params, params)
	s.mu.Unlock()

	h, w := img.Height(), img.Width()
	labels := make([]int32, w*h)
	for i := 0; i < s.counts[w] && i < len(labels); i++ {
		labels[i*2%len(labels)] = int32(i + 1)
	}
	mask, err := entity.NewLabelMask(w, h, labels)
	if err != nil {
		return nil, err
	}
	return &entity.Segmentation{Mask: mask}, nil
}

func (s *fakeSegmenter) Backend() entity.Backend { return entity.BackendCPU }

func (s *fakeSegmenter) Close() error { return nil }

type recordingWriter struct {
	name   string
	skip   func(*entity.Result) bool
	fail   error
	writes []string
}

func (w *recordingWriter) Name() string { return w.name }

func (w *recordingWriter) Write(_ context.Context, res *entity.Result) (string, error) {
	if w.fail != nil {
		return "", w.fail
	}
	if w.skip != nil && w.skip(res) {
		return "", nil
	}
	path := res.Record.Stem() + "_" + w.name
	w.writes = append(w.writes, path)
	return path, nil
}

type fakeNotifier struct {
	reports []*entity.BatchReport
	err     error
}

func (n *fakeNotifier) Notify(_ context.Context, report *entity.BatchReport) error {
	n.reports = append(n.reports, report)
	return n.err
}

func grayArray(w, h int) entity.PixelArray {
	return entity.NewPixelArray(make([]float32, w*h), 8, h, w)
}
