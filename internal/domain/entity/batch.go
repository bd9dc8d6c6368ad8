package entity

import (
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// BatchState состояние пакетной обработки
type BatchState string

const (
	StateIdle    BatchState = "idle"    // До запуска
	StateRunning BatchState = "running" // Идёт обработка файлов
	StateDone    BatchState = "done"    // Все файлы пройдены
)

// Outcome — итог обработки одного файла: успех или ошибка.
type Outcome struct {
	Record    ImageRecord
	Count     int      // число найденных объектов
	Artifacts []string // пути записанных файлов
	Err       error
}

// OK сообщает, завершилась ли обработка без ошибки.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// BatchReport накапливает итоги по всем файлам пакета
type BatchReport struct {
	State    BatchState
	Outcomes []Outcome
}

// NewBatchReport создаёт отчёт в начальном состоянии
func NewBatchReport() *BatchReport {
	return &BatchReport{State: StateIdle}
}

// SetState обновляет состояние пакета
func (r *BatchReport) SetState(state BatchState) {
	r.State = state
}

// Add добавляет итог очередного файла
func (r *BatchReport) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *BatchReport) Total() int {
	return len(r.Outcomes)
}

func (r *BatchReport) Succeeded() int {
	return lo.CountBy(r.Outcomes, func(o Outcome) bool { return o.OK() })
}

func (r *BatchReport) Failed() int {
	return r.Total() - r.Succeeded()
}

// TotalDetected суммирует объекты по успешно обработанным файлам
func (r *BatchReport) TotalDetected() int {
	return lo.SumBy(lo.Filter(r.Outcomes, func(o Outcome, _ int) bool { return o.OK() }),
		func(o Outcome) int { return o.Count })
}

// Err объединяет ошибки всех неудачных файлов, nil если их нет
func (r *BatchReport) Err() error {
	var err error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", o.Record.Name(), o.Err))
		}
	}
	return err
}

// Summary возвращает однострочную сводку для лога и уведомлений
func (r *BatchReport) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d detected", r.Succeeded(), r.Failed(), r.TotalDetected())
}
