package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/tellersim/tracing"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// Snapshot returns the current counters.
func (b *ProgressBar) Snapshot() (finished, inProgress uint64) {
	b.Lock()
	defer b.Unlock()

	return b.Finished, b.InProgress
}

// progressTracer moves a bar along as tasks of one kind start and end.
type progressTracer struct {
	bar      *ProgressBar
	filter   tracing.TaskFilter
	lock     sync.Mutex
	inflight map[string]bool
}

func newProgressTracer(
	bar *ProgressBar,
	filter tracing.TaskFilter,
) *progressTracer {
	return &progressTracer{
		bar:      bar,
		filter:   filter,
		inflight: make(map[string]bool),
	}
}

func (t *progressTracer) StartTask(task tracing.Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflight[task.ID] = true
	t.lock.Unlock()

	t.bar.IncrementInProgress(1)
}

func (t *progressTracer) EndTask(task tracing.Task) {
	t.lock.Lock()
	_, ok := t.inflight[task.ID]
	delete(t.inflight, task.ID)
	t.lock.Unlock()

	if ok {
		t.bar.MoveInProgressToFinished(1)
	}
}
