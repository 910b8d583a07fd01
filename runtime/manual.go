package runtime

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ManualScheduler is a deterministic Scheduler for tests: time only moves
// when Advance is called. A task fires once the simulated clock reaches
// its due point, so advancing by exactly the scheduled delay fires it and
// one tick less does not.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []manualTask
}

type manualTask struct {
	id  uuid.UUID
	due time.Duration
	seq int
	fn  func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Schedule(id uuid.UUID, delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].id == id {
			s.tasks[i].due = s.now + delay
			s.tasks[i].fn = task
			return
		}
	}
	s.tasks = append(s.tasks, manualTask{id: id, due: s.now + delay, seq: len(s.tasks), fn: task})
}

func (s *ManualScheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].id == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
}

// Advance moves the simulated clock and fires every task now due, in
// due-then-schedule order. Tasks run outside the lock so they may
// schedule or cancel freely.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d

	var due []manualTask
	var remaining []manualTask
	for _, task := range s.tasks {
		if task.due <= s.now {
			due = append(due, task)
		} else {
			remaining = append(remaining, task)
		}
	}
	s.tasks = remaining
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, task := range due {
		task.fn()
	}
}

// Pending returns the number of scheduled, unfired tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
