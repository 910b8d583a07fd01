// Package runtime provides the scheduling machinery behind the session
// core: one-shot destruction timers and supervised background workers.
package runtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimerScheduler runs one-shot tasks on real timers, keyed by message id.
// Scheduling the same id again replaces the pending task.
type TimerScheduler struct {
	mu      sync.Mutex
	log     *slog.Logger
	timers  map[uuid.UUID]*time.Timer
	stopped bool
}

func NewTimerScheduler(log *slog.Logger) *TimerScheduler {
	return &TimerScheduler{
		log:    log,
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

func (s *TimerScheduler) Schedule(id uuid.UUID, delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		task()
	})
	s.log.Debug("Task scheduled", "id", id, "delay", delay)
}

// Cancel retracts a pending task. Reports whether one was still pending;
// a task already fired (or never scheduled) returns false.
func (s *TimerScheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	return timer.Stop()
}

// Stop cancels every pending task and refuses further scheduling.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
