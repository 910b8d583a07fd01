// Package timeline materializes the message log of the active room.
// It handles ordering, wholesale reloads, and the self-destruct terminal
// transition. Staleness of async loads is resolved with a generation
// counter: every load begun bumps the generation and a result only applies
// if its generation is still the current one.
package timeline

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"chat-shell/domain"
)

type Timeline struct {
	mu       sync.Mutex
	log      *slog.Logger
	roomID   uuid.UUID
	hasRoom  bool
	messages []domain.Message
	loading  bool
	failed   bool
	gen      uint64
}

func NewTimeline(log *slog.Logger) *Timeline {
	return &Timeline{log: log}
}

// BeginLoad discards the current view, marks the timeline loading for the
// given room and returns the generation token the eventual result must
// present to Apply or Fail. A later BeginLoad supersedes the token.
func (t *Timeline) BeginLoad(roomID uuid.UUID) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	t.roomID = roomID
	t.hasRoom = true
	t.messages = nil
	t.loading = true
	t.failed = false
	return t.gen
}

// Apply installs a fetched message set. Returns false when the token is
// stale, in which case the result is dropped and the view untouched.
func (t *Timeline) Apply(gen uint64, messages []domain.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || !t.hasRoom {
		t.log.Debug("Discarding stale message fetch", "gen", gen, "current", t.gen)
		return false
	}
	t.messages = append([]domain.Message(nil), messages...)
	t.loading = false
	return true
}

// Fail clears the loading state and raises the load-failed signal, leaving
// the (empty) view as-is. Stale failures are ignored like stale results.
func (t *Timeline) Fail(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || !t.hasRoom {
		return false
	}
	t.loading = false
	t.failed = true
	return true
}

// Clear empties the timeline and invalidates any pending load.
func (t *Timeline) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	t.hasRoom = false
	t.messages = nil
	t.loading = false
	t.failed = false
}

// Append adds a sent message to the end of the log, provided the timeline
// currently materializes the given room.
func (t *Timeline) Append(roomID uuid.UUID, message domain.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasRoom || t.roomID != roomID {
		return false
	}
	t.messages = append(t.messages, message)
	return true
}

// Destroy applies the tombstone transition to the message with the given
// id. The message keeps its position; newly sent messages may have moved
// it from the end but never out of the log. When the message is gone
// (room changed, timeline reloaded) this is a safe no-op.
func (t *Timeline) Destroy(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.messages {
		if t.messages[i].ID == id {
			return t.messages[i].Destroy()
		}
	}
	return false
}

// Room returns the materialized room id, when there is one.
func (t *Timeline) Room() (uuid.UUID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roomID, t.hasRoom
}

// Messages returns a copy of the log in send order.
func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// LoadFailed reports whether the most recent load for the current room
// failed. Cleared by the next BeginLoad.
func (t *Timeline) LoadFailed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}
