// Package observability aggregates session counters for the heartbeat
// worker and the presentation layer.
package observability

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// SessionStats is a point-in-time snapshot of the session core.
type SessionStats struct {
	MessagesSent      uint64 `json:"messages_sent"`
	MessagesDestroyed uint64 `json:"messages_destroyed"`
	StaleFetches      uint64 `json:"stale_fetches_discarded"`
	FetchErrors       uint64 `json:"fetch_errors"`
	RoomsCreated      uint64 `json:"rooms_created"`

	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`

	CollectedAt time.Time `json:"collected_at"`
}

// Monitor collects counters from the chat service. All increments are
// atomic; Snapshot is safe from any goroutine.
type Monitor struct {
	log *slog.Logger

	messagesSent      atomic.Uint64
	messagesDestroyed atomic.Uint64
	staleFetches      atomic.Uint64
	fetchErrors       atomic.Uint64
	roomsCreated      atomic.Uint64
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{log: log}
}

func (m *Monitor) MessageSent()      { m.messagesSent.Add(1) }
func (m *Monitor) MessageDestroyed() { m.messagesDestroyed.Add(1) }
func (m *Monitor) StaleFetch()       { m.staleFetches.Add(1) }
func (m *Monitor) FetchError()       { m.fetchErrors.Add(1) }
func (m *Monitor) RoomCreated()      { m.roomsCreated.Add(1) }

// Snapshot reads the counters and the Go runtime memory stats.
func (m *Monitor) Snapshot() SessionStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SessionStats{
		MessagesSent:      m.messagesSent.Load(),
		MessagesDestroyed: m.messagesDestroyed.Load(),
		StaleFetches:      m.staleFetches.Load(),
		FetchErrors:       m.fetchErrors.Load(),
		RoomsCreated:      m.roomsCreated.Load(),
		AllocMemMb:        mem.Alloc / 1024 / 1024,
		NumGC:             mem.NumGC,
		CollectedAt:       time.Now().UTC(),
	}
}
