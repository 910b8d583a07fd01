package observability

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitor_Snapshot(t *testing.T) {
	req := require.New(t)
	monitor := NewMonitor(slog.Default())

	monitor.MessageSent()
	monitor.MessageSent()
	monitor.MessageDestroyed()
	monitor.StaleFetch()
	monitor.FetchError()
	monitor.RoomCreated()

	stats := monitor.Snapshot()
	req.Equal(uint64(2), stats.MessagesSent)
	req.Equal(uint64(1), stats.MessagesDestroyed)
	req.Equal(uint64(1), stats.StaleFetches)
	req.Equal(uint64(1), stats.FetchErrors)
	req.Equal(uint64(1), stats.RoomsCreated)
	req.False(stats.CollectedAt.IsZero())
}

func TestMonitor_ConcurrentIncrements(t *testing.T) {
	req := require.New(t)
	monitor := NewMonitor(slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.MessageSent()
		}()
	}
	wg.Wait()

	req.Equal(uint64(100), monitor.Snapshot().MessagesSent)
}
