package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chat-shell/domain"
)

// Source adapts the badger-backed repositories to the contract.DataSource
// boundary the session core fetches from. It stands in for a network API:
// an optional artificial latency keeps the async paths honest during
// manual testing, and every call honors context cancellation.
type Source struct {
	rooms    IRoomRepository
	messages IMessageRepository
	latency  time.Duration
	log      *slog.Logger
}

func NewSource(rooms IRoomRepository, messages IMessageRepository, latency time.Duration, log *slog.Logger) *Source {
	return &Source{rooms: rooms, messages: messages, latency: latency, log: log}
}

func (s *Source) FetchRooms(ctx context.Context) ([]*domain.Room, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.rooms.GetRooms()
}

func (s *Source) FetchMessages(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.messages.GetMessages(roomID)
}

func (s *Source) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.latency):
		return nil
	}
}
