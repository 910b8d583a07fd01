//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-shell/domain"
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// DataSource is the external boundary the session core fetches from. It is
// modeled after a network API: latency and failure are its concern, the
// core only reacts to success or failure of each call.
type DataSource interface {
	FetchRooms(ctx context.Context) ([]*domain.Room, error)
	FetchMessages(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error)
}

// MessageStore receives messages the core sends so a later fetch of the
// same room observes them, tombstone included.
type MessageStore interface {
	StoreMessage(roomID uuid.UUID, message domain.Message) error
	MarkDestroyed(roomID uuid.UUID, message domain.Message) error
}

// RoomStore receives directory mutations (created rooms, membership
// changes) so a later fetch observes them.
type RoomStore interface {
	StoreRoom(room *domain.Room) error
}

// Scheduler runs one-shot destruction tasks keyed by message id. Cancel
// exists for forward compatibility; the default send path never retracts a
// pending destruction.
type Scheduler interface {
	Schedule(id uuid.UUID, delay time.Duration, task func())
	Cancel(id uuid.UUID) bool
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
