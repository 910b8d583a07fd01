//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-shell/domain"
)

type IRoomRepository interface {
	StoreRoom(room *domain.Room) error
	GetRooms() ([]*domain.Room, error)
}

type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) RoomRepository {
	return RoomRepository{db: db, log: log}
}

type diskRoom struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Kind         domain.Kind `json:"kind"`
	Participants []string    `json:"participants"`
	Tags         []string    `json:"tags"`
	Moderated    bool        `json:"moderated"`
	CreatedAt    int64       `json:"created_at"` // unix nanoseconds
}

// StoreRoom persists the room under "room:{uuid}". Rooms carry no
// messages on disk; the message repository owns those under its own keys.
func (r RoomRepository) StoreRoom(room *domain.Room) error {
	bytes, err := json.Marshal(fromRoom(room))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("room:"+room.ID.String()), bytes)
	})
}

// GetRooms scans the room prefix and returns every stored room.
func (r RoomRepository) GetRooms() ([]*domain.Room, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("room:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rooms := make([]diskRoom, 0, len(raw))
	for _, b := range raw {
		var dr diskRoom
		if err = json.Unmarshal(b, &dr); err != nil {
			return nil, err
		}
		rooms = append(rooms, dr)
	}

	return lo.Map(rooms, func(dr diskRoom, _ int) *domain.Room {
		return toRoom(dr)
	}), nil
}

func fromRoom(room *domain.Room) diskRoom {
	return diskRoom{
		ID:           room.ID,
		Name:         room.Name,
		Description:  room.Description,
		Kind:         room.Kind,
		Participants: room.Participants(),
		Tags:         room.Tags,
		Moderated:    room.Moderated,
		CreatedAt:    room.CreatedAt.UnixNano(),
	}
}

func toRoom(dr diskRoom) *domain.Room {
	room := &domain.Room{
		ID:          dr.ID,
		Name:        dr.Name,
		Description: dr.Description,
		Kind:        dr.Kind,
		Tags:        dr.Tags,
		Moderated:   dr.Moderated,
		CreatedAt:   time.Unix(0, dr.CreatedAt).UTC(),
	}
	room.SetParticipants(dr.Participants)
	return room
}
