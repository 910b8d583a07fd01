package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-shell/domain"
)

func TestStoreAndGetRooms(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewRoomRepository(db, slog.Default())
	now := time.Now().UTC().Truncate(time.Millisecond)

	general := domain.NewRoom(uuid.New(), "General Chat", domain.Group, []string{"general"}, now)
	general.Description = "Public chat room for everyone"
	general.SetParticipants([]string{"1", "2", "3"})

	anon := domain.NewRoom(uuid.New(), "Anonymous Room #1042", domain.Anonymous, nil, now)

	req.NoError(repository.StoreRoom(general))
	req.NoError(repository.StoreRoom(anon))

	rooms, err := repository.GetRooms()
	req.NoError(err)
	req.Len(rooms, 2)

	byID := make(map[uuid.UUID]*domain.Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}

	fetched := byID[general.ID]
	req.NotNil(fetched)
	req.Equal("General Chat", fetched.Name)
	req.Equal("Public chat room for everyone", fetched.Description)
	req.Equal(domain.Group, fetched.Kind)
	req.True(fetched.Moderated)
	req.Equal([]string{"1", "2", "3"}, fetched.Participants())
	req.Equal(now, fetched.CreatedAt)

	req.NotNil(byID[anon.ID])
	req.False(byID[anon.ID].Moderated)
}

func TestStoreRoom_UpdateOverwrites(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewRoomRepository(db, slog.Default())
	room := domain.NewRoom(uuid.New(), "General Chat", domain.Group, nil, time.Now().UTC())

	req.NoError(repository.StoreRoom(room))
	room.AddParticipant("alice")
	req.NoError(repository.StoreRoom(room))

	rooms, err := repository.GetRooms()
	req.NoError(err)
	req.Len(rooms, 1)
	req.Equal([]string{"alice"}, rooms[0].Participants())
}

func TestGetRooms_EmptyStore(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewRoomRepository(db, slog.Default())
	rooms, err := repository.GetRooms()
	req.NoError(err)
	req.Empty(rooms)
}
