// Package directory holds the authoritative in-memory set of rooms for
// one session. All mutations are serialized behind a single mutex so
// concurrent create/join/leave calls cannot produce a lost update.
package directory

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"chat-shell/auth"
	"chat-shell/domain"
	"chat-shell/domain/chat"
	"chat-shell/errors"
)

var validate = validator.New()

type Directory struct {
	mu      sync.Mutex
	log     *slog.Logger
	session *auth.Session
	rooms   []*domain.Room
	byID    map[uuid.UUID]*domain.Room
}

func NewDirectory(session *auth.Session, log *slog.Logger) *Directory {
	return &Directory{
		log:     log,
		session: session,
		byID:    make(map[uuid.UUID]*domain.Room),
	}
}

// Replace installs a freshly fetched room set, discarding the previous one.
func (d *Directory) Replace(rooms []*domain.Room) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rooms = rooms
	d.byID = make(map[uuid.UUID]*domain.Room, len(rooms))
	for _, room := range rooms {
		d.byID[room.ID] = room
	}
}

// Reset drops every room, used when the session ends.
func (d *Directory) Reset() {
	d.Replace(nil)
}

// Rooms returns the directory in insertion order.
func (d *Directory) Rooms() []*domain.Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*domain.Room, len(d.rooms))
	copy(out, d.rooms)
	return out
}

func (d *Directory) Get(id uuid.UUID) (*domain.Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.byID[id]
	return room, ok
}

// Create appends a new room with a fresh id. The creator becomes the sole
// participant when signed in; an unauthenticated create still succeeds
// with an empty membership, matching the lenient multi-tenant semantics of
// room provisioning. The name must be non-blank after trimming.
func (d *Directory) Create(cmd chat.CreateRoomCommand) (*domain.Room, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	room := domain.NewRoom(uuid.New(), cmd.Name, domain.Kind(cmd.Kind), cmd.Tags, time.Now().UTC())
	if user := d.session.Current(); user != nil {
		room.AddParticipant(user.ID)
	}

	d.mu.Lock()
	d.rooms = append(d.rooms, room)
	d.byID[room.ID] = room
	d.mu.Unlock()

	d.log.Info("Room created", "room", room.ID, "kind", room.Kind, "moderated", room.Moderated)
	return room, nil
}

// Join adds the current user to the room's membership. Joining a room the
// user is already in is a no-op, not an error.
func (d *Directory) Join(id uuid.UUID) error {
	user := d.session.Current()
	if user == nil {
		return errors.ErrNoActiveUser
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.byID[id]
	if !ok {
		return errors.ErrRoomNotFound
	}
	if room.AddParticipant(user.ID) {
		d.log.Debug("Joined room", "room", id, "user", user.ID)
	}
	return nil
}

// Leave removes the current user from the room's membership. Leaving a
// room the user is not in is a no-op.
func (d *Directory) Leave(id uuid.UUID) error {
	user := d.session.Current()
	if user == nil {
		return errors.ErrNoActiveUser
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.byID[id]
	if !ok {
		return errors.ErrRoomNotFound
	}
	if room.RemoveParticipant(user.ID) {
		d.log.Debug("Left room", "room", id, "user", user.ID)
	}
	return nil
}
