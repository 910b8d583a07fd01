package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-shell/auth"
	"chat-shell/contract"
	"chat-shell/directory"
	"chat-shell/domain"
	"chat-shell/domain/chat"
	"chat-shell/errors"
	"chat-shell/moderation"
	"chat-shell/observability"
	"chat-shell/search"
	"chat-shell/timeline"
)

type IChatService interface {
	LoadRooms(ctx context.Context) error
	Rooms() []*domain.Room
	ActiveRoom() *domain.Room
	Messages() []domain.Message
	IsLoading() bool
	SelectRoom(ctx context.Context, roomID uuid.UUID)
	CreateRoom(cmd chat.CreateRoomCommand) (*domain.Room, error)
	SendMessage(cmd chat.SendCommand) (domain.Message, error)
	JoinRoom(roomID uuid.UUID) error
	LeaveRoom(roomID uuid.UUID) error
	Reset()
}

// ChatService is the session core facade the presentation layer talks to.
// It couples the room directory and the message timeline through the
// active-room selection and owns the staleness discipline for async
// fetches: latest selection wins, stale results are discarded on arrival.
type ChatService struct {
	log       *slog.Logger
	session   *auth.Session
	source    contract.DataSource
	scheduler contract.Scheduler
	monitor   *observability.Monitor

	// Optional collaborators, nil when not wired.
	messageStore contract.MessageStore
	roomStore    contract.RoomStore
	moderator    *moderation.Moderator
	index        *search.Index

	directory *directory.Directory
	timeline  *timeline.Timeline

	mu           sync.Mutex
	activeID     uuid.UUID
	hasActive    bool
	roomsGen     uint64
	roomsLoading bool
}

func NewChatService(
	session *auth.Session,
	source contract.DataSource,
	scheduler contract.Scheduler,
	monitor *observability.Monitor,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		log:       log,
		session:   session,
		source:    source,
		scheduler: scheduler,
		monitor:   monitor,
		directory: directory.NewDirectory(session, log),
		timeline:  timeline.NewTimeline(log),
	}
}

// WithStores wires persistence for sent messages and directory mutations.
func (s *ChatService) WithStores(messages contract.MessageStore, rooms contract.RoomStore) *ChatService {
	s.messageStore = messages
	s.roomStore = rooms
	return s
}

// WithModerator censors sends into moderated rooms.
func (s *ChatService) WithModerator(moderator *moderation.Moderator) *ChatService {
	s.moderator = moderator
	return s
}

// WithIndex feeds sent and destroyed messages into the search index.
func (s *ChatService) WithIndex(index *search.Index) *ChatService {
	s.index = index
	return s
}

// LoadRooms fetches the room directory from the data source, replacing the
// in-memory set. A concurrent later load supersedes this one; the stale
// result is dropped on arrival and the directory left untouched by it.
func (s *ChatService) LoadRooms(ctx context.Context) error {
	if s.session.Current() == nil {
		return errors.ErrNoActiveUser
	}

	s.mu.Lock()
	s.roomsGen++
	gen := s.roomsGen
	s.roomsLoading = true
	s.mu.Unlock()

	rooms, err := s.source.FetchRooms(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.roomsGen {
		s.monitor.StaleFetch()
		s.log.Debug("Discarding stale room fetch", "gen", gen)
		return nil
	}
	s.roomsLoading = false
	if err != nil {
		s.monitor.FetchError()
		return fmt.Errorf("%w: %v", errors.ErrFetchFailed, err)
	}
	s.directory.Replace(rooms)
	return nil
}

func (s *ChatService) Rooms() []*domain.Room {
	return s.directory.Rooms()
}

// ActiveRoom returns the currently open room, or nil when none is.
func (s *ChatService) ActiveRoom() *domain.Room {
	s.mu.Lock()
	id, ok := s.activeID, s.hasActive
	s.mu.Unlock()

	if !ok {
		return nil
	}
	room, found := s.directory.Get(id)
	if !found {
		return nil
	}
	return room
}

func (s *ChatService) Messages() []domain.Message {
	return s.timeline.Messages()
}

func (s *ChatService) IsLoading() bool {
	s.mu.Lock()
	roomsLoading := s.roomsLoading
	s.mu.Unlock()
	return roomsLoading || s.timeline.Loading()
}

// SelectRoom opens a room and reloads its timeline from the data source.
// An unknown id fails open to no selection. A rapid second selection
// supersedes the pending reload; the older result is discarded when it
// lands, so two rooms' messages never interleave in one view.
func (s *ChatService) SelectRoom(ctx context.Context, roomID uuid.UUID) {
	room, ok := s.directory.Get(roomID)

	s.mu.Lock()
	if !ok {
		s.hasActive = false
		s.mu.Unlock()
		s.timeline.Clear()
		s.log.Debug("Unknown room, selection cleared", "room", roomID)
		return
	}
	s.activeID = room.ID
	s.hasActive = true
	// Selection and load generation move together; a concurrent caller
	// never observes one room active with another room's reload pending.
	gen := s.timeline.BeginLoad(room.ID)
	s.mu.Unlock()

	go s.resolveMessages(ctx, room.ID, gen)
}

func (s *ChatService) resolveMessages(ctx context.Context, roomID uuid.UUID, gen uint64) {
	messages, err := s.source.FetchMessages(ctx, roomID)
	if err != nil {
		if s.timeline.Fail(gen) {
			s.monitor.FetchError()
			s.log.Warn("Message fetch failed", "room", roomID, "err", err)
		}
		return
	}
	if !s.timeline.Apply(gen, messages) {
		s.monitor.StaleFetch()
		s.log.Debug("Stale message fetch discarded", "room", roomID)
	}
}

// CreateRoom adds a room to the directory and persists it when a room
// store is wired.
func (s *ChatService) CreateRoom(cmd chat.CreateRoomCommand) (*domain.Room, error) {
	room, err := s.directory.Create(cmd)
	if err != nil {
		return nil, err
	}
	s.monitor.RoomCreated()
	s.persistRoom(room)
	return room, nil
}

func (s *ChatService) JoinRoom(roomID uuid.UUID) error {
	if err := s.directory.Join(roomID); err != nil {
		return err
	}
	if room, ok := s.directory.Get(roomID); ok {
		s.persistRoom(room)
	}
	return nil
}

// LeaveRoom removes the current user from the room. Leaving the active
// room clears the selection and discards its timeline; any pending
// self-destruct timers keep running and resolve as safe no-ops.
func (s *ChatService) LeaveRoom(roomID uuid.UUID) error {
	if err := s.directory.Leave(roomID); err != nil {
		return err
	}

	s.mu.Lock()
	wasActive := s.hasActive && s.activeID == roomID
	if wasActive {
		s.hasActive = false
	}
	s.mu.Unlock()

	if wasActive {
		s.timeline.Clear()
		s.log.Debug("Active room left, selection cleared", "room", roomID)
	}
	if room, ok := s.directory.Get(roomID); ok {
		s.persistRoom(room)
	}
	return nil
}

// SendMessage appends a message to the active timeline in send order.
// Messages sent through the core are always annotated encrypted. A
// self-destructing send schedules a one-shot destruction task keyed by the
// message id; there is no path that retracts it afterwards.
func (s *ChatService) SendMessage(cmd chat.SendCommand) (domain.Message, error) {
	user := s.session.Current()
	if user == nil {
		return domain.Message{}, errors.ErrNoActiveUser
	}

	cmd.Content = strings.TrimSpace(cmd.Content)
	if cmd.Content == "" {
		return domain.Message{}, fmt.Errorf("%w: empty message content", errors.ErrValidation)
	}

	room, ok := s.directory.Get(cmd.Room)
	if !ok {
		return domain.Message{}, errors.ErrRoomNotFound
	}
	if !room.HasParticipant(user.ID) {
		return domain.Message{}, errors.ErrNotParticipant
	}

	content := cmd.Content
	if room.Moderated && s.moderator != nil {
		if censored, hit := s.moderator.Censor(content); hit {
			s.log.Debug("Message censored", "room", room.ID, "user", user.ID)
			content = censored
		}
	}

	after := cmd.SelfDestructAfter
	if cmd.SelfDestruct && after <= 0 {
		after = domain.DefaultSelfDestructAfter
	}
	if !cmd.SelfDestruct {
		after = 0
	}

	message := domain.Message{
		ID:                uuid.New(),
		SenderID:          user.ID,
		Content:           content,
		SentAt:            time.Now().UTC(),
		Encrypted:         true,
		SelfDestruct:      cmd.SelfDestruct,
		SelfDestructAfter: after,
	}

	s.timeline.Append(cmd.Room, message)
	s.monitor.MessageSent()

	if s.messageStore != nil {
		if err := s.messageStore.StoreMessage(cmd.Room, message); err != nil {
			s.log.Warn("Failed to store message", "room", cmd.Room, "err", err)
		}
	}
	if s.index != nil {
		if err := s.index.Add(cmd.Room, message); err != nil {
			s.log.Warn("Failed to index message", "room", cmd.Room, "err", err)
		}
	}

	if cmd.SelfDestruct {
		roomID := cmd.Room
		s.scheduler.Schedule(message.ID, after, func() {
			s.destroy(roomID, message)
		})
	}

	return message, nil
}

// destroy is the destruction task body. When the message is no longer in
// the live timeline (room changed, timeline reloaded) the view is left
// alone; the stored record and the index still receive the tombstone so
// no later fetch resurrects the content.
func (s *ChatService) destroy(roomID uuid.UUID, message domain.Message) {
	if s.timeline.Destroy(message.ID) {
		s.monitor.MessageDestroyed()
		s.log.Debug("Message self-destructed", "message", message.ID, "room", roomID)
	}

	if s.messageStore != nil {
		if err := s.messageStore.MarkDestroyed(roomID, message); err != nil {
			s.log.Warn("Failed to tombstone stored message", "message", message.ID, "err", err)
		}
	}
	if s.index != nil {
		tombstoned := message
		tombstoned.Deleted = true
		tombstoned.Content = domain.Tombstone
		if err := s.index.Add(roomID, tombstoned); err != nil {
			s.log.Warn("Failed to tombstone indexed message", "message", message.ID, "err", err)
		}
	}
}

// Reset drops rooms, selection and timeline. Wired to session sign-out.
func (s *ChatService) Reset() {
	s.mu.Lock()
	s.hasActive = false
	s.roomsGen++ // invalidate any in-flight room fetch
	s.roomsLoading = false
	s.mu.Unlock()

	s.directory.Reset()
	s.timeline.Clear()
	s.log.Info("Session state reset")
}

func (s *ChatService) persistRoom(room *domain.Room) {
	if s.roomStore == nil {
		return
	}
	if err := s.roomStore.StoreRoom(room); err != nil {
		s.log.Warn("Failed to store room", "room", room.ID, "err", err)
	}
}
