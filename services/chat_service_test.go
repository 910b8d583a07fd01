package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-shell/auth"
	"chat-shell/domain"
	"chat-shell/domain/chat"
	"chat-shell/errors"
	"chat-shell/mocks"
	"chat-shell/moderation"
	"chat-shell/observability"
	"chat-shell/runtime"
)

type serviceFixture struct {
	service   *ChatService
	session   *auth.Session
	source    *mocks.MockDataSource
	scheduler *runtime.ManualScheduler
	monitor   *observability.Monitor
}

func newFixture(t *testing.T) serviceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	session := auth.NewSession()
	source := mocks.NewMockDataSource(ctrl)
	scheduler := runtime.NewManualScheduler()
	monitor := observability.NewMonitor(slog.Default())

	return serviceFixture{
		service:   NewChatService(session, source, scheduler, monitor, slog.Default()),
		session:   session,
		source:    source,
		scheduler: scheduler,
		monitor:   monitor,
	}
}

func (f serviceFixture) signIn(userID string) {
	f.session.Begin(domain.UserIdentity{ID: userID, Username: userID, DisplayName: userID}, "token")
}

func groupRoom(name string, participants ...string) *domain.Room {
	room := domain.NewRoom(uuid.New(), name, domain.Group, nil, time.Now().UTC())
	room.SetParticipants(participants)
	return room
}

// loadAndSelect drives the fixture into a settled state with the given
// room active and its (empty) timeline resolved.
func (f serviceFixture) loadAndSelect(t *testing.T, room *domain.Room) {
	t.Helper()
	req := require.New(t)

	f.source.EXPECT().FetchRooms(gomock.Any()).Return([]*domain.Room{room}, nil)
	f.source.EXPECT().FetchMessages(gomock.Any(), room.ID).Return(nil, nil)

	req.NoError(f.service.LoadRooms(context.Background()))
	f.service.SelectRoom(context.Background(), room.ID)
	req.Eventually(func() bool {
		return !f.service.IsLoading()
	}, time.Second, 5*time.Millisecond)
}

func TestLoadRooms_RequiresSignIn(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.ErrorIs(f.service.LoadRooms(context.Background()), errors.ErrNoActiveUser)
}

func TestLoadRooms_PopulatesDirectory(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	rooms := []*domain.Room{groupRoom("General Chat", "alice"), groupRoom("Tech Enthusiasts")}
	f.source.EXPECT().FetchRooms(gomock.Any()).Return(rooms, nil)

	req.NoError(f.service.LoadRooms(context.Background()))
	req.Equal(rooms, f.service.Rooms())
	req.False(f.service.IsLoading())
}

func TestLoadRooms_FetchFailure(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	f.source.EXPECT().FetchRooms(gomock.Any()).Return(nil, context.DeadlineExceeded)

	err := f.service.LoadRooms(context.Background())
	req.ErrorIs(err, errors.ErrFetchFailed)
	req.Equal(uint64(1), f.monitor.Snapshot().FetchErrors)
	req.Empty(f.service.Rooms())
}

func TestSelectRoom_UnknownIDClearsSelection(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)
	req.NotNil(f.service.ActiveRoom())

	f.service.SelectRoom(context.Background(), uuid.New())
	req.Nil(f.service.ActiveRoom())
	req.Empty(f.service.Messages())
}

func TestSelectRoom_RapidReselectionDiscardsStaleFetch(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	roomA := groupRoom("General Chat", "alice")
	roomB := groupRoom("Tech Enthusiasts", "alice")
	f.source.EXPECT().FetchRooms(gomock.Any()).Return([]*domain.Room{roomA, roomB}, nil)
	req.NoError(f.service.LoadRooms(context.Background()))

	messagesA := []domain.Message{{ID: uuid.New(), SenderID: "bob", Content: "from room a"}}
	messagesB := []domain.Message{{ID: uuid.New(), SenderID: "clara", Content: "from room b"}}

	// The first fetch stalls until released, the second resolves at once.
	release := make(chan struct{})
	f.source.EXPECT().FetchMessages(gomock.Any(), roomA.ID).DoAndReturn(
		func(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error) {
			<-release
			return messagesA, nil
		})
	f.source.EXPECT().FetchMessages(gomock.Any(), roomB.ID).Return(messagesB, nil)

	f.service.SelectRoom(context.Background(), roomA.ID)
	f.service.SelectRoom(context.Background(), roomB.ID)

	req.Eventually(func() bool {
		messages := f.service.Messages()
		return len(messages) == 1 && messages[0].Content == "from room b"
	}, time.Second, 5*time.Millisecond)

	close(release)

	// The stale result must be counted and dropped, never interleaved.
	req.Eventually(func() bool {
		return f.monitor.Snapshot().StaleFetches == 1
	}, time.Second, 5*time.Millisecond)
	messages := f.service.Messages()
	req.Len(messages, 1)
	req.Equal("from room b", messages[0].Content)
	req.Equal(roomB.ID, f.service.ActiveRoom().ID)
}

func TestSelectRoom_ConcurrentSelectionsStayConsistent(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	roomA := groupRoom("General Chat", "alice")
	roomB := groupRoom("Tech Enthusiasts", "alice")
	f.source.EXPECT().FetchRooms(gomock.Any()).Return([]*domain.Room{roomA, roomB}, nil)
	req.NoError(f.service.LoadRooms(context.Background()))

	contentFor := map[uuid.UUID]string{roomA.ID: "from room a", roomB.ID: "from room b"}
	f.source.EXPECT().FetchMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error) {
			return []domain.Message{{ID: uuid.New(), SenderID: "bob", Content: contentFor[roomID]}}, nil
		}).AnyTimes()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		room := roomA
		if i%2 == 1 {
			room = roomB
		}
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			f.service.SelectRoom(context.Background(), id)
		}(room.ID)
	}
	wg.Wait()

	req.Eventually(func() bool {
		return !f.service.IsLoading()
	}, time.Second, 5*time.Millisecond)

	// Whichever selection won, the resolved timeline must belong to it.
	active := f.service.ActiveRoom()
	req.NotNil(active)
	messages := f.service.Messages()
	req.Len(messages, 1)
	req.Equal(contentFor[active.ID], messages[0].Content)
}

func TestSendMessage_RequiresSignIn(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, err := f.service.SendMessage(chat.SendCommand{Room: uuid.New(), Content: "hello"})
	req.ErrorIs(err, errors.ErrNoActiveUser)
}

func TestSendMessage_Validation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)

	_, err := f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "   "})
	req.ErrorIs(err, errors.ErrValidation)

	_, err = f.service.SendMessage(chat.SendCommand{Room: uuid.New(), Content: "hello"})
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestSendMessage_RequiresMembership(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "bob")
	f.loadAndSelect(t, room)

	_, err := f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "hello"})
	req.ErrorIs(err, errors.ErrNotParticipant)
}

func TestSendMessage_AppendsInOrder(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)

	first, err := f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "first"})
	req.NoError(err)
	req.True(first.Encrypted)
	req.Equal("alice", first.SenderID)

	second, err := f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "  second  "})
	req.NoError(err)
	req.Equal("second", second.Content)

	messages := f.service.Messages()
	req.Len(messages, 2)
	req.Equal(first.ID, messages[0].ID)
	req.Equal(second.ID, messages[1].ID)
	req.Equal(uint64(2), f.monitor.Snapshot().MessagesSent)
}

func TestSendMessage_SelfDestructAtDefaultDelay(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)

	sent, err := f.service.SendMessage(chat.SendCommand{
		Room:         room.ID,
		Content:      "burn after reading",
		SelfDestruct: true,
	})
	req.NoError(err)
	req.Equal(domain.DefaultSelfDestructAfter, sent.SelfDestructAfter)

	// One tick before the deadline the content is still readable.
	f.scheduler.Advance(domain.DefaultSelfDestructAfter - time.Second)
	req.Equal("burn after reading", f.service.Messages()[0].Content)

	// Reaching the deadline exactly destroys it, in place.
	f.scheduler.Advance(time.Second)
	messages := f.service.Messages()
	req.Len(messages, 1)
	req.Equal(sent.ID, messages[0].ID)
	req.Equal(domain.Tombstone, messages[0].Content)
	req.True(messages[0].Deleted)
	req.Equal(uint64(1), f.monitor.Snapshot().MessagesDestroyed)
}

func TestSendMessage_SelfDestructKeepsPosition(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)

	doomed, err := f.service.SendMessage(chat.SendCommand{
		Room:              room.ID,
		Content:           "vanishing",
		SelfDestruct:      true,
		SelfDestructAfter: 10 * time.Second,
	})
	req.NoError(err)
	_, err = f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "after it"})
	req.NoError(err)

	f.scheduler.Advance(10 * time.Second)

	messages := f.service.Messages()
	req.Len(messages, 2)
	req.Equal(doomed.ID, messages[0].ID)
	req.Equal(domain.Tombstone, messages[0].Content)
	req.Equal("after it", messages[1].Content)
}

func TestLeaveRoom_ActiveRoomClearsView(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)

	_, err := f.service.SendMessage(chat.SendCommand{
		Room:         room.ID,
		Content:      "short lived",
		SelfDestruct: true,
	})
	req.NoError(err)

	req.NoError(f.service.LeaveRoom(room.ID))
	req.Nil(f.service.ActiveRoom())
	req.Empty(f.service.Messages())

	// The pending destruction fires against a cleared timeline as a
	// safe no-op.
	f.scheduler.Advance(domain.DefaultSelfDestructAfter)
	req.Zero(f.monitor.Snapshot().MessagesDestroyed)
}

func TestSendMessage_ModeratedRoomCensors(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	req.NoError(err)
	f.service.WithModerator(&moderator)

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)

	sent, err := f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "a wild badger appears"})
	req.NoError(err)
	req.Equal("a wild ****** appears", sent.Content)
}

func TestSendMessage_AnonymousRoomIsNotCensored(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	req.NoError(err)
	f.service.WithModerator(&moderator)

	room := domain.NewRoom(uuid.New(), "Anonymous Room #1042", domain.Anonymous, nil, time.Now().UTC())
	room.SetParticipants([]string{"alice"})
	f.loadAndSelect(t, room)

	sent, err := f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "a wild badger appears"})
	req.NoError(err)
	req.Equal("a wild badger appears", sent.Content)
}

func TestCreateRoom_PersistsWhenStoreWired(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	roomStore := mocks.NewMockRoomStore(ctrl)
	messageStore := mocks.NewMockMessageStore(ctrl)
	f.service.WithStores(messageStore, roomStore)

	roomStore.EXPECT().StoreRoom(gomock.Any()).Return(nil)

	room, err := f.service.CreateRoom(chat.CreateRoomCommand{Name: "Tech Enthusiasts", Kind: "topic"})
	req.NoError(err)
	req.Equal([]string{"alice"}, room.Participants())
	req.Equal(uint64(1), f.monitor.Snapshot().RoomsCreated)
}

func TestJoinRoom_PersistsMembership(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	roomStore := mocks.NewMockRoomStore(ctrl)
	f.service.WithStores(nil, roomStore)

	room := groupRoom("General Chat", "bob")
	f.source.EXPECT().FetchRooms(gomock.Any()).Return([]*domain.Room{room}, nil)
	req.NoError(f.service.LoadRooms(context.Background()))

	roomStore.EXPECT().StoreRoom(room).Return(nil)
	req.NoError(f.service.JoinRoom(room.ID))
	req.True(room.HasParticipant("alice"))
}

func TestReset_ClearsEverything(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.signIn("alice")

	room := groupRoom("General Chat", "alice")
	f.loadAndSelect(t, room)
	_, err := f.service.SendMessage(chat.SendCommand{Room: room.ID, Content: "hello"})
	req.NoError(err)

	f.service.Reset()
	req.Empty(f.service.Rooms())
	req.Nil(f.service.ActiveRoom())
	req.Empty(f.service.Messages())
	req.False(f.service.IsLoading())
}
