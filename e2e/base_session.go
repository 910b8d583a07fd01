package e2e

import (
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/suite"

	"chat-shell/auth"
	"chat-shell/domain"
	"chat-shell/moderation"
	"chat-shell/observability"
	"chat-shell/repositories"
	"chat-shell/runtime"
	"chat-shell/search"
	"chat-shell/services"
)

// BaseSessionSuite assembles a complete in-process shell: badger-backed
// repositories, the search index, the session core and both services,
// with a manual scheduler so self-destruct timing is deterministic.
type BaseSessionSuite struct {
	suite.Suite
	Config Config

	db    *badger.DB
	index *search.Index

	Session   *auth.Session
	Scheduler *runtime.ManualScheduler
	Monitor   *observability.Monitor
	Chat      services.IChatService
	Auth      services.IAuthService
}

func (s *BaseSessionSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg

	badgerDir := cfg.BadgerDir
	if badgerDir == "" {
		badgerDir = s.T().TempDir()
	}
	blugeDir := cfg.BlugeDir
	if blugeDir == "" {
		blugeDir = s.T().TempDir()
	}

	log := slog.Default()

	s.db, err = badger.Open(badger.DefaultOptions(badgerDir).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	s.index, err = search.OpenIndex(blugeDir, log)
	s.Require().NoError(err)

	s.Session = auth.NewSession()
	s.Scheduler = runtime.NewManualScheduler()
	s.Monitor = observability.NewMonitor(log)

	messages := repositories.NewMessageRepository(s.db, log, nil)
	rooms := repositories.NewRoomRepository(s.db, log)
	users := repositories.NewUserRepository(s.db)
	source := repositories.NewSource(rooms, messages, cfg.FetchLatency, log)

	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	s.Require().NoError(err)

	chat := services.NewChatService(s.Session, source, s.Scheduler, s.Monitor, log).
		WithStores(messages, rooms).
		WithModerator(&moderator).
		WithIndex(s.index)
	s.Chat = chat

	// Mirror the shell wiring: signing out resets the session core.
	s.Session.OnChange(func(user *domain.UserIdentity) {
		if user == nil {
			chat.Reset()
		}
	})

	s.Auth = services.NewAuthService(users, cfg.TokenDuration)
}

func (s *BaseSessionSuite) TearDownSuite() {
	s.Scheduler.Stop()
	if s.index != nil {
		s.Require().NoError(s.index.Close())
	}
	if s.db != nil {
		s.Require().NoError(s.db.Close())
	}
}
