package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-shell/auth"
	"chat-shell/domain"
	"chat-shell/internal"
	"chat-shell/moderation"
	"chat-shell/observability"
	"chat-shell/repositories"
	"chat-shell/runtime"
	"chat-shell/runtime/workers"
	"chat-shell/search"
	"chat-shell/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, drives the interactive shell, and
// centralizes error reporting so every defer (database close, scheduler
// stop) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := search.OpenIndex(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		_ = index.Close()
	}()

	// 3. Session core
	session := auth.NewSession()
	monitor := observability.NewMonitor(log)
	scheduler := runtime.NewTimerScheduler(log)
	defer scheduler.Stop()

	users := repositories.NewUserRepository(db)
	roomRepo := repositories.NewRoomRepository(db, log)
	messageRepo := repositories.NewMessageRepository(db, log, config.LimitMessages)
	source := repositories.NewSource(roomRepo, messageRepo, config.FetchLatency, log)

	chatService := services.NewChatService(session, source, scheduler, monitor, log).
		WithStores(messageRepo, roomRepo).
		WithIndex(index)

	if words := internal.CensoredWordList(config.CensoredWords); len(words) > 0 {
		replacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		moderator, err := moderation.NewModerator(words, replacement)
		if err != nil {
			return fmt.Errorf("moderator setup failed: %w", err)
		}
		chatService.WithModerator(&moderator)
	}

	// Sign-out drops rooms, selection and timeline.
	session.OnChange(func(user *domain.UserIdentity) {
		if user == nil {
			chatService.Reset()
		}
	})

	authService := services.NewAuthService(users, config.AuthTokenDuration)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(workers.NewHeartbeatWorker(log, monitor, config.HeartbeatInterval))
	go supervisor.Run(ctx)
	defer supervisor.Stop()

	// 6. Interactive shell until quit, EOF or signal
	shell := newShell(chatService, authService, session, index, monitor, config.PreferredLanguage, log)
	return shell.loop(ctx)
}
