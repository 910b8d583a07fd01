// Command gen_test_data seeds the badger store with demo rooms and a few
// welcome messages so the shell has something to show on first login.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-shell/domain"
	"chat-shell/internal"
	"chat-shell/repositories"
)

func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	rooms := repositories.NewRoomRepository(db, logger)
	messages := repositories.NewMessageRepository(db, logger, nil)

	now := time.Now().UTC()

	general := domain.NewRoom(uuid.New(), "General Chat", domain.Group,
		[]string{"general", "public"}, now)
	general.Description = "Public chat room for everyone"
	general.SetParticipants([]string{"1", "2", "3"})

	tech := domain.NewRoom(uuid.New(), "Tech Enthusiasts", domain.Topic,
		[]string{"tech", "programming", "gadgets"}, now)
	tech.Description = "Chat about tech, programming, and gadgets"
	tech.SetParticipants([]string{"1", "4", "5"})

	anon := domain.NewRoom(uuid.New(), "Anonymous Room #1042", domain.Anonymous,
		[]string{"anonymous", "private"}, now)
	anon.Description = "Anonymous discussion room"

	for _, room := range []*domain.Room{general, tech, anon} {
		if err := rooms.StoreRoom(room); err != nil {
			log.Fatalf("Failed to store room %q: %v", room.Name, err)
		}
		fmt.Printf("Room seeded: %s (%s)\n", room.Name, room.ID)
	}

	welcome := []domain.Message{
		{
			ID:        uuid.New(),
			SenderID:  "2",
			Content:   "Hello everyone! Welcome to the chat!",
			SentAt:    now.Add(-2 * time.Hour),
			Encrypted: true,
		},
		{
			ID:        uuid.New(),
			SenderID:  "3",
			Content:   "Thanks for having us, excited to be here!",
			SentAt:    now.Add(-1 * time.Hour),
			Encrypted: true,
		},
		{
			ID:        uuid.New(),
			SenderID:  "1",
			Content:   "Let me know if you have any questions about the platform",
			SentAt:    now.Add(-30 * time.Minute),
			Encrypted: true,
		},
	}
	for _, message := range welcome {
		if err := messages.StoreMessage(general.ID, message); err != nil {
			log.Fatalf("Failed to store message: %v", err)
		}
	}

	fmt.Printf("Seeded %d messages into %q\n", len(welcome), general.Name)
}
