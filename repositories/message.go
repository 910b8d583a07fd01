//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-shell/domain"
)

type IMessageRepository interface {
	StoreMessage(roomID uuid.UUID, message domain.Message) error
	MarkDestroyed(roomID uuid.UUID, message domain.Message) error
	GetMessages(roomID uuid.UUID) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the stored shape of a message.
type diskMessage struct {
	ID                uuid.UUID     `json:"id"`
	SenderID          string        `json:"sender_id"`
	Content           string        `json:"content"`
	SentAt            int64         `json:"sent_at"` // unix nanoseconds
	Encrypted         bool          `json:"encrypted"`
	SelfDestruct      bool          `json:"self_destruct"`
	SelfDestructAfter time.Duration `json:"self_destruct_after,omitempty"`
	Translated        bool          `json:"translated"`
	Deleted           bool          `json:"deleted"`
}

// messageKey formats "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector if
//     two messages land on the same nanosecond.
func messageKey(roomID uuid.UUID, message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		roomID,
		message.SentAt.UnixNano(),
		message.ID,
	))
}

// StoreMessage persists a message in BadgerDB under its chronological key.
func (m MessageRepository) StoreMessage(roomID uuid.UUID, message domain.Message) error {
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(roomID, message), bytes)
	})
}

// MarkDestroyed rewrites the stored record with the tombstone content so a
// later fetch of the room cannot resurrect the original body. The key is
// unchanged (same sent-at, same id), so ordering is preserved.
func (m MessageRepository) MarkDestroyed(roomID uuid.UUID, message domain.Message) error {
	destroyed := message
	destroyed.Deleted = true
	destroyed.Content = domain.Tombstone
	return m.StoreMessage(roomID, destroyed)
}

// GetMessages retrieves a room's messages with a prefix scan. Thanks to
// the padded timestamp in the key, messages come back naturally sorted by
// send time. Collection stops at the configured limit when one is set.
func (m MessageRepository) GetMessages(roomID uuid.UUID) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(raw) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
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

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var dm diskMessage
		if err = json.Unmarshal(b, &dm); err != nil {
			return nil, err
		}
		messages = append(messages, toMessage(dm))
	}
	return messages, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:                message.ID,
		SenderID:          message.SenderID,
		Content:           message.Content,
		SentAt:            message.SentAt.UnixNano(),
		Encrypted:         message.Encrypted,
		SelfDestruct:      message.SelfDestruct,
		SelfDestructAfter: message.SelfDestructAfter,
		Translated:        message.Translated,
		Deleted:           message.Deleted,
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:                dm.ID,
		SenderID:          dm.SenderID,
		Content:           dm.Content,
		SentAt:            time.Unix(0, dm.SentAt).UTC(),
		Encrypted:         dm.Encrypted,
		SelfDestruct:      dm.SelfDestruct,
		SelfDestructAfter: dm.SelfDestructAfter,
		Translated:        dm.Translated,
		Deleted:           dm.Deleted,
	}
}
