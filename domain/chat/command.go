// Package chat holds the intent payloads the presentation layer sends
// into the session core.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// SendCommand carries a message send intent. A zero SelfDestructAfter on a
// self-destructing send falls back to the core default delay.
type SendCommand struct {
	Room              uuid.UUID
	Content           string `validate:"required"`
	SelfDestruct      bool
	SelfDestructAfter time.Duration
}

// CreateRoomCommand carries a room creation intent. Name is validated
// after trimming surrounding whitespace.
type CreateRoomCommand struct {
	Name string `validate:"required"`
	Kind string `validate:"required,oneof=direct group anonymous topic"`
	Tags []string
}
