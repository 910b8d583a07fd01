// Package domain contains core concepts of the chat shell.
// This file defines Message and its terminal destruction rule.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tombstone replaces the body of a destroyed message. The original content
// is discarded and cannot be recovered.
const Tombstone = "This message has self-destructed"

// DefaultSelfDestructAfter applies when a self-destructing send names no delay.
const DefaultSelfDestructAfter = 60 * time.Second

// Message is a chat event. Every field except Content, Translated and
// Deleted is immutable after creation. Encrypted is a display annotation
// only; the shell performs no cryptography on bodies.
type Message struct {
	ID                uuid.UUID
	SenderID          string
	Content           string
	SentAt            time.Time
	Encrypted         bool
	SelfDestruct      bool
	SelfDestructAfter time.Duration
	Translated        bool
	Deleted           bool
}

// Destroy applies the terminal transition: Deleted flips to true exactly
// once and Content becomes the tombstone. Safe against duplicate timer
// firings; reports whether this call performed the transition.
func (m *Message) Destroy() bool {
	if m.Deleted {
		return false
	}
	m.Deleted = true
	m.Content = Tombstone
	return true
}
