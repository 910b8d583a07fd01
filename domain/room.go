// Package domain contains core concepts of the chat shell.
// This file defines rooms and their membership rules.
// No runtime, storage, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Direct    Kind = "direct"
	Group     Kind = "group"
	Anonymous Kind = "anonymous"
	Topic     Kind = "topic"
)

func (k Kind) Valid() bool {
	switch k {
	case Direct, Group, Anonymous, Topic:
		return true
	}
	return false
}

// Room is a named conversation container. Kind and Moderated are fixed at
// creation; membership changes only through AddParticipant/RemoveParticipant
// so the set can never hold the same identifier twice.
type Room struct {
	ID          uuid.UUID
	Name        string
	Description string
	Kind        Kind
	Tags        []string
	Moderated   bool
	CreatedAt   time.Time

	participants []string
}

// NewRoom derives Moderated from the kind: anonymous rooms are the only
// unmoderated ones.
func NewRoom(id uuid.UUID, name string, kind Kind, tags []string, createdAt time.Time) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		Kind:      kind,
		Tags:      tags,
		Moderated: kind != Anonymous,
		CreatedAt: createdAt,
	}
}

// AddParticipant has idempotent union semantics: joining twice leaves the
// member present exactly once. Reports whether the set actually grew.
func (r *Room) AddParticipant(userID string) bool {
	if r.HasParticipant(userID) {
		return false
	}
	r.participants = append(r.participants, userID)
	return true
}

// RemoveParticipant reports whether the member was present.
func (r *Room) RemoveParticipant(userID string) bool {
	for i, p := range r.participants {
		if p == userID {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) HasParticipant(userID string) bool {
	for _, p := range r.participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Participants returns a copy in join order.
func (r *Room) Participants() []string {
	out := make([]string, len(r.participants))
	copy(out, r.participants)
	return out
}

// SetParticipants replaces the membership set, deduplicating while keeping
// first occurrence order. Used when hydrating rooms from the data source.
func (r *Room) SetParticipants(userIDs []string) {
	r.participants = nil
	for _, id := range userIDs {
		r.AddParticipant(id)
	}
}
