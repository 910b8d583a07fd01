package auth

import (
	"sync"

	"chat-shell/domain"
)

// Session owns the signed-in identity for one shell instance. The chat
// engines read Current on every mutating operation and never write it.
// Observers registered with OnChange run after every Begin/End; the chat
// service uses this to reset its state on sign-out.
type Session struct {
	mu        sync.RWMutex
	current   *domain.UserIdentity
	token     string
	observers []func(*domain.UserIdentity)
}

func NewSession() *Session {
	return &Session{}
}

// Begin installs the signed-in identity and its session token.
func (s *Session) Begin(user domain.UserIdentity, token string) {
	s.mu.Lock()
	s.current = &user
	s.token = token
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(&user)
	}
}

// End clears the identity. Pending self-destruct timers are unaffected;
// they resolve as safe no-ops against whatever timeline remains.
func (s *Session) End() {
	s.mu.Lock()
	s.current = nil
	s.token = ""
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(nil)
	}
}

// Current returns the signed-in identity, or nil when signed out.
func (s *Session) Current() *domain.UserIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// OnChange registers an observer called with the new identity (nil on
// sign-out). Not safe to call concurrently with Begin/End.
func (s *Session) OnChange(fn func(*domain.UserIdentity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}
