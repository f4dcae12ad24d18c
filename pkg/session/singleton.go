package session

import (
	"sync"

	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/ports"
)

// Singleton is a slot holding at most one Session for the process.
// The zero value is ready to use.
type Singleton struct {
	mu      sync.Mutex
	session *Session
}

// Create constructs the Session of the slot. A second call fails with
// domain.ErrSingletonExists until ResetForTesting is called.
func (s *Singleton) Create(service ports.SessionService, opts ...Option) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return nil, domain.ErrSingletonExists
	}

	session, err := New(service, opts...)
	if err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

// Current returns the Session of the slot, or nil if none was created.
func (s *Singleton) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// ResetForTesting closes and clears the slot.
func (s *Singleton) ResetForTesting() {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.mu.Unlock()

	if session != nil {
		_ = session.Close()
	}
}
