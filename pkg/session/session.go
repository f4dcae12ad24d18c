package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/websession/internal/clock"
	"github.com/aretw0/websession/internal/logging"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/ports"
)

// Session holds the current snapshot of a remote session.
// It is safe for concurrent use; refreshes are not serialized against each other.
type Session struct {
	service ports.SessionService
	channel ports.Channel
	clock   clock.Clock
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	listeners *registry

	mu          sync.Mutex
	data        domain.Snapshot
	expiry      expiryTimer
	lastNonce   int64
	unsubscribe ports.UnsubscribeFunc
	closed      bool
}

// Option configures the Session.
type Option func(*Session)

// WithChannel enables cross-client expiry synchronization over channel.
func WithChannel(channel ports.Channel) Option {
	return func(s *Session) {
		s.channel = channel
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// withClock replaces the clock driving expiry timers (tests only).
func withClock(c clock.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// New creates a Session backed by service. The initial snapshot is empty;
// call Refresh to load the current one.
func New(service ports.SessionService, opts ...Option) (*Session, error) {
	s := &Session{
		service:   service,
		clock:     clock.Real(),
		logger:    logging.NewNop(), // Default to no-op
		listeners: newRegistry(),
		data:      domain.Snapshot{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.channel != nil {
		unsubscribe, err := s.channel.Subscribe(context.Background(), s.onNotification)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe to session channel: %w", err)
		}
		s.unsubscribe = unsubscribe
	}

	return s, nil
}

// Data returns the snapshot produced by the most recently completed Refresh or End.
// The returned map is shared; callers must not modify it.
func (s *Session) Data() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Service returns the underlying session service.
func (s *Session) Service() ports.SessionService {
	return s.service
}

// Close detaches the session from its channel and stops any pending expiry timer.
// The snapshot stays readable and Refresh keeps working, without arming expiry timers.
func (s *Session) Close() error {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.closed = true
	s.expiry.stop()
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	return nil
}
