package websession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aretw0/websession/internal/logging"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/ports"
	"github.com/aretw0/websession/pkg/service"
	"github.com/aretw0/websession/pkg/session"
)

// DefaultSessionID is the store id used when none is given.
const DefaultSessionID = "session.default"

// DefaultPath is the session resource path, resolved against the base URL.
const DefaultPath = "/session"

// Store caches sessions by id.
type Store = ports.ObjectStore[*session.Session]

type config struct {
	path    string
	client  ports.Doer
	timeout *time.Duration
	hooks   domain.LifecycleHooks
	channel ports.Channel
	logger  *slog.Logger
}

// Option configures a Session built by this package.
type Option func(*config)

// WithPath overrides DefaultPath. An absolute URL replaces the base URL entirely.
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithClient overrides the HTTP client used to reach the endpoint.
func WithClient(client ports.Doer) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithTimeout bounds every request to the endpoint. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = &timeout
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithChannel enables cross-client expiry synchronization.
func WithChannel(channel ports.Channel) Option {
	return func(c *config) {
		c.channel = channel
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// ResolveURL joins path onto baseURL.
func ResolveURL(baseURL, path string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid session path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// New creates a Session for the endpoint under baseURL. The Session starts
// with the empty snapshot; call Refresh to load the current one.
func New(baseURL string, opts ...Option) (*session.Session, error) {
	cfg := &config{
		path:   DefaultPath,
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(cfg)
	}

	endpoint, err := ResolveURL(baseURL, cfg.path)
	if err != nil {
		return nil, err
	}

	svcOpts := []service.Option{
		service.WithHooks(cfg.hooks),
		service.WithLogger(cfg.logger),
	}
	if cfg.client != nil {
		svcOpts = append(svcOpts, service.WithClient(cfg.client))
	}
	if cfg.timeout != nil {
		svcOpts = append(svcOpts, service.WithTimeout(*cfg.timeout))
	}

	sessOpts := []session.Option{
		session.WithLifecycleHooks(cfg.hooks),
		session.WithLogger(cfg.logger),
	}
	if cfg.channel != nil {
		sessOpts = append(sessOpts, session.WithChannel(cfg.channel))
	}

	return session.New(service.New(endpoint, svcOpts...), sessOpts...)
}

// CreateSession creates a Session and stores it under id (DefaultSessionID if
// empty). It fails with domain.ErrDuplicate if the id is taken.
func CreateSession(ctx context.Context, store Store, id, baseURL string, opts ...Option) (*session.Session, error) {
	if id == "" {
		id = DefaultSessionID
	}

	sess, err := New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	if err := store.Create(ctx, id, sess); err != nil {
		_ = sess.Close()
		return nil, err
	}
	return sess, nil
}

// GetSession returns the Session stored under id as is, without refreshing it.
// If there is none, it creates, stores and refreshes a new one. When another
// caller stores one first, that one is returned instead.
func GetSession(ctx context.Context, store Store, id, baseURL string, opts ...Option) (*session.Session, error) {
	if id == "" {
		id = DefaultSessionID
	}

	sess, err := store.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	sess, err = CreateSession(ctx, store, id, baseURL, opts...)
	if errors.Is(err, domain.ErrDuplicate) {
		return store.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if err := sess.Refresh(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}
