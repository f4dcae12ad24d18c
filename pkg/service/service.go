package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/aretw0/websession/internal/logging"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/ports"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

// getKey is the single coalescing group key: there is only one session per Service.
const getKey = "session"

// Service implements ports.SessionService over HTTP.
type Service struct {
	url     string
	client  ports.Doer
	timeout time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	group singleflight.Group
}

var _ ports.SessionService = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithClient overrides the HTTP client. It must keep the session cookie between calls.
func WithClient(client ports.Doer) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithTimeout bounds every request to the endpoint. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithHooks registers observability hooks (only OnFetch is used).
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service for the session resource at url.
func New(url string, opts ...Option) *Service {
	s := &Service{
		url:     url,
		timeout: 10 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = NewClient()
	}
	return s
}

// NewClient returns a pooled HTTP client with a cookie jar, so the session
// cookie set by the endpoint is sent back on later requests.
func NewClient() *http.Client {
	client := cleanhttp.DefaultPooledClient()
	// cookiejar.New only fails on invalid options.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	client.Jar = jar
	return client
}

// URL returns the session resource URL.
func (s *Service) URL() string {
	return s.url
}

// Get returns the current session snapshot.
// If a fetch is already in flight, the caller waits for it instead of issuing a new one.
// The shared request is not canceled when one waiting caller gives up.
func (s *Service) Get(ctx context.Context) (domain.Snapshot, error) {
	ch := s.group.DoChan(getKey, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("session fetch coalesced", "url", s.url)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.Snapshot), nil
	}
}

// Logout terminates the server-side session.
// It does not interact with an in-flight Get, which may still return pre-logout data.
func (s *Service) Logout(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodDelete)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *Service) fetch(ctx context.Context) (domain.Snapshot, error) {
	resp, err := s.do(ctx, http.MethodGet)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := domain.DecodeSnapshot(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return data, nil
}

// do performs one request and rejects non-2xx answers. The caller owns the body on success.
func (s *Service) do(ctx context.Context, method string) (resp *http.Response, err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer func() {
			// Keep the deadline alive until the body has been consumed.
			if err != nil {
				cancel()
				return
			}
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		}()
	}

	start := time.Now()
	defer func() {
		if s.hooks.OnFetch != nil {
			s.hooks.OnFetch(ctx, &domain.FetchEvent{
				Method:   method,
				Duration: time.Since(start),
				Err:      err,
			})
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err = s.client.Do(req)
	if err != nil {
		s.logger.Debug("session request failed", "method", method, "url", s.url, "err", err)
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, s.url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		s.logger.Debug("session request rejected", "method", method, "url", s.url, "status", resp.StatusCode)
		return nil, &StatusError{Method: method, URL: s.url, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
