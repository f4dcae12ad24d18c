package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/websession/internal/clock"
	"github.com/aretw0/websession/internal/logging"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "websession"

// Server is a reference session endpoint: it tracks server-side sessions keyed
// by an opaque cookie and serves their snapshots. A session idle for longer
// than the ttl is dropped; every GET of a live session renews it.
type Server struct {
	ttl        time.Duration
	cookieName string
	clock      clock.Clock
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*record
}

type record struct {
	accountID string
	lastSeen  time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithTTL sets the idle lifetime of a session. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.ttl = ttl
	}
}

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) Option {
	return func(s *Server) {
		s.cookieName = name
	}
}

// WithClock replaces the clock used for idle expiry.
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		s.clock = c
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an endpoint with no sessions.
func NewServer(opts ...Option) *Server {
	s := &Server{
		cookieName: DefaultCookieName,
		clock:      clock.Real(),
		logger:     logging.NewNop(),
		sessions:   make(map[string]*record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler serving a fresh Server.
func NewHandler(opts ...Option) http.Handler {
	return NewServer(opts...).Handler()
}

// Handler returns the routes of the endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/login", s.Login)
	})
	return r
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSession handles the GET /session request. Unknown or expired sessions
// are served as the anonymous snapshot.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	token := s.token(r)

	s.mu.Lock()
	rec := s.lookup(token)
	if rec != nil {
		rec.lastSeen = s.clock.Now()
	}
	snapshot := s.snapshot(rec)
	s.mu.Unlock()

	writeJSON(w, s.logger, http.StatusOK, snapshot)
}

// DeleteSession handles the DELETE /session request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if token := s.token(r); token != "" {
		s.mu.Lock()
		if rec, ok := s.sessions[token]; ok {
			s.logger.Info("session ended", "account_id", rec.accountID)
			delete(s.sessions, token)
		}
		s.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// LoginRequest is the body of POST /session/login.
type LoginRequest struct {
	AccountID string `json:"accountId"`
}

// Login handles the POST /session/login request. It opens a session for the
// given account without checking any credential.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Login: Invalid request body", "err", err)
		return
	}
	accountID := strings.TrimSpace(body.AccountID)
	if accountID == "" {
		http.Error(w, "accountId is required", http.StatusBadRequest)
		return
	}

	token := uuid.NewString()
	rec := &record{accountID: accountID, lastSeen: s.clock.Now()}

	s.mu.Lock()
	s.sessions[token] = rec
	snapshot := s.snapshot(rec)
	s.mu.Unlock()

	s.logger.Info("session started", "account_id", accountID)
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, s.logger, http.StatusOK, snapshot)
}

// Len returns the number of live sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.sessions {
		s.lookup(token)
	}
	return len(s.sessions)
}

func (s *Server) token(r *http.Request) string {
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// lookup returns the live session of token, dropping it if expired. Caller holds s.mu.
func (s *Server) lookup(token string) *record {
	if token == "" {
		return nil
	}
	rec, ok := s.sessions[token]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.clock.Now().Sub(rec.lastSeen) >= s.ttl {
		s.logger.Info("session expired", "account_id", rec.accountID)
		delete(s.sessions, token)
		return nil
	}
	return rec
}

// snapshot renders rec as the wire snapshot. Caller holds s.mu.
func (s *Server) snapshot(rec *record) domain.Snapshot {
	if rec == nil {
		return domain.Snapshot{}
	}
	snapshot := domain.Snapshot{
		domain.KeyAccount: map[string]any{domain.KeyAccountID: rec.accountID},
	}
	if s.ttl > 0 {
		snapshot[domain.KeyTTL] = s.ttl.Milliseconds()
	}
	return snapshot
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
