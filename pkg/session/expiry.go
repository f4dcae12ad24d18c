package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/websession/internal/clock"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/ports"
)

// StorageKeyPrefix prefixes the shared storage key of every account.
const StorageKeyPrefix = "session-"

// StorageKey derives the shared storage key for an authenticated snapshot.
// It fails with domain.ErrMissingAccountID when the snapshot has no account id.
func StorageKey(data domain.Snapshot) (string, error) {
	id, ok := data.AccountID()
	if !ok {
		return "", domain.ErrMissingAccountID
	}
	return StorageKeyPrefix + id, nil
}

// expiryRecord is the value broadcast to other clients.
// UpdateNonce makes every write distinct even when TTL is unchanged,
// since identical writes produce no notification.
type expiryRecord struct {
	TTL         int64 `json:"ttl"`
	UpdateNonce int64 `json:"updateNonce"`
}

// expiryTimer is the single pending expiry of a session. Guarded by Session.mu.
type expiryTimer struct {
	timer      *clock.Timer
	generation uint64
}

// stop cancels the pending timer. A callback that has not yet reached its
// generation check sees the newer generation and does nothing; one already
// past it may still deliver its expire event.
func (t *expiryTimer) stop() {
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// syncExpiry publishes and arms the expiry of an authenticated snapshot with a ttl.
// Any other snapshot cancels the pending expiry, which belongs to an older one.
func (s *Session) syncExpiry(ctx context.Context, data domain.Snapshot) error {
	if !data.IsAuthenticated() {
		s.stopExpiry()
		return nil
	}

	ttl, ok := data.TTL()
	if !ok || ttl <= 0 {
		s.stopExpiry()
		return nil
	}

	key, err := StorageKey(data)
	if err != nil {
		s.stopExpiry()
		return err
	}

	if s.channel != nil {
		value, err := json.Marshal(expiryRecord{
			TTL:         ttl.Milliseconds(),
			UpdateNonce: s.nextNonce(),
		})
		if err != nil {
			return fmt.Errorf("failed to encode session expiry: %w", err)
		}
		// The writer never sees its own notification, so the local timer is armed below.
		if err := s.channel.Publish(ctx, key, string(value)); err != nil {
			return fmt.Errorf("failed to publish session expiry: %w", err)
		}
	}

	s.arm(key, ttl, data)
	return nil
}

func (s *Session) stopExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiry.stop()
}

// nextNonce returns the current time in milliseconds, bumped if needed so that
// consecutive writes of this session never repeat a nonce.
func (s *Session) nextNonce() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	nonce := s.clock.Now().UnixMilli()
	if nonce <= s.lastNonce {
		nonce = s.lastNonce + 1
	}
	s.lastNonce = nonce
	return nonce
}

// arm replaces any pending expiry with a new one firing after ttl.
// A closed session is never armed again.
func (s *Session) arm(key string, ttl time.Duration, data domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.expiry.stop()
	generation := s.expiry.generation
	s.expiry.timer = s.clock.AfterFunc(ttl, func() {
		s.expire(generation, &domain.ExpireEvent{Key: key, TTL: ttl, Data: data})
	})
	s.logger.Debug("session expiry armed", "session_key", key, "ttl", ttl)
}

func (s *Session) expire(generation uint64, event *domain.ExpireEvent) {
	s.mu.Lock()
	if generation != s.expiry.generation {
		s.mu.Unlock()
		return
	}
	s.expiry.timer = nil
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info("session expired", "session_key", event.Key)
	if s.hooks.OnExpire != nil {
		s.hooks.OnExpire(ctx, event)
	}
	if !s.currentGeneration(generation) {
		s.logger.Debug("expire superseded before delivery", "session_key", event.Key)
		return
	}
	if err := s.listeners.emit(ctx, event); err != nil {
		s.logger.Error("expire listener failed", "session_key", event.Key, "err", err)
	}
}

func (s *Session) currentGeneration(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation == s.expiry.generation
}

// onNotification re-arms the local timer when another client refreshed the same account.
func (s *Session) onNotification(n ports.Notification) {
	data := s.Data()
	if !data.IsAuthenticated() {
		return
	}

	key, err := StorageKey(data)
	if err != nil || key != n.Key {
		s.logger.Debug("ignoring session notification", "session_key", n.Key)
		return
	}

	var record expiryRecord
	if err := json.Unmarshal([]byte(n.NewValue), &record); err != nil {
		s.logger.Debug("ignoring malformed session notification", "session_key", n.Key, "err", err)
		return
	}
	if record.TTL <= 0 {
		return
	}

	s.arm(key, time.Duration(record.TTL)*time.Millisecond, data)
}

// ExpiryPending reports whether an expiry timer is armed.
func (s *Session) ExpiryPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiry.timer != nil
}
