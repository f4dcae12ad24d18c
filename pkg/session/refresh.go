package session

import (
	"context"

	"github.com/aretw0/websession/pkg/domain"
)

// RefreshOption configures a single Refresh call.
type RefreshOption func(*refreshRequest)

// WithAuthentication attaches an opaque authentication context to the refresh.
// A refresh carrying one always emits a change event.
func WithAuthentication(authentication any) RefreshOption {
	return func(r *refreshRequest) {
		r.authentication = authentication
	}
}

// refreshRequest is the state threaded through one run of the refresh protocol.
type refreshRequest struct {
	authentication any

	// ended tags the change event and forces it even when the data is unchanged.
	ended bool

	// recovering marks a refresh issued by End. A listener error during it is
	// returned as is instead of ending the session again.
	recovering bool
}

func (r refreshRequest) forced() bool {
	return r.ended || r.authentication != nil
}

// Refresh fetches the current snapshot and emits a change event if it differs
// from the cached one (or if an authentication context was given).
//
// If a change listener fails, the session is ended before the listener's error
// is returned. After any error callers must re-read Data.
func (s *Session) Refresh(ctx context.Context, opts ...RefreshOption) error {
	var req refreshRequest
	for _, opt := range opts {
		opt(&req)
	}
	return s.refresh(ctx, req)
}

// End terminates the remote session and refreshes. It always emits exactly one
// change event with Ended set, even when the resulting snapshot is unchanged.
func (s *Session) End(ctx context.Context) error {
	if err := s.service.Logout(ctx); err != nil {
		return err
	}
	return s.refresh(ctx, refreshRequest{ended: true, recovering: true})
}

func (s *Session) refresh(ctx context.Context, req refreshRequest) error {
	s.mu.Lock()
	oldData := s.data
	s.mu.Unlock()

	newData, err := s.service.Get(ctx)
	if err != nil {
		return err
	}
	if newData == nil {
		newData = domain.Snapshot{}
	}

	if req.forced() || !oldData.Equal(newData) {
		s.mu.Lock()
		s.data = newData
		s.mu.Unlock()

		event := &domain.ChangeEvent{
			Authentication: req.authentication,
			Ended:          req.ended,
			OldData:        oldData,
			NewData:        newData,
		}
		if s.hooks.OnChange != nil {
			s.hooks.OnChange(ctx, event)
		}

		if err := s.listeners.emit(ctx, event); err != nil {
			// The pending expiry belongs to the replaced snapshot, and a rejected
			// snapshot is not tracked.
			s.stopExpiry()
			if req.recovering {
				return err
			}
			s.recoverFrom(ctx, err)
			return err
		}
	}

	return s.syncExpiry(ctx, newData)
}

// recoverFrom ends the session after a change listener failed.
// Its own failure is logged; the caller reports the listener error.
func (s *Session) recoverFrom(ctx context.Context, cause error) {
	s.logger.Warn("change listener failed, ending session", "err", cause)
	if s.hooks.OnRecover != nil {
		s.hooks.OnRecover(ctx, cause)
	}

	if err := s.End(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("failed to end session after listener error", "err", err, "cause", cause)
	}
}
