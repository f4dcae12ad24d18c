package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/websession/pkg/domain"
)

// Handler receives session events. Returning an error stops the current emit.
type Handler func(ctx context.Context, event domain.Event) error

// registration is one On call. Its pointer identity is what the remover deletes,
// so the same Handler registered twice yields two independent registrations.
type registration struct {
	handler Handler
}

// registry holds the listeners of each event type in registration order.
type registry struct {
	mu     sync.Mutex
	byType map[domain.EventType][]*registration
}

func newRegistry() *registry {
	r := &registry{byType: make(map[domain.EventType][]*registration)}
	for _, t := range domain.EventTypes {
		r.byType[t] = nil
	}
	return r
}

func (r *registry) add(eventType domain.EventType, handler Handler) (func(), error) {
	if !eventType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEventType, eventType)
	}
	if handler == nil {
		return nil, domain.ErrInvalidHandler
	}

	reg := &registration{handler: handler}
	r.mu.Lock()
	r.byType[eventType] = append(r.byType[eventType], reg)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(eventType, reg) })
	}, nil
}

func (r *registry) remove(eventType domain.EventType, reg *registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[eventType] = slices.DeleteFunc(r.byType[eventType], func(x *registration) bool {
		return x == reg
	})
}

// snapshot returns the registrations of eventType as of now.
func (r *registry) snapshot(eventType domain.EventType) []*registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.byType[eventType])
}

func (r *registry) count(eventType domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byType[eventType])
}

// emit invokes the listeners registered when emit starts, one after another.
// The first error stops the emit and is returned.
func (r *registry) emit(ctx context.Context, event domain.Event) error {
	for _, reg := range r.snapshot(event.Type()) {
		if err := invoke(ctx, reg.handler, event); err != nil {
			return err
		}
	}
	return nil
}

func invoke(ctx context.Context, handler Handler, event domain.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", domain.ErrListenerPanic, rec)
		}
	}()
	return handler(ctx, event)
}

// On registers handler for eventType and returns a func that removes exactly
// this registration. Calling the remover more than once is a no-op.
// It fails with domain.ErrUnknownEventType or domain.ErrInvalidHandler.
func (s *Session) On(eventType domain.EventType, handler Handler) (func(), error) {
	return s.listeners.add(eventType, handler)
}

// OnChange registers a typed change listener.
func (s *Session) OnChange(fn func(ctx context.Context, event *domain.ChangeEvent) error) (func(), error) {
	if fn == nil {
		return nil, domain.ErrInvalidHandler
	}
	return s.On(domain.EventChange, func(ctx context.Context, event domain.Event) error {
		return fn(ctx, event.(*domain.ChangeEvent))
	})
}

// OnExpire registers a typed expire listener.
func (s *Session) OnExpire(fn func(ctx context.Context, event *domain.ExpireEvent) error) (func(), error) {
	if fn == nil {
		return nil, domain.ErrInvalidHandler
	}
	return s.On(domain.EventExpire, func(ctx context.Context, event domain.Event) error {
		return fn(ctx, event.(*domain.ExpireEvent))
	})
}

// ListenerCount returns the number of listeners registered for eventType.
func (s *Session) ListenerCount(eventType domain.EventType) int {
	return s.listeners.count(eventType)
}
