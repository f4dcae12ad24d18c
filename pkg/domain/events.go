package domain

import (
	"context"
	"time"
)

// EventType defines the category of a session event.
type EventType string

const (
	EventChange EventType = "change"
	EventExpire EventType = "expire"
)

// EventTypes lists the closed set of events a session can emit.
var EventTypes = []EventType{EventChange, EventExpire}

// Valid reports whether t belongs to the closed event set.
func (t EventType) Valid() bool {
	switch t {
	case EventChange, EventExpire:
		return true
	}
	return false
}

// Event is implemented by every payload delivered to session listeners.
type Event interface {
	Type() EventType
}

// ChangeEvent is emitted when the cached snapshot is replaced.
type ChangeEvent struct {
	// Authentication is the opaque context passed to Refresh, if any.
	Authentication any `json:"authentication,omitempty"`

	// Ended is true when the change was caused by an explicit End.
	Ended bool `json:"ended"`

	OldData Snapshot `json:"old_data"`
	NewData Snapshot `json:"new_data"`
}

// Type implements Event.
func (e *ChangeEvent) Type() EventType { return EventChange }

// ExpireEvent is emitted when a local expiry timer fires.
type ExpireEvent struct {
	// Key is the shared storage key the timer was armed for.
	Key string `json:"key"`

	// TTL is the duration the timer was armed with.
	TTL time.Duration `json:"ttl"`

	// Data is the snapshot that was current when the timer was armed.
	Data Snapshot `json:"data"`
}

// Type implements Event.
func (e *ExpireEvent) Type() EventType { return EventExpire }

// FetchEvent describes one network round trip to the session endpoint.
type FetchEvent struct {
	Method   string
	Duration time.Duration
	Err      error
}

// LifecycleHooks defines callbacks for session observability.
// Hooks run synchronously and must not block; nil fields are skipped.
type LifecycleHooks struct {
	OnFetch   func(context.Context, *FetchEvent)
	OnChange  func(context.Context, *ChangeEvent)
	OnExpire  func(context.Context, *ExpireEvent)
	OnRecover func(context.Context, error)
}
