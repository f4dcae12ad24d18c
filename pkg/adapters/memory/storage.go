package memory

import (
	"context"
	"sync"

	"github.com/aretw0/websession/pkg/ports"
	"github.com/google/uuid"
)

// Storage is an in-process key/value store shared by several clients, each
// attached through its own Channel. It behaves like browser local storage:
// a write notifies every other attached client, never the writer, and a
// write of the stored value notifies nobody.
// Safe for concurrent use.
type Storage struct {
	mu          sync.RWMutex
	values      map[string]string
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	origin string
	fn     func(ports.Notification)
}

// NewStorage creates an empty shared storage.
func NewStorage() *Storage {
	return &Storage{
		values:      make(map[string]string),
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Channel attaches a new client to the storage.
func (s *Storage) Channel() *Channel {
	return &Channel{storage: s, origin: uuid.NewString()}
}

// Value returns the stored value of key.
func (s *Storage) Value(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Storage) set(origin, key, value string) {
	s.mu.Lock()
	if old, ok := s.values[key]; ok && old == value {
		s.mu.Unlock()
		return
	}
	s.values[key] = value

	targets := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		if sub.origin != origin {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	n := ports.Notification{Key: key, NewValue: value}
	for _, sub := range targets {
		sub.fn(n)
	}
}

func (s *Storage) subscribe(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub] = struct{}{}
}

func (s *Storage) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
}

var _ ports.Channel = (*Channel)(nil)

// Channel implements ports.Channel for one client of a Storage.
// Notifications are delivered synchronously from the writer's Publish call.
type Channel struct {
	storage *Storage
	origin  string
}

// Publish stores value under key.
func (c *Channel) Publish(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.storage.set(c.origin, key, value)
	return nil
}

// Subscribe registers fn for writes made by other clients.
func (c *Channel) Subscribe(ctx context.Context, fn func(ports.Notification)) (ports.UnsubscribeFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &subscriber{origin: c.origin, fn: fn}
	c.storage.subscribe(sub)

	stop := context.AfterFunc(ctx, func() { c.storage.unsubscribe(sub) })
	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			c.storage.unsubscribe(sub)
		})
	}, nil
}
