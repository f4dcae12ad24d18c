package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/websession/internal/logging"
	"github.com/aretw0/websession/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the keys and the notification channel.
const DefaultPrefix = "websession:"

// setIfChanged stores ARGV[1] under KEYS[1] and returns 1, or returns 0 when
// the stored value is already identical.
var setIfChanged = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return 0
	end
	redis.call("set", KEYS[1], ARGV[1])
	return 1
`)

// envelope is the message fanned out to every subscriber.
type envelope struct {
	Origin string `json:"origin"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// Channel implements ports.Channel on Redis. Values live in plain keys and
// every effective write is fanned out with PUBLISH, so clients in separate
// processes share expiry updates. Each Channel is one client; it never
// receives its own writes.
type Channel struct {
	client *backend.Client
	prefix string
	origin string
	logger *slog.Logger
	owned  bool
}

// Option configures the Channel.
type Option func(*Channel)

// WithLogger configures a logger for the Channel.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// NewChannel attaches a new client to the storage behind client.
func NewChannel(client *backend.Client, prefix string, opts ...Option) *Channel {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	c := &Channel{
		client: client,
		prefix: prefix,
		origin: uuid.NewString(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromURL connects to the Redis server at url (redis://...) and attaches a client.
func NewFromURL(url, prefix string, opts ...Option) (*Channel, error) {
	options, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	c := NewChannel(backend.NewClient(options), prefix, opts...)
	c.owned = true
	return c, nil
}

// Close releases the client opened by NewFromURL. A client passed to
// NewChannel belongs to the caller and is left open.
func (c *Channel) Close() error {
	if !c.owned {
		return nil
	}
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}

func (c *Channel) topic() string {
	return c.prefix + "events"
}

// Publish stores value under key and notifies the other clients if it changed.
func (c *Channel) Publish(ctx context.Context, key, value string) error {
	changed, err := setIfChanged.Run(ctx, c.client, []string{c.prefix + key}, value).Int()
	if err != nil {
		return fmt.Errorf("redis error storing %s: %w", key, err)
	}
	if changed == 0 {
		return nil
	}

	payload, err := json.Marshal(envelope{Origin: c.origin, Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if err := c.client.Publish(ctx, c.topic(), payload).Err(); err != nil {
		return fmt.Errorf("redis error publishing %s: %w", key, err)
	}
	return nil
}

// Value returns the stored value of key.
func (c *Channel) Value(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, backend.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis error reading %s: %w", key, err)
	}
	return v, true, nil
}

// Subscribe registers fn for writes made by other clients. It returns once the
// subscription is confirmed by the server; fn runs on a dedicated goroutine.
func (c *Channel) Subscribe(ctx context.Context, fn func(ports.Notification)) (ports.UnsubscribeFunc, error) {
	pubsub := c.client.Subscribe(ctx, c.topic())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis error subscribing: %w", err)
	}

	messages := pubsub.Channel()
	go func() {
		for msg := range messages {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				c.logger.Debug("ignoring malformed notification", "err", err)
				continue
			}
			if env.Origin == c.origin {
				continue
			}
			fn(ports.Notification{Key: env.Key, NewValue: env.Value})
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				c.logger.Debug("failed to close subscription", "err", err)
			}
		})
	}
	stop := context.AfterFunc(ctx, unsubscribe)

	return func() {
		stop()
		unsubscribe()
	}, nil
}
