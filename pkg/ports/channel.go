package ports

import "context"

// Notification is delivered to subscribers when another client writes a key.
type Notification struct {
	Key      string `json:"key"`
	NewValue string `json:"newValue"`
}

// UnsubscribeFunc detaches a subscription. It is safe to call more than once.
type UnsubscribeFunc func()

// Channel is a shared key/value store whose writes are observable by every
// attached client except the writer.
// Writing a value identical to the stored one produces no notification.
type Channel interface {
	// Publish stores value under key and notifies the other attached clients.
	Publish(ctx context.Context, key, value string) error

	// Subscribe registers fn for notifications caused by other clients' writes.
	// The subscription ends when the returned func is called or ctx is done.
	Subscribe(ctx context.Context, fn func(Notification)) (UnsubscribeFunc, error)
}
