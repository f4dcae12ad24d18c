package ports

import "context"

// ObjectStore caches live objects by id.
// It is used to share one session instance between independent callers.
type ObjectStore[T any] interface {
	// Create stores obj under id.
	// Returns domain.ErrDuplicate if the id already exists.
	Create(ctx context.Context, id string, obj T) error

	// Get retrieves the object stored under id.
	// Returns domain.ErrNotFound if the id does not exist.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes the object stored under id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
