package ports

import (
	"context"
	"net/http"

	"github.com/aretw0/websession/pkg/domain"
)

// SessionService is the remote view of the session.
type SessionService interface {
	// Get returns the current session snapshot.
	// Concurrent callers share a single in-flight request.
	Get(ctx context.Context) (domain.Snapshot, error)

	// Logout terminates the server-side session.
	Logout(ctx context.Context) error
}

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}
