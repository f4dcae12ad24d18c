package service

import (
	"fmt"

	"github.com/aretw0/websession/pkg/domain"
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap lets callers match any endpoint failure with domain.ErrTransport.
func (e *StatusError) Unwrap() error {
	return domain.ErrTransport
}
