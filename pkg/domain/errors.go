package domain

import "errors"

// ErrTransport marks failures talking to the remote session endpoint (network or non-2xx status).
var ErrTransport = errors.New("session transport failed")

// ErrUnknownEventType is returned when a listener is registered for an event outside the closed set.
var ErrUnknownEventType = errors.New("unknown session event type")

// ErrInvalidHandler is returned when a nil listener is registered.
var ErrInvalidHandler = errors.New("session event handler must not be nil")

// ErrMissingAccountID is returned when an authenticated snapshot carries no account id.
var ErrMissingAccountID = errors.New("authenticated session has no account id")

// ErrSingletonExists is returned on a second construction of the session singleton.
var ErrSingletonExists = errors.New("session singleton already created")

// ErrListenerPanic wraps a panic recovered from an event listener.
var ErrListenerPanic = errors.New("session event listener panicked")

// ErrDuplicate is returned by object stores when the id is already taken.
var ErrDuplicate = errors.New("duplicate entry")

// ErrNotFound is returned by object stores when the id does not exist.
var ErrNotFound = errors.New("entry not found")
