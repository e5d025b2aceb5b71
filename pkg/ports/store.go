package ports

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by a SessionStore when no session has the id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps live sessions by id.
type SessionStore[T any] interface {
	// Save stores the session under sessionID, replacing any previous one.
	Save(ctx context.Context, sessionID string, session T) error

	// Load retrieves the session for sessionID.
	// Returns ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (T, error)

	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
