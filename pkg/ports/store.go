package ports

import (
	"context"

	"github.com/steltz/stepper/pkg/domain"
)

// SessionStore holds the live state of hosted sessions.
type SessionStore interface {
	// Save stores the state for a given session ID.
	Save(ctx context.Context, sessionID string, state domain.FormState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (domain.FormState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all live sessions.
	List(ctx context.Context) ([]string, error)
}
