package providers

import (
	"context"

	"github.com/bookbridge/librental/internal/domain/entities"
)

// SessionStore persists hydrated sessions between requests. Load and save
// are explicit operations against this boundary; the session object itself
// is owned by the request that loaded it.
type SessionStore interface {
	// Save persists a session under its token
	Save(ctx context.Context, session *entities.Session) error

	// Get retrieves a session by token
	Get(ctx context.Context, token string) (*entities.Session, error)

	// Delete removes a session
	Delete(ctx context.Context, token string) error
}
