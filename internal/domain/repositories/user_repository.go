package repositories

import (
	"context"

	"github.com/bookbridge/librental/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByCredentials looks up a user by username-or-email plus an exact
	// password match. Zero or ambiguous matches fail with an unauthorized
	// error.
	GetByCredentials(ctx context.Context, identifier, password string) (*entities.User, error)

	// GetMemberByEmail retrieves a non-admin user by email
	GetMemberByEmail(ctx context.Context, email string) (*entities.User, error)

	// ExistsByUsernameOrEmail reports whether a user already holds the
	// username or the email
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// SetPaid flips the membership payment gate on the user row
	SetPaid(ctx context.Context, id string) error

	// ListMembers retrieves non-admin users with filters
	ListMembers(ctx context.Context, filter MemberFilter) ([]*entities.User, error)
}

// MemberFilter defines filters for listing members
type MemberFilter struct {
	Paid *bool
}
