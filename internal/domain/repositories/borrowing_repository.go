package repositories

import (
	"context"
	"time"

	"github.com/bookbridge/librental/internal/domain/entities"
)

// BorrowingRepository defines the interface for borrowing lifecycle
// operations. Every transition that touches the denormalized book/user
// counters runs inside a single database transaction, so a failed step can
// never leave a status change half-applied against its counters.
type BorrowingRepository interface {
	// Create inserts a new pending borrow request. No counters move until
	// acceptance.
	Create(ctx context.Context, borrowing *entities.Borrowing) error

	// CreateActive inserts a borrowing directly in borrowed status and
	// reserves a copy (admin walk-in flow)
	CreateActive(ctx context.Context, borrowing *entities.Borrowing) error

	// GetByID retrieves a borrowing by ID
	GetByID(ctx context.Context, id string) (*entities.Borrowing, error)

	// ListWithDetails retrieves borrowings joined with member and book rows
	ListWithDetails(ctx context.Context, filter BorrowingFilter) ([]*entities.BorrowingView, error)

	// CountActiveByUser counts a member's pending+borrowed borrowings
	CountActiveByUser(ctx context.Context, userID string) (int, error)

	// AcceptRequest moves a pending borrowing to borrowed, reserving a copy
	// and bumping the member's borrowed count
	AcceptRequest(ctx context.Context, id string) error

	// RejectPending deletes a pending borrowing; no copy was ever reserved
	RejectPending(ctx context.Context, id string) error

	// RequestReturn flags an active borrowing for return
	RequestReturn(ctx context.Context, id string) error

	// RejectReturn clears the return request flag
	RejectReturn(ctx context.Context, id string) error

	// AcceptReturn moves a borrowed borrowing to returned, releasing the
	// copy and decrementing the member's borrowed count
	AcceptReturn(ctx context.Context, id string, returnedAt time.Time) error

	// CancelActive deletes a borrowed borrowing and releases its copy
	CancelActive(ctx context.Context, id string) error
}

// BorrowingFilter defines filters for listing borrowings
type BorrowingFilter struct {
	UserID                string
	Statuses              []string
	ReturnRequested       *bool
	OrderByBorrowDateDesc bool
}
