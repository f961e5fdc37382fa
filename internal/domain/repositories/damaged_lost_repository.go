package repositories

import (
	"context"

	"github.com/bookbridge/librental/internal/domain/entities"
)

// DamagedLostRepository defines the interface for damaged/lost records
type DamagedLostRepository interface {
	// Record inserts a damaged/lost record and moves its borrowing to the
	// matching terminal status, atomically
	Record(ctx context.Context, record *entities.DamagedLost) error

	// List retrieves all records
	List(ctx context.Context) ([]*entities.DamagedLost, error)

	// ListViews retrieves records joined with borrowing, member and book
	ListViews(ctx context.Context) ([]*entities.DamagedLostView, error)

	// WaiveFine waives the fine on a record. Idempotent.
	WaiveFine(ctx context.Context, id string) error

	// ImposeFine sets the fine amount on a record
	ImposeFine(ctx context.Context, id string, amount float64) error
}
