package repositories

import (
	"context"

	"github.com/bookbridge/librental/internal/domain/entities"
)

// BookRepository defines the interface for book catalog operations
type BookRepository interface {
	// Create creates a new book
	Create(ctx context.Context, book *entities.Book) error

	// GetByID retrieves a book by ID
	GetByID(ctx context.Context, id string) (*entities.Book, error)

	// Update updates a book
	Update(ctx context.Context, book *entities.Book) error

	// List retrieves books with filters
	List(ctx context.Context, filter BookFilter) ([]*entities.Book, error)

	// FindAvailableByTitle retrieves one available book whose title matches
	// the given fragment, case-insensitively
	FindAvailableByTitle(ctx context.Context, title string) (*entities.Book, error)
}

// CategoryRepository defines the interface for genre tag operations
type CategoryRepository interface {
	// GetByName retrieves a category by name
	GetByName(ctx context.Context, name string) (*entities.Category, error)

	// Create creates a new category
	Create(ctx context.Context, category *entities.Category) error

	// List retrieves all categories ordered by name
	List(ctx context.Context) ([]*entities.Category, error)
}

// BookFilter defines filters for listing books. Category, Genre and
// Available are applied server-side by equality; free-text matching happens
// in the catalog service after the fetch.
type BookFilter struct {
	Category           string
	Genre              string
	Available          *bool
	OrderByCreatedDesc bool
	Limit              int
	Offset             int
}

// IsCatalogWide reports whether the filter selects the whole catalog (the
// only read the short-lived cache covers).
func (f BookFilter) IsCatalogWide() bool {
	return f.Category == "" && f.Genre == "" && f.Available == nil && f.Limit == 0 && f.Offset == 0
}
