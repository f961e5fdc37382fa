package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	"github.com/bookbridge/librental/internal/domain/repositories"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// CatalogService handles the book catalog: browsing, filtering and the admin
// add/update flows.
type CatalogService struct {
	books      repositories.BookRepository
	categories repositories.CategoryRepository
	eventBus   providers.EventBus
}

// NewCatalogService creates a new catalog service
func NewCatalogService(books repositories.BookRepository, categories repositories.CategoryRepository, eventBus providers.EventBus) *CatalogService {
	return &CatalogService{
		books:      books,
		categories: categories,
		eventBus:   eventBus,
	}
}

// FilterParams are the catalog search inputs. Genre and availability are
// pushed to the database; term and author are matched in memory as
// case-insensitive substrings.
type FilterParams struct {
	Term      string
	Author    string
	Genre     string
	Available *bool
}

// GetAllBooks retrieves the whole catalog, newest first
func (s *CatalogService) GetAllBooks(ctx context.Context) ([]*entities.Book, error) {
	return s.books.List(ctx, repositories.BookFilter{OrderByCreatedDesc: true})
}

// GetBooksByCategory retrieves books in a homepage section
func (s *CatalogService) GetBooksByCategory(ctx context.Context, category string) ([]*entities.Book, error) {
	return s.books.List(ctx, repositories.BookFilter{
		Category:           category,
		OrderByCreatedDesc: true,
	})
}

// GetBookByID retrieves a book by ID
func (s *CatalogService) GetBookByID(ctx context.Context, id string) (*entities.Book, error) {
	return s.books.GetByID(ctx, id)
}

// FilterBooks retrieves books matching the filter params
func (s *CatalogService) FilterBooks(ctx context.Context, params FilterParams) ([]*entities.Book, error) {
	books, err := s.books.List(ctx, repositories.BookFilter{
		Genre:              params.Genre,
		Available:          params.Available,
		OrderByCreatedDesc: true,
	})
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(params.Term))
	author := strings.ToLower(strings.TrimSpace(params.Author))
	if term == "" && author == "" {
		return books, nil
	}

	filtered := make([]*entities.Book, 0, len(books))
	for _, book := range books {
		title := strings.ToLower(book.Title)
		bookAuthor := strings.ToLower(book.Author)
		if term != "" && !strings.Contains(title, term) && !strings.Contains(bookAuthor, term) {
			continue
		}
		if author != "" && !strings.Contains(bookAuthor, author) {
			continue
		}
		filtered = append(filtered, book)
	}
	return filtered, nil
}

// ListCategories retrieves all genre tags
func (s *CatalogService) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx)
}

// AddBook creates a new catalog entry. All copies start available, the book
// lands in the latest section, and its genre tag is created if missing.
func (s *CatalogService) AddBook(ctx context.Context, book *entities.Book) error {
	if book.TotalCopies <= 0 {
		return apperrors.NewValidationError("total copies must be positive")
	}

	now := time.Now()
	book.ID = uuid.New().String()
	if book.Category == "" {
		book.Category = entities.BookCategoryLatest
	}
	book.AvailableCopies = book.TotalCopies
	book.Available = book.AvailableCopies > 0
	book.CreatedAt = now
	book.UpdatedAt = now

	if err := s.ensureCategory(ctx, book.Genre); err != nil {
		return err
	}
	if err := s.books.Create(ctx, book); err != nil {
		return err
	}

	s.publish(ctx, book.ID, entities.CatalogEventTypeBookAdded)
	return nil
}

// UpdateBook updates a catalog entry, keeping the availability flag in step
// with the copy count.
func (s *CatalogService) UpdateBook(ctx context.Context, book *entities.Book) error {
	if book.AvailableCopies > book.TotalCopies {
		book.AvailableCopies = book.TotalCopies
	}
	if book.AvailableCopies < 0 {
		book.AvailableCopies = 0
	}
	book.Available = book.AvailableCopies > 0
	book.UpdatedAt = time.Now()

	if err := s.ensureCategory(ctx, book.Genre); err != nil {
		return err
	}
	if err := s.books.Update(ctx, book); err != nil {
		return err
	}

	s.publish(ctx, book.ID, entities.CatalogEventTypeBookUpdated)
	return nil
}

// ensureCategory creates the genre tag if it does not exist yet
func (s *CatalogService) ensureCategory(ctx context.Context, genre string) error {
	if genre == "" || s.categories == nil {
		return nil
	}

	_, err := s.categories.GetByName(ctx, genre)
	if err == nil {
		return nil
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return err
	}

	return s.categories.Create(ctx, &entities.Category{
		ID:        uuid.New().String(),
		Name:      genre,
		CreatedAt: time.Now(),
	})
}

func (s *CatalogService) publish(ctx context.Context, bookID string, eventType entities.CatalogEventType) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewCatalogEvent(bookID, eventType)
	if err := s.eventBus.Publish(ctx, providers.EventChannelCatalogUpdates, event); err != nil {
		log.Warn().Err(err).Str("book_id", bookID).Str("event_type", string(eventType)).Msg("failed to publish catalog event")
	}
}
