package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/repositories"
	"github.com/bookbridge/librental/internal/infrastructure/clients/postgres"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

var bookColumns = []interface{}{
	"id", "title", "author", "genre", "year", "pages", "description", "image",
	"total_copies", "available_copies", "available", "category",
	"created_at", "updated_at",
}

// BookAdapter implements the BookRepository interface
type BookAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookAdapter creates a new book adapter
func NewBookAdapter(client *postgres.Client) repositories.BookRepository {
	return &BookAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new book
func (a *BookAdapter) Create(ctx context.Context, book *entities.Book) error {
	record := goqu.Record{
		"id":               book.ID,
		"title":            book.Title,
		"author":           book.Author,
		"genre":            book.Genre,
		"year":             book.Year,
		"pages":            book.Pages,
		"description":      book.Description,
		"image":            book.Image,
		"total_copies":     book.TotalCopies,
		"available_copies": book.AvailableCopies,
		"available":        book.Available,
		"category":         book.Category,
		"created_at":       book.CreatedAt,
		"updated_at":       book.UpdatedAt,
	}

	query, args, err := a.db.Insert("books").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create book", err)
	}

	return nil
}

// GetByID retrieves a book by ID
func (a *BookAdapter) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	query, args, err := a.db.Select(bookColumns...).
		From("books").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	book, err := scanBook(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("book with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get book", err)
	}

	return book, nil
}

// Update updates a book
func (a *BookAdapter) Update(ctx context.Context, book *entities.Book) error {
	book.UpdatedAt = time.Now()

	record := goqu.Record{
		"title":            book.Title,
		"author":           book.Author,
		"genre":            book.Genre,
		"year":             book.Year,
		"pages":            book.Pages,
		"description":      book.Description,
		"image":            book.Image,
		"total_copies":     book.TotalCopies,
		"available_copies": book.AvailableCopies,
		"available":        book.Available,
		"category":         book.Category,
		"updated_at":       book.UpdatedAt,
	}

	query, args, err := a.db.Update("books").
		Set(record).
		Where(goqu.Ex{"id": book.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update book", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("book with id %s not found", book.ID))
	}

	return nil
}

// List retrieves books with filters
func (a *BookAdapter) List(ctx context.Context, filter repositories.BookFilter) ([]*entities.Book, error) {
	ds := a.db.Select(bookColumns...).From("books")

	if filter.Category != "" {
		ds = ds.Where(goqu.Ex{"category": filter.Category})
	}
	if filter.Genre != "" {
		ds = ds.Where(goqu.Ex{"genre": filter.Genre})
	}
	if filter.Available != nil {
		ds = ds.Where(goqu.Ex{"available": *filter.Available})
	}
	if filter.OrderByCreatedDesc {
		ds = ds.Order(goqu.C("created_at").Desc())
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list books", err)
	}
	defer rows.Close()

	books := []*entities.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan book", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating books", err)
	}

	return books, nil
}

// FindAvailableByTitle retrieves one available book whose title matches the
// given fragment, case-insensitively
func (a *BookAdapter) FindAvailableByTitle(ctx context.Context, title string) (*entities.Book, error) {
	query, args, err := a.db.Select(bookColumns...).
		From("books").
		Where(
			goqu.C("title").ILike("%"+title+"%"),
			goqu.Ex{"available": true},
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	book, err := scanBook(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no available book matching title %q", title))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find book by title", err)
	}

	return book, nil
}

func scanBook(row rowScanner) (*entities.Book, error) {
	book := &entities.Book{}
	var year, pages sql.NullInt64
	var description, image sql.NullString

	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&year,
		&pages,
		&description,
		&image,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.Available,
		&book.Category,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		book.Year = &y
	}
	if pages.Valid {
		p := int(pages.Int64)
		book.Pages = &p
	}
	book.Description = description.String
	book.Image = image.String
	return book, nil
}
