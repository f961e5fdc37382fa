package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bookbridge/librental/internal/application/services"
	"github.com/bookbridge/librental/internal/domain/entities"
)

// CatalogService defines the catalog operations used by the handler.
type CatalogService interface {
	GetAllBooks(ctx context.Context) ([]*entities.Book, error)
	GetBooksByCategory(ctx context.Context, category string) ([]*entities.Book, error)
	GetBookByID(ctx context.Context, id string) (*entities.Book, error)
	FilterBooks(ctx context.Context, params services.FilterParams) ([]*entities.Book, error)
	ListCategories(ctx context.Context) ([]*entities.Category, error)
	AddBook(ctx context.Context, book *entities.Book) error
	UpdateBook(ctx context.Context, book *entities.Book) error
}

// BookHandler handles catalog HTTP requests
type BookHandler struct {
	service CatalogService
}

// NewBookHandler creates a new book handler
func NewBookHandler(service CatalogService) *BookHandler {
	return &BookHandler{
		service: service,
	}
}

// ListBooks handles GET /api/books. An optional category query narrows the
// catalog to a homepage section.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var (
		books []*entities.Book
		err   error
	)
	if category != "" {
		books, err = h.service.GetBooksByCategory(r.Context(), category)
	} else {
		books, err = h.service.GetAllBooks(r.Context())
	}
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"books": books,
		"count": len(books),
	})
}

// FilterBooks handles GET /api/books/filter
func (h *BookHandler) FilterBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := services.FilterParams{
		Term:   query.Get("term"),
		Author: query.Get("author"),
		Genre:  query.Get("genre"),
	}
	if raw := query.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "available must be true or false")
			return
		}
		params.Available = &available
	}

	books, err := h.service.FilterBooks(r.Context(), params)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"books": books,
		"count": len(books),
	})
}

// GetBook handles GET /api/books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")
	if bookID == "" {
		respondWithError(w, http.StatusBadRequest, "book ID is required")
		return
	}

	book, err := h.service.GetBookByID(r.Context(), bookID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, book)
}

// ListCategories handles GET /api/categories
func (h *BookHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

type bookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Genre       string `json:"genre" validate:"required"`
	Year        *int   `json:"year"`
	Pages       *int   `json:"pages"`
	Description string `json:"description"`
	Image       string `json:"image"`
	TotalCopies int    `json:"total_copies" validate:"required,min=1"`
	Category    string `json:"category"`
}

// AddBook handles POST /api/admin/books
func (h *BookHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var payload bookRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	book := &entities.Book{
		Title:       payload.Title,
		Author:      payload.Author,
		Genre:       payload.Genre,
		Year:        payload.Year,
		Pages:       payload.Pages,
		Description: payload.Description,
		Image:       payload.Image,
		TotalCopies: payload.TotalCopies,
		Category:    payload.Category,
	}
	if err := h.service.AddBook(r.Context(), book); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, book)
}

// UpdateBook handles PUT /api/admin/books/{id}
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")
	if bookID == "" {
		respondWithError(w, http.StatusBadRequest, "book ID is required")
		return
	}

	var payload bookRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	book, err := h.service.GetBookByID(r.Context(), bookID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	onLoan := book.TotalCopies - book.AvailableCopies
	book.Title = payload.Title
	book.Author = payload.Author
	book.Genre = payload.Genre
	book.Year = payload.Year
	book.Pages = payload.Pages
	book.Description = payload.Description
	book.Image = payload.Image
	book.TotalCopies = payload.TotalCopies
	book.AvailableCopies = payload.TotalCopies - onLoan
	if payload.Category != "" {
		book.Category = payload.Category
	}

	if err := h.service.UpdateBook(r.Context(), book); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, book)
}
