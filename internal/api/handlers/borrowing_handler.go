package handlers

import (
	"context"
	"net/http"

	"github.com/bookbridge/librental/internal/api/middleware"
	"github.com/bookbridge/librental/internal/domain/entities"
)

// BorrowingService defines the borrowing lifecycle operations used by the
// handler.
type BorrowingService interface {
	RequestBorrow(ctx context.Context, session *entities.Session, bookID string, delivery entities.DeliveryDetails) (*entities.Borrowing, error)
	AcceptRequest(ctx context.Context, id string) error
	RejectRequest(ctx context.Context, id string) error
	RequestReturn(ctx context.Context, session *entities.Session, id string) error
	AcceptReturn(ctx context.Context, id string) error
	RejectReturn(ctx context.Context, id string) error
	CancelBorrowing(ctx context.Context, id string) error
	CreateDirect(ctx context.Context, memberEmail, bookTitle string) (*entities.Borrowing, error)
	ListPendingRequests(ctx context.Context) ([]*entities.BorrowingView, error)
	ListActive(ctx context.Context) ([]*entities.BorrowingView, error)
	ListReturnRequests(ctx context.Context) ([]*entities.BorrowingView, error)
}

// SessionRefresher reloads a session after an operation changed what the
// member screens should show.
type SessionRefresher interface {
	Refresh(ctx context.Context, token string) (*entities.Session, error)
}

// BorrowingHandler handles borrowing lifecycle HTTP requests
type BorrowingHandler struct {
	service   BorrowingService
	refresher SessionRefresher
}

// NewBorrowingHandler creates a new borrowing handler
func NewBorrowingHandler(service BorrowingService, refresher SessionRefresher) *BorrowingHandler {
	return &BorrowingHandler{
		service:   service,
		refresher: refresher,
	}
}

type borrowRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Delivery struct {
		FullName    string `json:"full_name" validate:"required"`
		PhoneNumber string `json:"phone_number" validate:"required"`
		Address     string `json:"address" validate:"required"`
		City        string `json:"city" validate:"required"`
		PostalCode  string `json:"postal_code" validate:"required"`
	} `json:"delivery"`
}

// RequestBorrow handles POST /api/borrowings
func (h *BorrowingHandler) RequestBorrow(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var payload borrowRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	delivery := entities.DeliveryDetails{
		FullName:    payload.Delivery.FullName,
		PhoneNumber: payload.Delivery.PhoneNumber,
		Address:     payload.Delivery.Address,
		City:        payload.Delivery.City,
		PostalCode:  payload.Delivery.PostalCode,
	}
	borrowing, err := h.service.RequestBorrow(r.Context(), session, payload.BookID, delivery)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.refreshSession(r, session)
	respondWithJSON(w, http.StatusCreated, borrowing)
}

// RequestReturn handles POST /api/borrowings/{id}/return-request
func (h *BorrowingHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	borrowingID := r.PathValue("id")
	if borrowingID == "" {
		respondWithError(w, http.StatusBadRequest, "borrowing ID is required")
		return
	}

	if err := h.service.RequestReturn(r.Context(), session, borrowingID); err != nil {
		respondWithAppError(w, err)
		return
	}

	h.refreshSession(r, session)
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "return_requested"})
}

// ListPendingRequests handles GET /api/admin/borrowings/requests
func (h *BorrowingHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.ListPendingRequests)
}

// ListActive handles GET /api/admin/borrowings/active
func (h *BorrowingHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.ListActive)
}

// ListReturnRequests handles GET /api/admin/borrowings/return-requests
func (h *BorrowingHandler) ListReturnRequests(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.ListReturnRequests)
}

func (h *BorrowingHandler) respondList(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*entities.BorrowingView, error)) {
	borrowings, err := list(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"borrowings": borrowings,
		"count":      len(borrowings),
	})
}

// AcceptRequest handles POST /api/admin/borrowings/{id}/accept
func (h *BorrowingHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AcceptRequest, "accepted")
}

// RejectRequest handles POST /api/admin/borrowings/{id}/reject
func (h *BorrowingHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RejectRequest, "rejected")
}

// AcceptReturn handles POST /api/admin/borrowings/{id}/return/accept
func (h *BorrowingHandler) AcceptReturn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AcceptReturn, "returned")
}

// RejectReturn handles POST /api/admin/borrowings/{id}/return/reject
func (h *BorrowingHandler) RejectReturn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RejectReturn, "return_rejected")
}

// CancelBorrowing handles DELETE /api/admin/borrowings/{id}
func (h *BorrowingHandler) CancelBorrowing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CancelBorrowing, "cancelled")
}

func (h *BorrowingHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error, status string) {
	borrowingID := r.PathValue("id")
	if borrowingID == "" {
		respondWithError(w, http.StatusBadRequest, "borrowing ID is required")
		return
	}

	if err := op(r.Context(), borrowingID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": status})
}

type directBorrowRequest struct {
	MemberEmail string `json:"member_email" validate:"required,email"`
	BookTitle   string `json:"book_title" validate:"required"`
}

// CreateDirect handles POST /api/admin/borrowings
func (h *BorrowingHandler) CreateDirect(w http.ResponseWriter, r *http.Request) {
	var payload directBorrowRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	borrowing, err := h.service.CreateDirect(r.Context(), payload.MemberEmail, payload.BookTitle)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, borrowing)
}

// refreshSession best-effort reloads the caller's session so the next read
// reflects the change. The operation already succeeded; a refresh failure
// only delays what the member sees.
func (h *BorrowingHandler) refreshSession(r *http.Request, session *entities.Session) {
	if h.refresher == nil || session == nil {
		return
	}
	_, _ = h.refresher.Refresh(r.Context(), session.Token)
}
