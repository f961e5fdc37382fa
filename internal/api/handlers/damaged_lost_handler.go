package handlers

import (
	"context"
	"net/http"

	"github.com/bookbridge/librental/internal/domain/entities"
)

// DamagedLostService defines the damaged/lost operations used by the handler.
type DamagedLostService interface {
	Record(ctx context.Context, memberEmail, bookTitle, condition string, fineAmount float64) (*entities.DamagedLost, error)
	List(ctx context.Context) ([]*entities.DamagedLostView, error)
	WaiveFine(ctx context.Context, id string) error
	ImposeFine(ctx context.Context, id string, amount float64) error
	Stats(ctx context.Context) (*entities.DamagedLostStats, error)
}

// DamagedLostHandler handles the damaged/lost back-office HTTP requests
type DamagedLostHandler struct {
	service DamagedLostService
}

// NewDamagedLostHandler creates a new damaged/lost handler
func NewDamagedLostHandler(service DamagedLostService) *DamagedLostHandler {
	return &DamagedLostHandler{
		service: service,
	}
}

type recordDamagedLostRequest struct {
	MemberEmail string  `json:"member_email" validate:"required,email"`
	BookTitle   string  `json:"book_title" validate:"required"`
	Condition   string  `json:"condition" validate:"required,oneof=damaged lost"`
	FineAmount  float64 `json:"fine_amount" validate:"gte=0"`
}

// Record handles POST /api/admin/damaged-lost
func (h *DamagedLostHandler) Record(w http.ResponseWriter, r *http.Request) {
	var payload recordDamagedLostRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	record, err := h.service.Record(r.Context(), payload.MemberEmail, payload.BookTitle, payload.Condition, payload.FineAmount)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, record)
}

// List handles GET /api/admin/damaged-lost
func (h *DamagedLostHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// Stats handles GET /api/admin/damaged-lost/stats
func (h *DamagedLostHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// WaiveFine handles POST /api/admin/damaged-lost/{id}/waive
func (h *DamagedLostHandler) WaiveFine(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("id")
	if recordID == "" {
		respondWithError(w, http.StatusBadRequest, "record ID is required")
		return
	}

	if err := h.service.WaiveFine(r.Context(), recordID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "fine_waived"})
}

type imposeFineRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

// ImposeFine handles PUT /api/admin/damaged-lost/{id}/fine
func (h *DamagedLostHandler) ImposeFine(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("id")
	if recordID == "" {
		respondWithError(w, http.StatusBadRequest, "record ID is required")
		return
	}

	var payload imposeFineRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	if err := h.service.ImposeFine(r.Context(), recordID, payload.Amount); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "fine_updated"})
}
