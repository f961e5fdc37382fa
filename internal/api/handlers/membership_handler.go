package handlers

import (
	"context"
	"net/http"

	"github.com/bookbridge/librental/internal/api/middleware"
	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
)

// MembershipService defines the membership fee operations used by the
// handler.
type MembershipService interface {
	Pay(ctx context.Context, session *entities.Session, method string) (string, error)
}

// MembershipHandler handles the one-time security fee payment
type MembershipHandler struct {
	service MembershipService
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(service MembershipService) *MembershipHandler {
	return &MembershipHandler{
		service: service,
	}
}

type payMembershipRequest struct {
	Method string `json:"method" validate:"required,oneof=card upi netbanking"`
}

// Pay handles POST /api/membership/pay
func (h *MembershipHandler) Pay(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var payload payMembershipRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	reference, err := h.service.Pay(r.Context(), session, payload.Method)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "paid",
		"reference": reference,
		"amount":    providers.MembershipFee,
	})
}

// Status handles GET /api/membership/status
func (h *MembershipHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"is_paid": session != nil && session.User.IsPaid,
		"amount":  providers.MembershipFee,
	})
}
