package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/repositories"
)

// ReportingService defines the reporting operations used by the handlers.
type ReportingService interface {
	DashboardStats(ctx context.Context) (*entities.DashboardStats, error)
	ListMembers(ctx context.Context, filter repositories.MemberFilter) ([]*entities.MemberView, error)
}

// MemberHandler handles the admin member listing
type MemberHandler struct {
	service ReportingService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(service ReportingService) *MemberHandler {
	return &MemberHandler{
		service: service,
	}
}

// ListMembers handles GET /api/admin/members. An optional paid query narrows
// to paid or unpaid members.
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	filter := repositories.MemberFilter{}
	if raw := r.URL.Query().Get("paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "paid must be true or false")
			return
		}
		filter.Paid = &paid
	}

	members, err := h.service.ListMembers(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"members": members,
		"count":   len(members),
	})
}
