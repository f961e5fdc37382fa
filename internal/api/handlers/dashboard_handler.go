package handlers

import (
	"net/http"
)

// DashboardHandler handles the admin dashboard counters
type DashboardHandler struct {
	service ReportingService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service ReportingService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// GetStats handles GET /api/admin/dashboard
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
