package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookbridge/librental/internal/api/middleware"
	"github.com/bookbridge/librental/internal/domain/entities"
)

// AuthService defines the auth operations used by the handler.
type AuthService interface {
	Register(ctx context.Context, user *entities.User) error
	Login(ctx context.Context, identifier, password string) (*entities.Session, error)
	Logout(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*entities.Session, error)
	CanBorrow(ctx context.Context, token string) (entities.BorrowGate, error)
}

// AuthHandler handles registration, login and session requests
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	user := &entities.User{
		Username:  strings.TrimSpace(payload.Username),
		Email:     strings.ToLower(strings.TrimSpace(payload.Email)),
		Password:  payload.Password,
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Phone:     strings.TrimSpace(payload.Phone),
		Address:   strings.TrimSpace(payload.Address),
	}
	if err := h.service.Register(r.Context(), user); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"id":       user.ID,
		"username": user.Username,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, err)
		return
	}

	session, err := h.service.Login(r.Context(), strings.TrimSpace(payload.Identifier), payload.Password)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// GetSession handles GET /api/auth/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	session, err := h.service.CurrentSession(r.Context(), token)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// CanBorrow handles GET /api/auth/can-borrow. Always answers 200: a missing
// session is a failed gate, not an error.
func (h *AuthHandler) CanBorrow(w http.ResponseWriter, r *http.Request) {
	gate, err := h.service.CanBorrow(r.Context(), middleware.BearerToken(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, gate)
}
