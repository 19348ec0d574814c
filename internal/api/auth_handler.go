package api

import (
	"log/slog"
	"net/http"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler creates a new AuthHandler with the given user service.
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles user registration (POST /api/auth/register).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	result, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	log.Info("user registered", slog.String("user_id", result.User.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, newAuthResponse(result))
}

// Login handles user login (POST /api/auth/login).
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newAuthResponse(result))
}

// Refresh exchanges a valid refresh token for a new token pair
// (POST /api/auth/refresh).
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	result, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newAuthResponse(result))
}
