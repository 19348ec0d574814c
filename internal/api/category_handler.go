package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler with the given category
// service.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List returns the requester's categories (GET /api/categories).
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	categories, err := h.categories.List(r.Context(), requester.ID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}

// Create adds a category for the requester (POST /api/categories).
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	category, err := h.categories.Create(r.Context(), requester.ID, req.Name, req.Color, req.Icon)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, category)
}

// Delete removes a category (DELETE /api/categories/{id}).
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.categories.Remove(r.Context(), id, requester); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
