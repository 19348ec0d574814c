package api

import (
	"errors"
	"net/http"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// MapErrorToStatusCode translates service and store errors into HTTP status
// codes. Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case store.IsNotFoundError(err):
		return http.StatusNotFound
	case store.IsDuplicateError(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for the given error.
// Internal details never reach the response body; 5xx errors get a generic
// message and are logged separately.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Refresh token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidRefreshToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrForbidden):
		return "Access denied"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrCategoryNotFound):
		return "Category not found"
	case store.IsNotFoundError(err):
		return "Resource not found"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"
	case errors.Is(err, store.ErrCategoryNameExists):
		return "Category with this name already exists"
	case store.IsDuplicateError(err):
		return "Resource already exists"
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid reference to a related resource"
	default:
		return "An internal error occurred"
	}
}

// HandleServiceError maps an error to an HTTP response and logs it at the
// appropriate level.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
