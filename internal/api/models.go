package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/store"
)

// RegisterRequest represents the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest represents the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest represents the payload for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse represents the response for successful authentication.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

func newAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		UserID:       result.User.ID,
		Email:        result.User.Email,
		Role:         string(result.User.Role),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}

// CreateTaskRequest represents the payload for creating a task.
type CreateTaskRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"max=2000"`
	Status         *string    `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS IN_REVIEW COMPLETED ARCHIVED CANCELLED"`
	Priority       *string    `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	Tags           []string   `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	AssigneeID     *uuid.UUID `json:"assignee_id,omitempty"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
}

func (req CreateTaskRequest) toDraft() service.TaskDraft {
	draft := service.TaskDraft{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
		CategoryID:     req.CategoryID,
		AssigneeID:     req.AssigneeID,
		ParentID:       req.ParentID,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		draft.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		draft.Priority = &priority
	}
	return draft
}

// UpdateTaskRequest represents the payload for partially updating a task.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title          *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status         *string    `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS IN_REVIEW COMPLETED ARCHIVED CANCELLED"`
	Priority       *string    `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	ActualHours    *float64   `json:"actual_hours,omitempty" validate:"omitempty,gte=0"`
	Tags           *[]string  `json:"tags,omitempty"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	AssigneeID     *uuid.UUID `json:"assignee_id,omitempty"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
}

func (req UpdateTaskRequest) toPatch() service.TaskPatch {
	patch := service.TaskPatch{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Tags:           req.Tags,
		CategoryID:     req.CategoryID,
		AssigneeID:     req.AssigneeID,
		ParentID:       req.ParentID,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	return patch
}

// BulkUpdateRequest represents the payload for applying one change set to
// several tasks at once.
type BulkUpdateRequest struct {
	TaskIDs    []uuid.UUID `json:"task_ids" validate:"required,min=1,max=100"`
	Status     *string     `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS IN_REVIEW COMPLETED ARCHIVED CANCELLED"`
	Priority   *string     `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate    *time.Time  `json:"due_date,omitempty"`
	CategoryID *uuid.UUID  `json:"category_id,omitempty"`
	AssigneeID *uuid.UUID  `json:"assignee_id,omitempty"`
}

func (req BulkUpdateRequest) toPatch() store.TaskPatch {
	patch := store.TaskPatch{
		DueDate:    req.DueDate,
		CategoryID: req.CategoryID,
		AssigneeID: req.AssigneeID,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	return patch
}

// BulkDeleteRequest represents the payload for deleting several tasks at
// once.
type BulkDeleteRequest struct {
	TaskIDs []uuid.UUID `json:"task_ids" validate:"required,min=1,max=100"`
}

// BulkResultResponse reports how many tasks a bulk operation touched.
type BulkResultResponse struct {
	Affected int `json:"affected"`
}

// CategoryRequest represents the payload for creating a category.
type CategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon  string `json:"icon,omitempty" validate:"omitempty,max=50"`
}

// parseTaskQuery builds a task list query from URL parameters. Unknown or
// malformed numeric parameters fall back to their defaults; enum values are
// validated by the service during normalization.
func parseTaskQuery(r *http.Request) service.TaskQuery {
	q := r.URL.Query()

	query := service.TaskQuery{
		Search:    q.Get("search"),
		SortBy:    store.TaskSortField(q.Get("sortBy")),
		SortOrder: store.SortOrder(strings.ToUpper(q.Get("sortOrder"))),
	}

	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			query.Page = page
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			query.Limit = limit
		}
	}
	for _, s := range splitParam(q.Get("status")) {
		query.Statuses = append(query.Statuses, domain.TaskStatus(strings.ToUpper(s)))
	}
	for _, p := range splitParam(q.Get("priority")) {
		query.Priorities = append(query.Priorities, domain.TaskPriority(strings.ToUpper(p)))
	}
	if v := q.Get("tags"); v != "" {
		query.Tags = splitParam(v)
	}
	if v := q.Get("categoryId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query.CategoryID = &id
		}
	}
	if v := q.Get("dueFrom"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.DueFrom = &t
		}
	}
	if v := q.Get("dueTo"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.DueTo = &t
		}
	}
	if v := q.Get("overdue"); v != "" {
		query.Overdue = v == "true"
	}

	return query
}

func splitParam(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
