package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given task service.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List returns a filtered, paginated page of the requester's tasks
// (GET /api/tasks).
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, err := h.tasks.List(r.Context(), requester.ID, parseTaskQuery(r))
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Stats returns aggregate counts over the requester's active tasks
// (GET /api/tasks/stats).
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.tasks.Stats(r.Context(), requester.ID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Get returns a single task by id (GET /api/tasks/{id}).
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.tasks.Get(r.Context(), id, requester)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Create creates a task owned by the requester (POST /api/tasks).
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	task, err := h.tasks.Create(r.Context(), requester.ID, req.toDraft())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", requester.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Update partially updates a task (PATCH /api/tasks/{id}).
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	task, err := h.tasks.Update(r.Context(), id, requester, req.toPatch())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Complete marks a task as completed (POST /api/tasks/{id}/complete).
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.tasks.Complete(r.Context(), id, requester)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete soft-deletes a task (DELETE /api/tasks/{id}).
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.tasks.Remove(r.Context(), id, requester); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdate applies one change set to several of the requester's tasks
// (PATCH /api/tasks/bulk).
func (h *TaskHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BulkUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	updated, err := h.tasks.BulkUpdate(r.Context(), req.TaskIDs, requester, req.toPatch())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BulkResultResponse{Affected: updated})
}

// BulkDelete soft-deletes several of the requester's tasks
// (DELETE /api/tasks/bulk).
func (h *TaskHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.GetRequester(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BulkDeleteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	deleted, err := h.tasks.BulkDelete(r.Context(), req.TaskIDs, requester)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BulkResultResponse{Affected: deleted})
}
