package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// TaskDraft carries the fields of a task creation request.
type TaskDraft struct {
	Title          string
	Description    string
	Status         *domain.TaskStatus
	Priority       *domain.TaskPriority
	DueDate        *time.Time
	EstimatedHours *float64
	Tags           []string
	CategoryID     *uuid.UUID
	AssigneeID     *uuid.UUID
	ParentID       *uuid.UUID
}

// TaskPatch carries the fields of a task update request.
// Nil fields are left untouched.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *domain.TaskStatus
	Priority       *domain.TaskPriority
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           *[]string
	CategoryID     *uuid.UUID
	AssigneeID     *uuid.UUID
	ParentID       *uuid.UUID
}

// Create persists a new task owned by ownerID. Side effects run in order:
// persist, invalidate the owner's list and analytics caches, then dispatch
// a high_priority notification when the priority warrants one. The
// notification is best-effort; its failure never rolls back the task.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, draft TaskDraft) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, draft.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	task.Description = draft.Description
	if draft.Status != nil {
		if err := task.SetStatus(*draft.Status, task.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	if draft.Priority != nil {
		task.Priority = *draft.Priority
	}
	task.DueDate = draft.DueDate
	task.EstimatedHours = draft.EstimatedHours
	task.Tags = draft.Tags
	task.CategoryID = draft.CategoryID
	task.AssigneeID = draft.AssigneeID
	task.ParentID = draft.ParentID

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.invalidateForMutation(ctx, ownerID)

	if s.notifier.ShouldNotifyHighPriority(task.Priority) {
		s.logger.Debug("dispatching high priority notification",
			slog.String("task_id", task.ID.String()))
		s.notifier.SendHighPriority(task)
	}

	return task, nil
}

// Update applies a patch to an existing task after enforcing ownership.
// A transition into COMPLETED stamps CompletedAt once and dispatches a
// completed notification; a transition into ARCHIVED stamps ArchivedAt
// once with no notification. Invalidates the task's entity cache and the
// owner's list and analytics caches.
func (s *TaskService) Update(
	ctx context.Context,
	id uuid.UUID,
	requester domain.Requester,
	patch TaskPatch,
) (*domain.Task, error) {
	task, err := s.Get(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	now := s.timeFunc().UTC()
	previousStatus := task.Status

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.EstimatedHours != nil {
		task.EstimatedHours = patch.EstimatedHours
	}
	if patch.ActualHours != nil {
		task.ActualHours = patch.ActualHours
	}
	if patch.Tags != nil {
		task.Tags = *patch.Tags
	}
	if patch.CategoryID != nil {
		task.CategoryID = patch.CategoryID
	}
	if patch.AssigneeID != nil {
		task.AssigneeID = patch.AssigneeID
	}
	if patch.ParentID != nil {
		task.ParentID = patch.ParentID
	}

	if patch.Status != nil {
		if err := task.SetStatus(*patch.Status, now); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	} else {
		task.UpdatedAt = now
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.cache.InvalidateTask(ctx, id)
	s.invalidateForMutation(ctx, task.OwnerID)

	if patch.Status != nil &&
		*patch.Status == domain.TaskStatusCompleted &&
		previousStatus != domain.TaskStatusCompleted {
		s.logger.Debug("dispatching completed notification",
			slog.String("task_id", task.ID.String()))
		s.notifier.SendCompleted(task)
	}

	return task, nil
}

// Remove soft-deletes a task after enforcing ownership. The row stays
// addressable by id for audit; listings and statistics stop seeing it.
func (s *TaskService) Remove(ctx context.Context, id uuid.UUID, requester domain.Requester) error {
	task, err := s.Get(ctx, id, requester)
	if err != nil {
		return err
	}

	if err := s.tasks.SoftDelete(ctx, id, s.timeFunc().UTC()); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.cache.InvalidateTask(ctx, id)
	s.invalidateForMutation(ctx, task.OwnerID)

	return nil
}

// Complete marks a task as COMPLETED. Sugar for Update with a status-only
// patch.
func (s *TaskService) Complete(ctx context.Context, id uuid.UUID, requester domain.Requester) (*domain.Task, error) {
	status := domain.TaskStatusCompleted
	return s.Update(ctx, id, requester, TaskPatch{Status: &status})
}

// BulkUpdate applies a patch to every task in ids that the requester owns.
// IDs of other users' tasks are silently narrowed away; if the owned
// subset is empty the operation fails with store.ErrTaskNotFound. Bulk
// operations deliberately bypass the per-item notification path to avoid
// notification storms. Returns the number of updated tasks.
func (s *TaskService) BulkUpdate(
	ctx context.Context,
	ids []uuid.UUID,
	requester domain.Requester,
	patch store.TaskPatch,
) (int, error) {
	owned, err := s.tasks.FilterOwnedIDs(ctx, ids, requester.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve owned tasks: %w", err)
	}
	if len(owned) == 0 {
		return 0, store.ErrTaskNotFound
	}

	updated, err := s.tasks.BulkApply(ctx, owned, patch, s.timeFunc().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update tasks: %w", err)
	}

	for _, id := range owned {
		s.cache.InvalidateTask(ctx, id)
	}
	s.invalidateForMutation(ctx, requester.ID)

	return updated, nil
}

// BulkDelete soft-deletes every task in ids that the requester owns, with
// the same ownership narrowing as BulkUpdate. Returns the number of
// deleted tasks.
func (s *TaskService) BulkDelete(
	ctx context.Context,
	ids []uuid.UUID,
	requester domain.Requester,
) (int, error) {
	owned, err := s.tasks.FilterOwnedIDs(ctx, ids, requester.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve owned tasks: %w", err)
	}
	if len(owned) == 0 {
		return 0, store.ErrTaskNotFound
	}

	deleted, err := s.tasks.BulkSoftDelete(ctx, owned, s.timeFunc().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete tasks: %w", err)
	}

	for _, id := range owned {
		s.cache.InvalidateTask(ctx, id)
	}
	s.invalidateForMutation(ctx, requester.ID)

	return deleted, nil
}
