package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskOwnerIDEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskOwnerIDEmpty = errors.New("task owner ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrInvalidTaskStatus is returned when a task status is not one of the
	// known status values.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority is returned when a task priority is not one of
	// the known priority values.
	ErrInvalidTaskPriority = errors.New("invalid task priority")
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusArchived   TaskStatus = "ARCHIVED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsValid reports whether the status is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusInReview,
		TaskStatusCompleted, TaskStatusArchived, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// IsValid reports whether the priority is one of the known task priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task represents a single unit of work owned by a user. Tasks are never
// hard-deleted; DeletedAt marks a task as removed while keeping the row
// addressable for audit.
type Task struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty"`
	ActualHours    *float64     `json:"actual_hours,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	CategoryID     *uuid.UUID   `json:"category_id,omitempty"`
	OwnerID        uuid.UUID    `json:"owner_id"`
	AssigneeID     *uuid.UUID   `json:"assignee_id,omitempty"`
	ParentID       *uuid.UUID   `json:"parent_id,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	ArchivedAt     *time.Time   `json:"archived_at,omitempty"`
	DeletedAt      *time.Time   `json:"deleted_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewTask creates a new Task owned by ownerID with default status PENDING
// and priority MEDIUM. Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    TaskStatusPending,
		Priority:  TaskPriorityMedium,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	if !t.Priority.IsValid() {
		return ErrInvalidTaskPriority
	}

	return nil
}

// SetStatus transitions the task to the given status, stamping CompletedAt
// on the first transition into COMPLETED and ArchivedAt on the first
// transition into ARCHIVED. Repeating a transition never re-stamps the
// timestamp. Returns an error if the status is unknown.
func (t *Task) SetStatus(status TaskStatus, now time.Time) error {
	if !status.IsValid() {
		return ErrInvalidTaskStatus
	}

	if status == TaskStatusCompleted && t.Status != TaskStatusCompleted && t.CompletedAt == nil {
		at := now
		t.CompletedAt = &at
	}

	if status == TaskStatusArchived && t.Status != TaskStatusArchived && t.ArchivedAt == nil {
		at := now
		t.ArchivedAt = &at
	}

	t.Status = status
	t.UpdatedAt = now
	return nil
}

// SoftDelete marks the task as deleted without erasing it.
// Deleting an already-deleted task keeps the original deletion time.
func (t *Task) SoftDelete(now time.Time) {
	if t.DeletedAt == nil {
		at := now
		t.DeletedAt = &at
	}
	t.UpdatedAt = now
}

// IsDeleted reports whether the task has been soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsOverdue reports whether the task is past its due date and not in a
// terminal status.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusArchived {
		return false
	}
	return t.DueDate.Before(now)
}
