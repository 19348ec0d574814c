package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// TaskSortField names a column tasks may be sorted by. The set is a fixed
// allow-list; anything else must be rejected before reaching the store.
type TaskSortField string

const (
	TaskSortCreatedAt TaskSortField = "createdAt"
	TaskSortDueDate   TaskSortField = "dueDate"
	TaskSortPriority  TaskSortField = "priority"
	TaskSortTitle     TaskSortField = "title"
	TaskSortStatus    TaskSortField = "status"
)

// IsValid reports whether the field is in the sort allow-list.
func (f TaskSortField) IsValid() bool {
	switch f {
	case TaskSortCreatedAt, TaskSortDueDate, TaskSortPriority, TaskSortTitle, TaskSortStatus:
		return true
	}
	return false
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// TaskSort describes how a task listing should be ordered.
type TaskSort struct {
	Field TaskSortField
	Order SortOrder
}

// TaskCriteria is a typed description of the filters a task listing may
// apply. Implementations translate it into their own query language; the
// service layer never builds SQL. The zero value matches all active tasks.
type TaskCriteria struct {
	// Statuses filters to tasks whose status is in the set.
	Statuses []domain.TaskStatus

	// Priorities filters to tasks whose priority is in the set.
	Priorities []domain.TaskPriority

	// CategoryID filters to tasks in the given category.
	CategoryID *uuid.UUID

	// Search matches a case-insensitive substring of title or description.
	Search string

	// Tags filters to tasks whose tag set overlaps the given set.
	Tags []string

	// DueFrom and DueTo bound the due date range (inclusive).
	DueFrom *time.Time
	DueTo   *time.Time

	// Overdue filters to tasks whose due date is before Now and whose
	// status is neither COMPLETED nor ARCHIVED.
	Overdue bool

	// Now is the reference time for the Overdue filter.
	// Implementations fall back to the current time when zero.
	Now time.Time
}

// TaskPatch carries the fields a bulk update may change. Nil fields are
// left untouched.
type TaskPatch struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	CategoryID *uuid.UUID
	DueDate    *time.Time
	AssigneeID *uuid.UUID
}

// TaskStats holds aggregate counts over a user's active tasks.
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Complete   int `json:"complete"`
	Overdue    int `json:"overdue"`
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors if the task data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Soft-deleted tasks are still returned so they stay addressable for
	// audit; callers decide how to treat them.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists the full state of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete marks a task as deleted at the given time without erasing
	// the row. Returns ErrTaskNotFound if the task does not exist or is
	// already deleted.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// CountActive returns the number of active (non-soft-deleted) tasks
	// owned by ownerID matching the criteria.
	CountActive(ctx context.Context, ownerID uuid.UUID, criteria TaskCriteria) (int, error)

	// ListActive returns a page of active tasks owned by ownerID matching
	// the criteria, sorted as requested, along with the total match count.
	ListActive(
		ctx context.Context,
		ownerID uuid.UUID,
		criteria TaskCriteria,
		sort TaskSort,
		offset, limit int,
	) ([]*domain.Task, int, error)

	// FilterOwnedIDs narrows ids to the subset that identify active tasks
	// owned by ownerID. IDs of other users' tasks are silently dropped.
	FilterOwnedIDs(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) ([]uuid.UUID, error)

	// BulkApply applies the patch to every task in ids and returns the
	// number of affected rows. Callers are responsible for narrowing ids
	// to owned tasks first.
	BulkApply(ctx context.Context, ids []uuid.UUID, patch TaskPatch, at time.Time) (int, error)

	// BulkSoftDelete marks every task in ids as deleted at the given time
	// and returns the number of affected rows.
	BulkSoftDelete(ctx context.Context, ids []uuid.UUID, at time.Time) (int, error)

	// CountStats returns aggregate counts over the owner's active tasks.
	CountStats(ctx context.Context, ownerID uuid.UUID) (TaskStats, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller, typically through store.RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
