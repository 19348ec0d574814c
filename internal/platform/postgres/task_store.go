package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// taskColumns is the column list every task query selects, in scanTask order.
const taskColumns = `id, title, description, status, priority, due_date,
	estimated_hours, actual_hours, tags, category_id, owner_id, assignee_id,
	parent_id, completed_at, archived_at, deleted_at, created_at, updated_at`

// sortColumns maps the sort allow-list to real column names. Anything not
// in this map never reaches the query text.
var sortColumns = map[store.TaskSortField]string{
	store.TaskSortCreatedAt: "created_at",
	store.TaskSortDueDate:   "due_date",
	store.TaskSortPriority:  "priority",
	store.TaskSortTitle:     "title",
	store.TaskSortStatus:    "status",
}

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a new TaskStore using the given database connection.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedHours,
		task.ActualHours,
		tags,
		task.CategoryID,
		task.OwnerID,
		task.AssigneeID,
		task.ParentID,
		task.CompletedAt,
		task.ArchivedAt,
		task.DeletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore. Soft-deleted tasks are returned so
// they stay addressable for audit.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
			due_date = $6, estimated_hours = $7, actual_hours = $8, tags = $9,
			category_id = $10, assignee_id = $11, parent_id = $12,
			completed_at = $13, archived_at = $14, deleted_at = $15,
			updated_at = $16
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedHours,
		task.ActualHours,
		tags,
		task.CategoryID,
		task.AssigneeID,
		task.ParentID,
		task.CompletedAt,
		task.ArchivedAt,
		task.DeletedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// SoftDelete implements store.TaskStore.
func (s *TaskStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE tasks
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// CountActive implements store.TaskStore.
func (s *TaskStore) CountActive(
	ctx context.Context,
	ownerID uuid.UUID,
	criteria store.TaskCriteria,
) (int, error) {
	where, args := criteriaWhere(ownerID, criteria)
	query := `SELECT COUNT(*) FROM tasks WHERE ` + where

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// ListActive implements store.TaskStore.
func (s *TaskStore) ListActive(
	ctx context.Context,
	ownerID uuid.UUID,
	criteria store.TaskCriteria,
	sort store.TaskSort,
	offset, limit int,
) ([]*domain.Task, int, error) {
	total, err := s.CountActive(ctx, ownerID, criteria)
	if err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if sort.Order == store.SortAsc {
		order = "ASC"
	}

	where, args := criteriaWhere(ownerID, criteria)
	query := fmt.Sprintf(
		`SELECT `+taskColumns+` FROM tasks WHERE %s ORDER BY %s %s, id %s OFFSET $%d LIMIT $%d`,
		where, column, order, order, len(args)+1, len(args)+2,
	)
	args = append(args, offset, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return tasks, total, nil
}

// FilterOwnedIDs implements store.TaskStore.
func (s *TaskStore) FilterOwnedIDs(
	ctx context.Context,
	ids []uuid.UUID,
	ownerID uuid.UUID,
) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id FROM tasks
		WHERE id = ANY($1) AND owner_id = $2 AND deleted_at IS NULL
	`

	rows, err := s.db.QueryContext(ctx, query, ids, ownerID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var owned []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		owned = append(owned, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return owned, nil
}

// BulkApply implements store.TaskStore.
func (s *TaskStore) BulkApply(
	ctx context.Context,
	ids []uuid.UUID,
	patch store.TaskPatch,
	at time.Time,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	sets := []string{"updated_at = $2"}
	args := []any{ids, at}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		appendSet("status", *patch.Status)
		// Transition stamps follow the same exactly-once rule as single
		// updates: only rows without a stamp get one.
		if *patch.Status == domain.TaskStatusCompleted {
			sets = append(sets, fmt.Sprintf("completed_at = COALESCE(completed_at, $%d)", len(args)+1))
			args = append(args, at)
		}
		if *patch.Status == domain.TaskStatusArchived {
			sets = append(sets, fmt.Sprintf("archived_at = COALESCE(archived_at, $%d)", len(args)+1))
			args = append(args, at)
		}
	}
	if patch.Priority != nil {
		appendSet("priority", *patch.Priority)
	}
	if patch.CategoryID != nil {
		appendSet("category_id", *patch.CategoryID)
	}
	if patch.DueDate != nil {
		appendSet("due_date", *patch.DueDate)
	}
	if patch.AssigneeID != nil {
		appendSet("assignee_id", *patch.AssigneeID)
	}

	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = ANY($1) AND deleted_at IS NULL`,
		strings.Join(sets, ", "),
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(affected), nil
}

// BulkSoftDelete implements store.TaskStore.
func (s *TaskStore) BulkSoftDelete(ctx context.Context, ids []uuid.UUID, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE tasks
		SET deleted_at = $2, updated_at = $2
		WHERE id = ANY($1) AND deleted_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, ids, at)
	if err != nil {
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(affected), nil
}

// CountStats implements store.TaskStore. A single scan with FILTER clauses
// keeps the aggregate read to one round trip.
func (s *TaskStore) CountStats(ctx context.Context, ownerID uuid.UUID) (store.TaskStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status IN ($2, $3) AND due_date < $5)
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL
	`

	var stats store.TaskStats
	err := s.db.QueryRowContext(ctx, query,
		ownerID,
		domain.TaskStatusPending,
		domain.TaskStatusInProgress,
		domain.TaskStatusCompleted,
		time.Now().UTC(),
	).Scan(&stats.Total, &stats.Pending, &stats.InProgress, &stats.Complete, &stats.Overdue)
	if err != nil {
		return store.TaskStats{}, MapError(err)
	}

	return stats, nil
}

// criteriaWhere translates a TaskCriteria into a WHERE clause and its
// arguments. The owner and active predicates are always present.
func criteriaWhere(ownerID uuid.UUID, c store.TaskCriteria) (string, []any) {
	clauses := []string{"owner_id = $1", "deleted_at IS NULL"}
	args := []any{ownerID}

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(c.Statuses) > 0 {
		statuses := make([]string, len(c.Statuses))
		for i, s := range c.Statuses {
			statuses[i] = string(s)
		}
		clauses = append(clauses, fmt.Sprintf("status = ANY(%s)", arg(statuses)))
	}

	if len(c.Priorities) > 0 {
		priorities := make([]string, len(c.Priorities))
		for i, p := range c.Priorities {
			priorities[i] = string(p)
		}
		clauses = append(clauses, fmt.Sprintf("priority = ANY(%s)", arg(priorities)))
	}

	if c.CategoryID != nil {
		clauses = append(clauses, fmt.Sprintf("category_id = %s", arg(*c.CategoryID)))
	}

	if c.Search != "" {
		pattern := arg("%" + c.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", pattern, pattern))
	}

	if len(c.Tags) > 0 {
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS tag WHERE tag = ANY(%s))",
			arg(c.Tags),
		))
	}

	if c.DueFrom != nil {
		clauses = append(clauses, fmt.Sprintf("due_date >= %s", arg(*c.DueFrom)))
	}

	if c.DueTo != nil {
		clauses = append(clauses, fmt.Sprintf("due_date <= %s", arg(*c.DueTo)))
	}

	if c.Overdue {
		now := c.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		clauses = append(clauses, fmt.Sprintf("due_date < %s", arg(now)))
		clauses = append(clauses, fmt.Sprintf(
			"status NOT IN (%s, %s)",
			arg(string(domain.TaskStatusCompleted)),
			arg(string(domain.TaskStatusArchived)),
		))
	}

	return strings.Join(clauses, " AND "), args
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task           domain.Task
		description    sql.NullString
		dueDate        sql.NullTime
		estimatedHours sql.NullFloat64
		actualHours    sql.NullFloat64
		tags           []byte
		categoryID     uuid.NullUUID
		assigneeID     uuid.NullUUID
		parentID       uuid.NullUUID
		completedAt    sql.NullTime
		archivedAt     sql.NullTime
		deletedAt      sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&estimatedHours,
		&actualHours,
		&tags,
		&categoryID,
		&task.OwnerID,
		&assigneeID,
		&parentID,
		&completedAt,
		&archivedAt,
		&deletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if estimatedHours.Valid {
		task.EstimatedHours = &estimatedHours.Float64
	}
	if actualHours.Valid {
		task.ActualHours = &actualHours.Float64
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if categoryID.Valid {
		task.CategoryID = &categoryID.UUID
	}
	if assigneeID.Valid {
		task.AssigneeID = &assigneeID.UUID
	}
	if parentID.Valid {
		task.ParentID = &parentID.UUID
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if archivedAt.Valid {
		task.ArchivedAt = &archivedAt.Time
	}
	if deletedAt.Valid {
		task.DeletedAt = &deletedAt.Time
	}

	return &task, nil
}
