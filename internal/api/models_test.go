package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

func TestParseTaskQuery(t *testing.T) {
	t.Parallel()

	categoryID := uuid.New()
	r := httptest.NewRequest("GET",
		"/api/tasks?page=3&limit=25&status=PENDING,IN_PROGRESS&priority=high"+
			"&search=report&tags=q3,urgent&categoryId="+categoryID.String()+
			"&dueFrom=2025-06-01T00:00:00Z&dueTo=2025-06-30T23:59:59Z"+
			"&overdue=true&sortBy=dueDate&sortOrder=asc",
		nil)

	q := parseTaskQuery(r)

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusInProgress}, q.Statuses)
	assert.Equal(t, []domain.TaskPriority{domain.TaskPriorityHigh}, q.Priorities)
	assert.Equal(t, "report", q.Search)
	assert.Equal(t, []string{"q3", "urgent"}, q.Tags)
	require.NotNil(t, q.CategoryID)
	assert.Equal(t, categoryID, *q.CategoryID)
	require.NotNil(t, q.DueFrom)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), q.DueFrom.UTC())
	require.NotNil(t, q.DueTo)
	assert.True(t, q.Overdue)
	assert.Equal(t, store.TaskSortDueDate, q.SortBy)
	assert.Equal(t, store.SortAsc, q.SortOrder)
}

func TestParseTaskQueryIgnoresMalformedValues(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET",
		"/api/tasks?page=abc&limit=-&categoryId=not-a-uuid&dueFrom=tomorrow&overdue=maybe",
		nil)

	q := parseTaskQuery(r)

	// Malformed parameters fall back to zero values; the service applies
	// defaults during normalization.
	assert.Zero(t, q.Page)
	assert.Zero(t, q.Limit)
	assert.Nil(t, q.CategoryID)
	assert.Nil(t, q.DueFrom)
	assert.False(t, q.Overdue)
}

func TestUpdateTaskRequestToPatch(t *testing.T) {
	t.Parallel()

	title := "Renamed"
	status := "COMPLETED"
	tags := []string{"done"}
	parentID := uuid.New()

	patch := UpdateTaskRequest{
		Title:    &title,
		Status:   &status,
		Tags:     &tags,
		ParentID: &parentID,
	}.toPatch()

	require.NotNil(t, patch.Title)
	assert.Equal(t, "Renamed", *patch.Title)
	require.NotNil(t, patch.Status)
	assert.Equal(t, domain.TaskStatusCompleted, *patch.Status)
	require.NotNil(t, patch.Tags)
	assert.Equal(t, []string{"done"}, *patch.Tags)
	require.NotNil(t, patch.ParentID)
	assert.Equal(t, parentID, *patch.ParentID)
	assert.Nil(t, patch.Description)
	assert.Nil(t, patch.Priority)
}

func TestBulkUpdateRequestToPatch(t *testing.T) {
	t.Parallel()

	status := "ARCHIVED"
	priority := "LOW"

	patch := BulkUpdateRequest{
		TaskIDs:  []uuid.UUID{uuid.New()},
		Status:   &status,
		Priority: &priority,
	}.toPatch()

	require.NotNil(t, patch.Status)
	assert.Equal(t, domain.TaskStatusArchived, *patch.Status)
	require.NotNil(t, patch.Priority)
	assert.Equal(t, domain.TaskPriorityLow, *patch.Priority)
	assert.Nil(t, patch.DueDate)
	assert.Nil(t, patch.CategoryID)
}
