package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

func TestCriteriaWhereAlwaysScopesOwnerAndActive(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	where, args := criteriaWhere(ownerID, store.TaskCriteria{})

	assert.Equal(t, "owner_id = $1 AND deleted_at IS NULL", where)
	require.Len(t, args, 1)
	assert.Equal(t, ownerID, args[0])
}

func TestCriteriaWhereStatusAndPriority(t *testing.T) {
	t.Parallel()

	where, args := criteriaWhere(uuid.New(), store.TaskCriteria{
		Statuses:   []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusInProgress},
		Priorities: []domain.TaskPriority{domain.TaskPriorityHigh},
	})

	assert.Contains(t, where, "status = ANY($2)")
	assert.Contains(t, where, "priority = ANY($3)")
	require.Len(t, args, 3)
	assert.Equal(t, []string{"PENDING", "IN_PROGRESS"}, args[1])
	assert.Equal(t, []string{"HIGH"}, args[2])
}

func TestCriteriaWhereSearchReusesOneArgument(t *testing.T) {
	t.Parallel()

	where, args := criteriaWhere(uuid.New(), store.TaskCriteria{Search: "report"})

	assert.Contains(t, where, "(title ILIKE $2 OR description ILIKE $2)")
	require.Len(t, args, 2)
	assert.Equal(t, "%report%", args[1])
}

func TestCriteriaWhereTags(t *testing.T) {
	t.Parallel()

	where, args := criteriaWhere(uuid.New(), store.TaskCriteria{Tags: []string{"urgent", "q3"}})

	assert.Contains(t, where, "jsonb_array_elements_text(tags)")
	assert.Contains(t, where, "tag = ANY($2)")
	require.Len(t, args, 2)
	assert.Equal(t, []string{"urgent", "q3"}, args[1])
}

func TestCriteriaWhereDueDateRange(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	where, args := criteriaWhere(uuid.New(), store.TaskCriteria{DueFrom: &from, DueTo: &to})

	assert.Contains(t, where, "due_date >= $2")
	assert.Contains(t, where, "due_date <= $3")
	require.Len(t, args, 3)
	assert.Equal(t, from, args[1])
	assert.Equal(t, to, args[2])
}

func TestCriteriaWhereOverdueExcludesTerminalStatuses(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	where, args := criteriaWhere(uuid.New(), store.TaskCriteria{Overdue: true, Now: now})

	assert.Contains(t, where, "due_date < $2")
	assert.Contains(t, where, "status NOT IN ($3, $4)")
	require.Len(t, args, 4)
	assert.Equal(t, now, args[1])
	assert.Equal(t, "COMPLETED", args[2])
	assert.Equal(t, "ARCHIVED", args[3])
}

func TestCriteriaWhereCombinesAllFilters(t *testing.T) {
	t.Parallel()

	categoryID := uuid.New()
	where, args := criteriaWhere(uuid.New(), store.TaskCriteria{
		Statuses:   []domain.TaskStatus{domain.TaskStatusPending},
		CategoryID: &categoryID,
		Search:     "report",
		Tags:       []string{"q3"},
	})

	// Each clause binds its own placeholder; numbering never collides.
	assert.Contains(t, where, "status = ANY($2)")
	assert.Contains(t, where, "category_id = $3")
	assert.Contains(t, where, "ILIKE $4")
	assert.Contains(t, where, "tag = ANY($5)")
	assert.Len(t, args, 5)
}

func TestSortColumnsCoverAllowList(t *testing.T) {
	t.Parallel()

	for _, field := range []store.TaskSortField{
		store.TaskSortCreatedAt,
		store.TaskSortDueDate,
		store.TaskSortPriority,
		store.TaskSortTitle,
		store.TaskSortStatus,
	} {
		_, ok := sortColumns[field]
		assert.True(t, ok, "missing column mapping for %s", field)
	}

	_, ok := sortColumns[store.TaskSortField("owner_id; DROP TABLE tasks")]
	assert.False(t, ok)
}
