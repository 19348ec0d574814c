package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/cache"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// Pagination bounds and defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TaskQuery describes a task listing request. Its JSON form is the input
// to the cache-key fingerprint, so field tags use omitempty: an unset
// filter and an absent one produce the same key.
type TaskQuery struct {
	Page       int                   `json:"page,omitempty"`
	Limit      int                   `json:"limit,omitempty"`
	Statuses   []domain.TaskStatus   `json:"status,omitempty"`
	Priorities []domain.TaskPriority `json:"priority,omitempty"`
	CategoryID *uuid.UUID            `json:"category_id,omitempty"`
	Search     string                `json:"search,omitempty"`
	Tags       []string              `json:"tags,omitempty"`
	DueFrom    *time.Time            `json:"due_from,omitempty"`
	DueTo      *time.Time            `json:"due_to,omitempty"`
	Overdue    bool                  `json:"overdue,omitempty"`
	SortBy     store.TaskSortField   `json:"sort_by,omitempty"`
	SortOrder  store.SortOrder       `json:"sort_order,omitempty"`
}

// normalized returns a copy with defaults applied and limits clamped.
// Cache keys are built from the normalized form, so an explicit page=1
// and an omitted page share an entry.
func (q TaskQuery) normalized() TaskQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if !q.SortBy.IsValid() {
		q.SortBy = store.TaskSortCreatedAt
	}
	if q.SortOrder != store.SortAsc && q.SortOrder != store.SortDesc {
		q.SortOrder = store.SortDesc
	}
	return q
}

// criteria translates the query's filter fields into store criteria.
func (q TaskQuery) criteria(now time.Time) store.TaskCriteria {
	return store.TaskCriteria{
		Statuses:   q.Statuses,
		Priorities: q.Priorities,
		CategoryID: q.CategoryID,
		Search:     q.Search,
		Tags:       q.Tags,
		DueFrom:    q.DueFrom,
		DueTo:      q.DueTo,
		Overdue:    q.Overdue,
		Now:        now,
	}
}

// PageMeta is the pagination metadata returned with every listing.
type PageMeta struct {
	Total           int  `json:"total"`
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items []*domain.Task `json:"items"`
	Meta  PageMeta       `json:"meta"`
}

// TaskStats is the aggregate view of a user's active tasks.
type TaskStats struct {
	store.TaskStats
	CompletionRate int `json:"completion_rate"`
	OverdueRate    int `json:"overdue_rate"`
}

// List returns a filtered, sorted page of the owner's active tasks.
// The result is served from cache when a fresh entry exists; staleness is
// bounded by the list TTL. On a miss the store is queried and the page is
// written back to the cache before returning.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, query TaskQuery) (*TaskPage, error) {
	query = query.normalized()
	key := cache.TasksKey(ownerID, query)

	var cached TaskPage
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	now := s.timeFunc().UTC()
	tasks, total, err := s.tasks.ListActive(
		ctx,
		ownerID,
		query.criteria(now),
		store.TaskSort{Field: query.SortBy, Order: query.SortOrder},
		(query.Page-1)*query.Limit,
		query.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}

	page := &TaskPage{
		Items: tasks,
		Meta: PageMeta{
			Total:           total,
			Page:            query.Page,
			Limit:           query.Limit,
			TotalPages:      int(math.Ceil(float64(total) / float64(query.Limit))),
			HasNextPage:     query.Page*query.Limit < total,
			HasPreviousPage: query.Page > 1,
		},
	}

	s.cache.SetJSON(ctx, key, page, cache.ListTTL)

	return page, nil
}

// Get returns a single task by id. Served cache-aside under the entity
// namespace; the ownership check runs on every path, including cache hits,
// so cached data never bypasses authorization.
// Returns store.ErrTaskNotFound or domain.ErrForbidden.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID, requester domain.Requester) (*domain.Task, error) {
	key := cache.TaskKey(id)

	var cached domain.Task
	if s.cache.GetJSON(ctx, key, &cached) {
		if !requester.CanAccess(cached.OwnerID) {
			return nil, domain.ErrForbidden
		}
		return &cached, nil
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !requester.CanAccess(task.OwnerID) {
		return nil, domain.ErrForbidden
	}

	s.cache.SetJSON(ctx, key, task, cache.EntityTTL)

	return task, nil
}

// Stats returns aggregate counts over the owner's active tasks, cached
// under the analytics namespace.
func (s *TaskService) Stats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error) {
	key := cache.AnalyticsKey(cache.StatsMetric, ownerID)

	var cached TaskStats
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	counts, err := s.tasks.CountStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count task stats: %w", err)
	}

	stats := &TaskStats{TaskStats: counts}
	if counts.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(counts.Complete) / float64(counts.Total) * 100))
		stats.OverdueRate = int(math.Round(float64(counts.Overdue) / float64(counts.Total) * 100))
	}

	s.cache.SetJSON(ctx, key, stats, cache.AnalyticsTTL)

	s.logger.Debug("computed task stats",
		slog.String("owner_id", ownerID.String()),
		slog.Int("total", counts.Total))

	return stats, nil
}
