// Package service contains the application services orchestrating stores,
// cache, and notifications.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/cache"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// Notifier is the slice of the notification dispatcher the task service
// needs. Every call is best-effort and non-blocking; a down notification
// channel never fails a mutation.
type Notifier interface {
	// ShouldNotifyHighPriority reports whether the priority warrants a
	// high_priority notification.
	ShouldNotifyHighPriority(priority domain.TaskPriority) bool

	// SendHighPriority dispatches a high_priority event.
	SendHighPriority(task *domain.Task)

	// SendCompleted dispatches a completed event.
	SendCompleted(task *domain.Task)
}

// TaskService serves task listings with cache-aside semantics and
// coordinates mutations: persist first, then invalidate caches, then
// dispatch notifications. The persistent store is the only component
// treated as a source of truth; cache and notification failures are
// absorbed.
type TaskService struct {
	tasks    store.TaskStore
	cache    *cache.Gateway
	notifier Notifier
	logger   *slog.Logger

	timeFunc func() time.Time // Injectable for testing
}

// NewTaskService creates a TaskService over the given collaborators.
func NewTaskService(
	tasks store.TaskStore,
	gateway *cache.Gateway,
	notifier Notifier,
	log *slog.Logger,
) *TaskService {
	if log == nil {
		log = slog.Default()
	}

	return &TaskService{
		tasks:    tasks,
		cache:    gateway,
		notifier: notifier,
		logger:   log.With(slog.String("component", "task_service")),
		timeFunc: time.Now,
	}
}

// invalidateForMutation removes the cache entries any mutation of the
// owner's tasks makes stale: every cached list query and the owner's
// aggregates. Entity keys are invalidated separately where a mutation
// touches specific tasks.
func (s *TaskService) invalidateForMutation(ctx context.Context, ownerID uuid.UUID) {
	s.cache.InvalidateUserTasks(ctx, ownerID)
	s.cache.InvalidateAnalytics(ctx, ownerID)
}
