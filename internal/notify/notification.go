// Package notify implements the best-effort notification dispatcher for
// task-lifecycle events. Notifications are an optional side channel of the
// mutation path: they are attempted once with a timeout and dropped on
// failure, never failing or stalling the request that triggered them.
package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// EventType classifies a task-lifecycle notification.
type EventType string

const (
	EventHighPriority EventType = "high_priority"
	EventDueSoon      EventType = "due_soon"
	EventOverdue      EventType = "overdue"
	EventCompleted    EventType = "completed"
	EventAssigned     EventType = "assigned"
)

// Routing keys published with each event type.
const (
	routingKeyHighPriority = "task.created.high_priority"
	routingKeyDueSoon      = "task.due_soon"
	routingKeyOverdue      = "task.overdue"
	routingKeyCompleted    = "task.completed"
	routingKeyAssigned     = "task.assigned"
)

// TaskSnapshot is the subset of a task carried in a notification.
type TaskSnapshot struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Priority   string     `json:"priority"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
}

// Notification is an ephemeral event record. It is not persisted; it exists
// only for the duration of a dispatch attempt.
type Notification struct {
	Type      EventType    `json:"type"`
	Task      TaskSnapshot `json:"task"`
	Timestamp time.Time    `json:"timestamp"`
}

// snapshotOf extracts the notification subset of a task.
func snapshotOf(task *domain.Task) TaskSnapshot {
	return TaskSnapshot{
		ID:       task.ID,
		Title:    task.Title,
		Priority: string(task.Priority),
		OwnerID:  task.OwnerID,
		DueDate:  task.DueDate,
	}
}
