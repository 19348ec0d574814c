package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// Dispatcher publishes task-lifecycle events through a Channel. It starts
// Disconnected and becomes Connected after a successful handshake; if the
// bounded reconnect attempts are exhausted it stays Disconnected for the
// process lifetime and every send becomes a logged no-op.
//
// Publishes are detached: each runs in its own goroutine with its own
// timeout, and failures never reach the caller.
type Dispatcher struct {
	channel Channel
	logger  *slog.Logger

	timeout         time.Duration
	connectAttempts int
	connectBackoff  time.Duration

	connected atomic.Bool
	inflight  sync.WaitGroup
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPublishTimeout overrides the per-publish timeout (default 5s).
func WithPublishTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// WithConnectAttempts overrides the number of startup connect attempts
// (default 5).
func WithConnectAttempts(n int) DispatcherOption {
	return func(disp *Dispatcher) { disp.connectAttempts = n }
}

// WithConnectBackoff overrides the initial backoff between connect
// attempts (default 1s, doubling per attempt).
func WithConnectBackoff(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.connectBackoff = d }
}

// NewDispatcher creates a Dispatcher over the given channel.
// The dispatcher is Disconnected until Start succeeds.
func NewDispatcher(channel Channel, log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		channel:         channel,
		logger:          log.With(slog.String("component", "notification_dispatcher")),
		timeout:         5 * time.Second,
		connectAttempts: 5,
		connectBackoff:  time.Second,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start performs the startup handshake with bounded retry and exponential
// backoff. It blocks until the handshake succeeds, the attempts are
// exhausted, or the context is cancelled. A failed Start is not an error
// for the process: the dispatcher simply stays Disconnected and requests
// proceed without notifications.
func (d *Dispatcher) Start(ctx context.Context) {
	backoff := d.connectBackoff
	for attempt := 1; attempt <= d.connectAttempts; attempt++ {
		if err := d.channel.Connect(ctx); err == nil {
			d.connected.Store(true)
			d.logger.Info("notification channel connected",
				slog.Int("attempt", attempt))
			return
		} else {
			d.logger.Warn("notification channel connect failed",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", d.connectAttempts),
				slog.String("error", err.Error()))
		}

		if attempt == d.connectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			d.logger.Warn("notification channel connect cancelled",
				slog.String("error", ctx.Err().Error()))
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	d.logger.Warn("notification channel unavailable, notifications disabled")
}

// Close waits for in-flight publishes and tears down the channel.
func (d *Dispatcher) Close() error {
	d.connected.Store(false)
	d.inflight.Wait()
	return d.channel.Close()
}

// Flush waits for all in-flight publish attempts to resolve.
func (d *Dispatcher) Flush() {
	d.inflight.Wait()
}

// Connected reports whether the dispatcher holds a live channel.
func (d *Dispatcher) Connected() bool {
	return d.connected.Load()
}

// ShouldNotifyHighPriority reports whether a task of the given priority
// warrants a high-priority notification.
func (d *Dispatcher) ShouldNotifyHighPriority(priority domain.TaskPriority) bool {
	return priority == domain.TaskPriorityHigh || priority == domain.TaskPriorityUrgent
}

// SendHighPriority dispatches a high_priority event for a newly created task.
func (d *Dispatcher) SendHighPriority(task *domain.Task) {
	d.emit(routingKeyHighPriority, Notification{
		Type:      EventHighPriority,
		Task:      snapshotOf(task),
		Timestamp: time.Now().UTC(),
	})
}

// SendDueSoon dispatches a due_soon event for a task approaching its due
// date. No request path emits this event; it belongs to a periodic due-date
// scanner, which consumes the same dispatcher.
func (d *Dispatcher) SendDueSoon(task *domain.Task) {
	d.emit(routingKeyDueSoon, Notification{
		Type:      EventDueSoon,
		Task:      snapshotOf(task),
		Timestamp: time.Now().UTC(),
	})
}

// SendOverdue dispatches an overdue event for a task past its due date.
// Like SendDueSoon, it is emitted by the due-date scanner, not by request
// handlers.
func (d *Dispatcher) SendOverdue(task *domain.Task) {
	d.emit(routingKeyOverdue, Notification{
		Type:      EventOverdue,
		Task:      snapshotOf(task),
		Timestamp: time.Now().UTC(),
	})
}

// SendCompleted dispatches a completed event for a task that transitioned
// into COMPLETED.
func (d *Dispatcher) SendCompleted(task *domain.Task) {
	snapshot := snapshotOf(task)
	snapshot.DueDate = nil
	d.emit(routingKeyCompleted, Notification{
		Type:      EventCompleted,
		Task:      snapshot,
		Timestamp: time.Now().UTC(),
	})
}

// SendAssigned dispatches an assigned event for a task assigned to a user.
func (d *Dispatcher) SendAssigned(task *domain.Task, assigneeID uuid.UUID) {
	snapshot := snapshotOf(task)
	snapshot.DueDate = nil
	snapshot.AssigneeID = &assigneeID
	d.emit(routingKeyAssigned, Notification{
		Type:      EventAssigned,
		Task:      snapshot,
		Timestamp: time.Now().UTC(),
	})
}

// emit attempts delivery of a notification. When Disconnected it logs and
// returns without attempting a publish. When Connected it publishes in a
// detached goroutine bounded by the configured timeout; errors are logged
// and swallowed.
func (d *Dispatcher) emit(routingKey string, notification Notification) {
	if !d.connected.Load() {
		d.logger.Warn("notification channel not connected, skipping notification",
			slog.String("routing_key", routingKey),
			slog.String("task_id", notification.Task.ID.String()))
		return
	}

	body, err := json.Marshal(notification)
	if err != nil {
		d.logger.Error("failed to marshal notification",
			slog.String("routing_key", routingKey),
			slog.String("error", err.Error()))
		return
	}

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.channel.Publish(ctx, routingKey, body); err != nil {
			d.logger.Error("failed to publish notification",
				slog.String("routing_key", routingKey),
				slog.String("task_id", notification.Task.ID.String()),
				slog.String("error", err.Error()))
			return
		}

		d.logger.Debug("notification sent",
			slog.String("routing_key", routingKey),
			slog.String("task_id", notification.Task.ID.String()))
	}()
}
