package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
)

// TTL tiers for the cache namespaces.
const (
	// ListTTL bounds staleness of cached list queries.
	ListTTL = 5 * time.Minute

	// EntityTTL bounds staleness of cached single-entity reads.
	EntityTTL = 10 * time.Minute

	// AnalyticsTTL bounds staleness of cached aggregate reads.
	AnalyticsTTL = 15 * time.Minute
)

// Gateway namespaces keys and provides typed access to the cache backend.
// Backend failures are absorbed: a failed read behaves as a miss and a
// failed write or invalidation is logged and dropped, so a degraded cache
// never fails a request.
type Gateway struct {
	store  Store
	logger *slog.Logger
}

// NewGateway creates a Gateway over the given store. A nil store yields a
// disabled gateway: every read misses and every write is dropped.
func NewGateway(store Store, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		store:  store,
		logger: log.With(slog.String("component", "cache_gateway")),
	}
}

// TasksKey builds the cache key for a task listing: the owner plus a
// canonical fingerprint of the filter, so semantically identical filters
// always share a key.
func TasksKey(ownerID uuid.UUID, filter any) string {
	return fmt.Sprintf("tasks:user:%s:%s", ownerID, Fingerprint(filter))
}

// TasksPrefix is the prefix under which all of the owner's list-query keys
// live; invalidation sweeps it because filter fingerprints are unbounded.
func TasksPrefix(ownerID uuid.UUID) string {
	return fmt.Sprintf("tasks:user:%s:", ownerID)
}

// TaskKey builds the cache key for a single task entity.
func TaskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id)
}

// AnalyticsKey builds the cache key for an aggregate metric of a user.
func AnalyticsKey(metric string, ownerID uuid.UUID) string {
	return fmt.Sprintf("analytics:%s:%s", metric, ownerID)
}

// StatsMetric is the aggregate namespace for task statistics.
const StatsMetric = "stats"

// analyticsMetrics lists every cached aggregate namespace. The owner sits
// at the end of analytics keys, so per-user invalidation enumerates the
// metrics instead of sweeping a prefix.
var analyticsMetrics = []string{StatsMetric}

// Fingerprint derives a canonical string from a filter shape. The value is
// marshalled to JSON, decoded into generic maps, and re-marshalled;
// encoding/json serializes map keys in sorted order, so two filters with
// identical field values always produce the same fingerprint regardless of
// how they were constructed.
func Fingerprint(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}

	return string(canonical)
}

// GetJSON reads key and unmarshals the cached value into dest.
// Returns true only on a hit with a decodable value. Backend errors and
// corrupt entries are logged and reported as misses.
func (g *Gateway) GetJSON(ctx context.Context, key string, dest any) bool {
	if g.store == nil {
		return false
	}

	log := logger.FromContextOrDefault(ctx, g.logger)

	value, found, err := g.store.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}
	if !found {
		return false
	}

	if err := json.Unmarshal(value, dest); err != nil {
		log.Warn("cache entry not decodable, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}

	return true
}

// SetJSON marshals v and stores it under key with the given TTL.
// Failures are logged and dropped.
func (g *Gateway) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if g.store == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, g.logger)

	value, err := json.Marshal(v)
	if err != nil {
		log.Warn("failed to marshal value for cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}

	if err := g.store.Set(ctx, key, value, ttl); err != nil {
		log.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// Invalidate removes a single key. Idempotent; failures are logged and dropped.
func (g *Gateway) Invalidate(ctx context.Context, key string) {
	if g.store == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, g.logger)

	if err := g.store.Delete(ctx, key); err != nil {
		log.Warn("cache invalidation failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// InvalidateByPrefix removes every key starting with prefix.
// Failures are logged and dropped.
func (g *Gateway) InvalidateByPrefix(ctx context.Context, prefix string) {
	if g.store == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, g.logger)

	if err := g.store.DeleteByPrefix(ctx, prefix); err != nil {
		log.Warn("cache prefix invalidation failed",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()))
	}
}

// InvalidateUserTasks removes all of the owner's cached list queries.
func (g *Gateway) InvalidateUserTasks(ctx context.Context, ownerID uuid.UUID) {
	g.InvalidateByPrefix(ctx, TasksPrefix(ownerID))
}

// InvalidateTask removes a single task's entity cache entry.
func (g *Gateway) InvalidateTask(ctx context.Context, id uuid.UUID) {
	g.Invalidate(ctx, TaskKey(id))
}

// InvalidateAnalytics removes every cached aggregate of the owner.
func (g *Gateway) InvalidateAnalytics(ctx context.Context, ownerID uuid.UUID) {
	for _, metric := range analyticsMetrics {
		g.Invalidate(ctx, AnalyticsKey(metric, ownerID))
	}
}
