package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory Store for testing the gateway without Redis.
type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *memoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	for key := range s.data {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.data, key)
		}
	}
	return nil
}

// failingStore returns an error from every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func (failingStore) DeleteByPrefix(context.Context, string) error {
	return errors.New("connection refused")
}

func TestFingerprintIsDeterministic(t *testing.T) {
	t.Parallel()

	type filter struct {
		Page   int      `json:"page,omitempty"`
		Status []string `json:"status,omitempty"`
		Search string   `json:"search,omitempty"`
	}

	a := Fingerprint(filter{Page: 1, Status: []string{"PENDING"}, Search: "report"})
	b := Fingerprint(filter{Search: "report", Page: 1, Status: []string{"PENDING"}})
	assert.Equal(t, a, b)

	// Maps with identical content fingerprint identically regardless of
	// insertion order.
	m1 := map[string]any{"page": 1, "search": "report"}
	m2 := map[string]any{"search": "report", "page": 1}
	assert.Equal(t, Fingerprint(m1), Fingerprint(m2))

	// Different values produce different fingerprints.
	c := Fingerprint(filter{Page: 2, Status: []string{"PENDING"}, Search: "report"})
	assert.NotEqual(t, a, c)
}

func TestFingerprintOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	type filter struct {
		Page   int    `json:"page,omitempty"`
		Search string `json:"search,omitempty"`
	}

	// An omitted field and a zero field are the same filter.
	assert.Equal(t, Fingerprint(filter{Page: 1}), Fingerprint(filter{Page: 1, Search: ""}))
}

func TestKeyNamespaces(t *testing.T) {
	t.Parallel()

	ownerID := uuid.MustParse("2b8ba460-45bb-4e44-8c43-5c1c029b9d0f")
	taskID := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

	assert.Contains(t, TasksKey(ownerID, map[string]int{"page": 1}), "tasks:user:"+ownerID.String()+":")
	assert.Equal(t, "tasks:user:"+ownerID.String()+":", TasksPrefix(ownerID))
	assert.Equal(t, "task:"+taskID.String(), TaskKey(taskID))
	assert.Equal(t, "analytics:stats:"+ownerID.String(), AnalyticsKey(StatsMetric, ownerID))
}

func TestInvalidateAnalyticsClearsEveryMetricOfOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	gateway := NewGateway(store, nil)
	ownerID := uuid.New()
	otherID := uuid.New()

	for _, metric := range analyticsMetrics {
		gateway.SetJSON(ctx, AnalyticsKey(metric, ownerID), 1, AnalyticsTTL)
		gateway.SetJSON(ctx, AnalyticsKey(metric, otherID), 2, AnalyticsTTL)
	}

	gateway.InvalidateAnalytics(ctx, ownerID)

	var got int
	for _, metric := range analyticsMetrics {
		assert.False(t, gateway.GetJSON(ctx, AnalyticsKey(metric, ownerID), &got))
		assert.True(t, gateway.GetJSON(ctx, AnalyticsKey(metric, otherID), &got))
	}
}

func TestGatewayRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gateway := NewGateway(newMemoryStore(), nil)

	type payload struct {
		Total int `json:"total"`
	}

	gateway.SetJSON(ctx, "analytics:stats:x", payload{Total: 7}, AnalyticsTTL)

	var got payload
	require.True(t, gateway.GetJSON(ctx, "analytics:stats:x", &got))
	assert.Equal(t, 7, got.Total)

	gateway.Invalidate(ctx, "analytics:stats:x")
	assert.False(t, gateway.GetJSON(ctx, "analytics:stats:x", &got))
}

func TestGatewayPrefixInvalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	gateway := NewGateway(store, nil)
	ownerID := uuid.New()

	gateway.SetJSON(ctx, TasksKey(ownerID, map[string]int{"page": 1}), 1, ListTTL)
	gateway.SetJSON(ctx, TasksKey(ownerID, map[string]int{"page": 2}), 2, ListTTL)
	gateway.SetJSON(ctx, TaskKey(uuid.New()), 3, EntityTTL)

	gateway.InvalidateUserTasks(ctx, ownerID)

	var got int
	assert.False(t, gateway.GetJSON(ctx, TasksKey(ownerID, map[string]int{"page": 1}), &got))
	assert.False(t, gateway.GetJSON(ctx, TasksKey(ownerID, map[string]int{"page": 2}), &got))
	// Entity keys live in a different namespace and survive the sweep.
	assert.Equal(t, 1, len(store.data))
}

func TestGatewayFailsOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gateway := NewGateway(failingStore{}, nil)

	// Reads behave as misses, writes and invalidations are dropped; nothing
	// panics or surfaces an error.
	var got int
	assert.False(t, gateway.GetJSON(ctx, "task:x", &got))
	gateway.SetJSON(ctx, "task:x", 1, EntityTTL)
	gateway.Invalidate(ctx, "task:x")
	gateway.InvalidateByPrefix(ctx, "tasks:user:")
}

func TestGatewayCorruptEntryIsAMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.data["task:x"] = []byte("{not json")
	gateway := NewGateway(store, nil)

	var got struct{ ID string }
	assert.False(t, gateway.GetJSON(ctx, "task:x", &got))
}

func TestGatewayNilStoreIsDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gateway := NewGateway(nil, nil)

	var got int
	assert.False(t, gateway.GetJSON(ctx, "task:x", &got))
	gateway.SetJSON(ctx, "task:x", 1, EntityTTL)
	gateway.Invalidate(ctx, "task:x")
	gateway.InvalidateUserTasks(ctx, uuid.New())
}
