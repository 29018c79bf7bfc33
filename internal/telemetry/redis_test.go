package telemetry

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisSink(t *testing.T, maxEvents int) (*RedisSink, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	sink, err := NewRedisSink(context.Background(), "redis://"+mr.Addr(), "test:telemetry", maxEvents)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink, mr
}

func TestRedisSinkRecordsAndReads(t *testing.T) {
	sink, _ := newRedisSink(t, 3)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		sink.Record(ctx, Event{Type: EventAPIRequest, Path: "/health", Status: 200 + i})
	}
	sink.Record(ctx, Event{Type: EventHandoff, GuestID: "G1", Metadata: map[string]any{"reason": "complex_request"}})

	m, err := sink.Metrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), m.Counters["total_events"])
	assert.Equal(t, int64(4), m.Counters["status_2xx"])
	assert.Equal(t, int64(1), m.Counters["event_human_handoff"])
	assert.Equal(t, int64(3), m.RetainedEvents)
	require.Len(t, m.RecentEvents, 3)
	assert.Equal(t, 202, m.RecentEvents[0].Status)
	assert.Equal(t, EventHandoff, m.RecentEvents[2].Type)
	assert.Equal(t, "complex_request", m.RecentEvents[2].Metadata["reason"])
}

func TestRedisSinkUsesPrefix(t *testing.T) {
	sink, mr := newRedisSink(t, 10)

	sink.Record(context.Background(), Event{Type: EventMessageProcessed})

	assert.True(t, mr.Exists("test:telemetry:counters"))
	assert.True(t, mr.Exists("test:telemetry:events"))
}

func TestNewRedisSinkFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisSink(context.Background(), "redis://"+addr, "p", 10)
	assert.Error(t, err)

	_, err = NewRedisSink(context.Background(), "::not a url", "p", 10)
	assert.Error(t, err)
}

func TestRedisSinkSwallowsWriteErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sink := NewRedisSinkFromClient(client, "p", 10)
	mr.Close()

	assert.NotPanics(t, func() {
		sink.Record(context.Background(), Event{Type: EventAPIRequest})
	})
	_, err := sink.Metrics(context.Background())
	assert.Error(t, err)
}
