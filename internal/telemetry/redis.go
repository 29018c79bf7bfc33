package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/redis/go-redis/v9"
)

// RedisSink stores counters in a hash and the newest events in a capped list.
type RedisSink struct {
	client    *redis.Client
	prefix    string
	maxEvents int64
}

// NewRedisSink connects to redisURL and verifies the connection.
func NewRedisSink(ctx context.Context, redisURL, prefix string, maxEvents int) (*RedisSink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSinkFromClient(client, prefix, maxEvents), nil
}

func NewRedisSinkFromClient(client *redis.Client, prefix string, maxEvents int) *RedisSink {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &RedisSink{client: client, prefix: prefix, maxEvents: int64(maxEvents)}
}

func (s *RedisSink) countersKey() string { return s.prefix + ":counters" }
func (s *RedisSink) eventsKey() string   { return s.prefix + ":events" }

func (s *RedisSink) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := sonic.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to encode telemetry event")
		return
	}

	pipe := s.client.TxPipeline()
	for _, key := range counterKeys(event) {
		pipe.HIncrBy(ctx, s.countersKey(), key, 1)
	}
	pipe.LPush(ctx, s.eventsKey(), data)
	pipe.LTrim(ctx, s.eventsKey(), 0, s.maxEvents-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to write telemetry to redis")
	}
}

func (s *RedisSink) Metrics(ctx context.Context) (Metrics, error) {
	raw, err := s.client.HGetAll(ctx, s.countersKey()).Result()
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to read telemetry counters: %w", err)
	}
	counters := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counters[k] = n
	}

	total, err := s.client.LLen(ctx, s.eventsKey()).Result()
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to count telemetry events: %w", err)
	}

	items, err := s.client.LRange(ctx, s.eventsKey(), 0, recentEventCount-1).Result()
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to read telemetry events: %w", err)
	}
	// The list is newest first; report oldest first.
	recent := make([]Event, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		var event Event
		if err := sonic.UnmarshalString(items[i], &event); err != nil {
			continue
		}
		recent = append(recent, event)
	}

	return Metrics{Counters: counters, RecentEvents: recent, RetainedEvents: total}, nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
