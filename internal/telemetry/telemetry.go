package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const recentEventCount = 10

// Event types emitted by the service.
const (
	EventMessageProcessed = "message_processed"
	EventMediaProcessed   = "media_processed"
	EventHandoff          = "human_handoff"
	EventAPIRequest       = "api_request"
)

// Event is one telemetry record.
type Event struct {
	Type      string         `json:"event_type"`
	Path      string         `json:"path,omitempty"`
	Method    string         `json:"method,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs float64        `json:"latency_ms,omitempty"`
	GuestID   string         `json:"guest_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Metrics summarizes what a sink has recorded. The total_events counter
// counts every event; RetainedEvents is bounded by the sink's capacity.
type Metrics struct {
	Counters       map[string]int64 `json:"counters"`
	RecentEvents   []Event          `json:"recent_events"`
	RetainedEvents int64            `json:"retained_events"`
}

// Sink records events. Record is fire-and-forget and must not fail callers.
type Sink interface {
	Record(ctx context.Context, event Event)
	Metrics(ctx context.Context) (Metrics, error)
}

// counterKeys lists the counters an event increments.
func counterKeys(event Event) []string {
	keys := []string{"event_" + event.Type, "total_events"}
	if event.Status > 0 {
		keys = append(keys, fmt.Sprintf("status_%dxx", event.Status/100))
	}
	return keys
}

// MemorySink keeps counters and the last maxEvents events in process.
type MemorySink struct {
	mu        sync.Mutex
	events    []Event
	counters  map[string]int64
	maxEvents int
	now       func() time.Time
}

func NewMemorySink(maxEvents int) *MemorySink {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &MemorySink{
		counters:  make(map[string]int64),
		maxEvents: maxEvents,
		now:       time.Now,
	}
}

func (s *MemorySink) Record(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	for _, key := range counterKeys(event) {
		s.counters[key]++
	}
}

func (s *MemorySink) Metrics(_ context.Context) (Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}

	start := len(s.events) - recentEventCount
	if start < 0 {
		start = 0
	}
	recent := make([]Event, len(s.events)-start)
	copy(recent, s.events[start:])

	return Metrics{
		Counters:       counters,
		RecentEvents:   recent,
		RetainedEvents: int64(len(s.events)),
	}, nil
}

// Reset clears all recorded state.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.counters = make(map[string]int64)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

func (Nop) Metrics(context.Context) (Metrics, error) {
	return Metrics{Counters: map[string]int64{}, RecentEvents: []Event{}}, nil
}
