package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher accepts audit events. Publishing must never fail the request
// that produced the event; implementations log and drop on error.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// Emit is a nil-safe helper for services holding an optional publisher.
func Emit(ctx context.Context, publisher Publisher, event Event) {
	if publisher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	publisher.Emit(ctx, event)
}

// MemorySink collects events in memory. It is the default sink when no
// Kafka brokers are configured, and the assertion point in tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink builds an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

// LogSink writes events to the structured logger. Useful as a fallback
// sink in development.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ctx context.Context, event Event) {
	if s.Logger == nil {
		return
	}
	s.Logger.InfoContext(ctx, "audit event",
		"category", string(event.Category),
		"action", event.Action,
		"machine_id", int64(event.MachineID),
		"operator_id", event.OperatorID.String(),
		"detail", event.Detail,
	)
}
