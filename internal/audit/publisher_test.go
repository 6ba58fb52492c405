package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit_NilSafe(t *testing.T) {
	// Must not panic with a nil publisher.
	Emit(context.Background(), nil, Event{Action: "noop"})
}

func TestEmit_StampsTimestamp(t *testing.T) {
	sink := NewMemorySink()
	Emit(context.Background(), sink, Event{Action: "resolve"})

	events := sink.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestWorker_DrainsInbox(t *testing.T) {
	sink := NewMemorySink()
	worker := NewWorker(sink, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		worker.Emit(ctx, Event{Category: CategoryOperations, Action: "resolve"})
	}

	assert.Eventually(t, func() bool {
		return len(sink.Events()) == 5
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWorker_DropsWhenFull(t *testing.T) {
	sink := NewMemorySink()
	worker := NewWorker(sink, 1)
	// Worker not running: second emit must drop, not block.
	worker.Emit(context.Background(), Event{Action: "first"})
	worker.Emit(context.Background(), Event{Action: "second"})
}
