package audit

import (
	"context"
	"time"
)

// Worker decouples event production from the sink: services write to a
// buffered channel and the worker drains it in the background, so a slow
// sink never blocks a check-in.
type Worker struct {
	sink  Publisher
	inbox chan Event
}

// NewWorker builds a worker with the given buffer size.
func NewWorker(sink Publisher, buffer int) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	return &Worker{sink: sink, inbox: make(chan Event, buffer)}
}

// Emit enqueues an event, dropping it when the buffer is full. Audit loss
// is preferable to back-pressuring check-ins.
func (w *Worker) Emit(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case w.inbox <- event:
	default:
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is left.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event := <-w.inbox:
					w.sink.Emit(context.Background(), event)
				default:
					return ctx.Err()
				}
			}
		case event := <-w.inbox:
			w.sink.Emit(ctx, event)
		}
	}
}
