package audit

import (
	"context"
	"log/slog"
	"time"
)

// Worker drains an event inbox into a Store.
type Worker struct {
	inbox  <-chan Event
	store  Store
	logger *slog.Logger
}

// NewWorker builds a worker consuming from the given inbox.
func NewWorker(inbox <-chan Event, store Store, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, store: store, logger: logger}
}

// Run consumes events until ctx is cancelled, then drains what remains in the
// inbox with a short grace period.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	drainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			w.append(drainCtx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "audit append failed",
			"error", err,
			"query", event.Query,
		)
	}
}
