package audit

import (
	"context"
	"log/slog"
)

// ChannelPublisher hands events to a buffered inbox consumed by a Worker.
// When the inbox is full the event is dropped and counted in the log rather
// than stalling a lookup.
type ChannelPublisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewChannelPublisher builds a publisher with the given buffer size.
func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelPublisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Publish enqueues the event, dropping on a full inbox.
func (p *ChannelPublisher) Publish(ctx context.Context, event Event) {
	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, event dropped",
				"query", event.Query,
				"method", event.Method,
			)
		}
	}
}

// Inbox exposes the consuming side for a Worker.
func (p *ChannelPublisher) Inbox() <-chan Event {
	return p.inbox
}
