// Package audit records how each resolution was produced, preserving the
// provenance trail independently of the caller-facing response.
package audit

import (
	"context"
	"time"
)

// Event is one recorded resolution.
type Event struct {
	RequestID  string    `json:"request_id,omitempty"`
	Query      string    `json:"query"`
	Ticker     string    `json:"ticker,omitempty"`
	Method     string    `json:"method"`
	Confidence float64   `json:"confidence"`
	Chain      []string  `json:"chain,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher accepts events for asynchronous persistence. Implementations
// must not block the resolution path.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
