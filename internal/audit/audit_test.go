package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type AuditSuite struct {
	suite.Suite
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

// ===================================================================
// Publisher / Worker
// ===================================================================

func (s *AuditSuite) TestWorkerAppendsPublishedEvents() {
	store := NewMemoryStore()
	publisher := NewChannelPublisher(16, slog.Default())
	worker := NewWorker(publisher.Inbox(), store, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	publisher.Publish(ctx, Event{
		RequestID:  "req-1",
		Query:      "whatsapp",
		Ticker:     "META",
		Method:     "knowledge_graph",
		Confidence: 0.90,
		Chain:      []string{"WhatsApp", "Meta Platforms"},
		At:         time.Now().UTC(),
	})
	publisher.Publish(ctx, Event{
		RequestID: "req-2",
		Query:     "nvidia",
		Ticker:    "NVDA",
		Method:    "direct",
	})

	s.Require().Eventually(func() bool {
		return len(store.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	events := store.Events()
	s.Equal("whatsapp", events[0].Query)
	s.Equal("META", events[0].Ticker)
	s.Equal([]string{"WhatsApp", "Meta Platforms"}, events[0].Chain)
	s.Equal("nvidia", events[1].Query)
}

func (s *AuditSuite) TestPublishDropsWhenInboxFull() {
	publisher := NewChannelPublisher(1, slog.Default())

	// No worker draining: the second publish must not block.
	done := make(chan struct{})
	go func() {
		publisher.Publish(context.Background(), Event{Query: "one"})
		publisher.Publish(context.Background(), Event{Query: "two"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("publish blocked on a full inbox")
	}
	s.Len(publisher.inbox, 1)
}

func (s *AuditSuite) TestWorkerDrainsInboxOnShutdown() {
	store := NewMemoryStore()
	publisher := NewChannelPublisher(8, slog.Default())
	worker := NewWorker(publisher.Inbox(), store, slog.Default())

	// Queue events before the worker starts, then cancel immediately so the
	// drain path has to pick them up.
	for i := 0; i < 3; i++ {
		publisher.Publish(context.Background(), Event{Query: "q"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	worker.Run(ctx)

	s.Len(store.Events(), 3)
}

// ===================================================================
// Memory store
// ===================================================================

func (s *AuditSuite) TestMemoryStoreReturnsCopy() {
	store := NewMemoryStore()
	s.Require().NoError(store.Append(context.Background(), Event{Query: "a"}))

	events := store.Events()
	events[0].Query = "mutated"

	s.Equal("a", store.Events()[0].Query)
}
