package publishers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubPublisher struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
		nil,
	})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil publishers to be dropped, size=%d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil || !strings.Contains(err.Error(), "http publisher[bad]: failed") {
		t.Fatalf("expected aggregated error naming the failed publisher, got %v", err)
	}
}

// gatedPublisher blocks until every publisher in the fanout has started.
type gatedPublisher struct {
	id    string
	ready *sync.WaitGroup
}

func (g *gatedPublisher) ID() string   { return g.id }
func (g *gatedPublisher) Type() string { return "http" }
func (g *gatedPublisher) Publish(ctx context.Context, _ Event) error {
	g.ready.Done()
	done := make(chan struct{})
	go func() {
		g.ready.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestFanoutPublishesConcurrently(t *testing.T) {
	var ready sync.WaitGroup
	ready.Add(3)
	fanout := NewFanout([]Publisher{
		&gatedPublisher{id: "a", ready: &ready},
		&gatedPublisher{id: "b", ready: &ready},
		&gatedPublisher{id: "c", ready: &ready},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count, err := fanout.Publish(ctx, Event{})
	if err != nil || count != 3 {
		t.Fatalf("expected all publishers to deliver, got count=%d err=%v", count, err)
	}
}

func TestFanoutCloseClosesPublishers(t *testing.T) {
	pub := &stubPublisher{id: "p", typ: "pubsub"}
	fanout := NewFanout([]Publisher{pub})

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Fatalf("expected publisher to be closed")
	}
}

func TestBuildAllWithDefaultBuilders(t *testing.T) {
	pubs, err := BuildAll(context.Background(), DefaultBuilders(), []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 {
		t.Fatalf("expected 1 publisher, got %d", len(pubs))
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultBuilders(), []PublisherConfig{
		{ID: "kafka", Type: "kafka"},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), `publisher "kafka"`) {
		t.Fatalf("expected error naming the publisher, got %v", err)
	}
}
