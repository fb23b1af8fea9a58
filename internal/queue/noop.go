package queue

import (
	"context"
	"sync"

	"github.com/markdave123-py/chatters/internal/core"
)

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

var _ core.EventPublisher = Noop{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

type Event struct {
	Topic   string
	Payload any
}

var _ core.EventPublisher = (*Recorder)(nil)

func (r *Recorder) Publish(_ context.Context, topic string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Event{Topic: topic, Payload: payload})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.Events...)
}
