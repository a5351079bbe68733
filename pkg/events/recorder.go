package events

import (
	"context"
	"sync"
)

// RecordingPublisher captures published events; used by tests.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Recorded
}

type Recorded struct {
	Type    string
	Payload map[string]any
}

func (r *RecordingPublisher) Publish(_ context.Context, eventType string, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Type: eventType, Payload: payload})
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *RecordingPublisher) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}
