package audit

import (
	"context"
	"errors"
	"sync"
)

// MemorySink keeps events in process memory.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append implements Sink.
func (m *MemorySink) Append(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of everything appended so far, oldest first.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Terminal returns only the events that end an attempt.
func (m *MemorySink) Terminal() []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Status.Terminal() {
			out = append(out, e)
		}
	}
	return out
}

// MultiSink fans each event out to several sinks. Every sink is tried;
// failures are joined into one error.
type MultiSink []Sink

// Append implements Sink.
func (ms MultiSink) Append(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range ms {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
