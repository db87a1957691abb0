package events

import (
	"context"
	"fmt"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
)

// Manager keeps ordered handler lists per event name and fires them
// synchronously.
type Manager struct {
	handlers map[string][]Handler
}

// NewManager creates an empty event manager.
func NewManager() *Manager {
	return &Manager{handlers: map[string][]Handler{}}
}

// Add appends a handler to an event's list.
func (m *Manager) Add(event string, h Handler) {
	m.handlers[event] = append(m.handlers[event], h)
}

// AddUnique appends a handler unless an equal one is already attached
// to the event. It reports whether the handler was added.
func (m *Manager) AddUnique(event string, h Handler) bool {
	if m.Has(event, h) {
		return false
	}
	m.Add(event, h)
	return true
}

// Has reports whether an equal handler is attached to the event.
func (m *Manager) Has(event string, h Handler) bool {
	for _, existing := range m.handlers[event] {
		if existing.Equal(h) {
			return true
		}
	}
	return false
}

// Remove detaches the first handler equal to h from the event.
func (m *Manager) Remove(event string, h Handler) error {
	list := m.handlers[event]
	for i, existing := range list {
		if existing.Equal(h) {
			m.handlers[event] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("handler not attached to event %q", event)
}

// Count returns the number of handlers attached to an event.
func (m *Manager) Count(event string) int {
	return len(m.handlers[event])
}

// Fire invokes the event's handlers in attach order. The first handler
// error aborts the run and is returned wrapped with the event name.
func (m *Manager) Fire(ctx context.Context, event string) error {
	list := m.handlers[event]
	if len(list) == 0 {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Firing event.", "event", event, "handlers", len(list))
	for _, h := range list {
		if err := h.Handle(ctx); err != nil {
			return fmt.Errorf("event %q: %w", event, err)
		}
	}
	return nil
}
