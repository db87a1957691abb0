package events

import "context"

// Handler reacts to a fired event. Equal supports de-duplication when
// handlers are attached with AddUnique.
type Handler interface {
	Handle(ctx context.Context) error
	Equal(other Handler) bool
}

// Func adapts a plain function into a Handler. Two Funcs are never
// equal, so AddUnique always attaches them.
type Func func(ctx context.Context) error

// Handle implements Handler.
func (f Func) Handle(ctx context.Context) error { return f(ctx) }

// Equal implements Handler.
func (f Func) Equal(Handler) bool { return false }

// ConditionalHandler runs its inner handler only when the condition
// evaluates true. A nil condition always runs.
type ConditionalHandler struct {
	handler   Handler
	condition Condition
}

// NewConditional wraps a handler with a firing condition.
func NewConditional(h Handler, c Condition) *ConditionalHandler {
	return &ConditionalHandler{handler: h, condition: c}
}

// Handle implements Handler. The condition is evaluated on every call,
// so periodic conditions advance even when they suppress the handler.
func (h *ConditionalHandler) Handle(ctx context.Context) error {
	if h.condition != nil && !h.condition.Evaluate() {
		return nil
	}
	return h.handler.Handle(ctx)
}

// Equal implements Handler. Two conditional handlers are equal when
// both their handlers and their conditions are.
func (h *ConditionalHandler) Equal(other Handler) bool {
	o, ok := other.(*ConditionalHandler)
	if !ok {
		return false
	}
	if !h.handler.Equal(o.handler) {
		return false
	}
	if h.condition == nil || o.condition == nil {
		return h.condition == o.condition
	}
	return h.condition.Equal(o.condition)
}
