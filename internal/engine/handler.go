package engine

import "context"

// Handler is a pluggable behavior attached to an engine before a run.
// Attach typically registers event handlers and supporting histories.
type Handler interface {
	Attach(ctx context.Context, e Engine) error
}
