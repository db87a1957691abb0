package builtin

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/registry"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Trackers registers the experiment tracker kinds shipped with the
// binary.
type Trackers struct{}

// Register implements registry.Module.
func (m *Trackers) Register(r *registry.Registry) {
	r.Trackers.Register("noop", func(cty.Value, string, *slog.Logger) (tracker.Tracker, error) {
		return tracker.NewNoop(), nil
	})
	r.Trackers.Register("log", func(_ cty.Value, run string, logger *slog.Logger) (tracker.Tracker, error) {
		return tracker.NewLog(run, logger), nil
	})
	r.Trackers.Register("socketio", newSocketIO)
}

// newSocketIO builds the socket.io tracker. timeout is a Go duration
// string such as "10s".
func newSocketIO(node cty.Value, run string, logger *slog.Logger) (tracker.Tracker, error) {
	cfg := struct {
		URL                string `conf:"url"`
		Namespace          string `conf:"namespace,optional"`
		EmitEvent          string `conf:"emit_event,optional"`
		Timeout            string `conf:"timeout,optional"`
		InsecureSkipVerify bool   `conf:"insecure_skip_verify,optional"`
	}{}
	if err := decode.Decode(node, &cfg); err != nil {
		return nil, fmt.Errorf("socketio tracker config: %w", err)
	}
	tcfg := tracker.SocketIOConfig{
		URL:                cfg.URL,
		Namespace:          cfg.Namespace,
		EmitEvent:          cfg.EmitEvent,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("socketio tracker config: parsing timeout: %w", err)
		}
		tcfg.Timeout = d
	}
	return tracker.NewSocketIO(run, tcfg, logger)
}
