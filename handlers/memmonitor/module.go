package memmonitor

import (
	"context"
	"fmt"
	"runtime"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/registry"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kind is the handler kind this package registers.
const Kind = "epoch_memory_monitor"

// Config holds the monitor settings.
type Config struct {
	// Freq is the number of epochs between samples.
	Freq int `conf:"freq,optional"`
}

// Monitor samples Go runtime memory statistics every Freq epochs.
type Monitor struct {
	freq int
}

// New creates the monitor.
func New(freq int) (*Monitor, error) {
	if freq < 1 {
		return nil, fmt.Errorf("memory monitor freq must be positive, got %d", freq)
	}
	return &Monitor{freq: freq}, nil
}

// Attach implements engine.Handler.
func (m *Monitor) Attach(_ context.Context, e engine.Engine) error {
	e.AddUniqueEventHandler(events.EpochCompleted, events.NewConditional(
		&sample{monitor: m, engine: e},
		events.NewEpochPeriodic(e, m.freq),
	))
	return nil
}

// record reads the runtime memory statistics and logs them as epoch
// metrics.
func (m *Monitor) record(ctx context.Context, e engine.Engine) error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	ctxlog.FromContext(ctx).Info("Memory usage.",
		"epoch", e.Epoch(),
		"heap_alloc", ms.HeapAlloc,
		"heap_sys", ms.HeapSys,
		"gc_runs", ms.NumGC)
	e.LogMetrics(ctx, tracker.EpochStep(e.Epoch()), map[string]float64{
		"epoch/heap_alloc_bytes": float64(ms.HeapAlloc),
		"epoch/heap_sys_bytes":   float64(ms.HeapSys),
		"epoch/gc_runs":          float64(ms.NumGC),
	})
	return nil
}

type sample struct {
	monitor *Monitor
	engine  engine.Engine
}

// Handle implements events.Handler.
func (s *sample) Handle(ctx context.Context) error {
	return s.monitor.record(ctx, s.engine)
}

// Equal implements events.Handler.
func (s *sample) Equal(other events.Handler) bool {
	o, ok := other.(*sample)
	return ok && o.monitor == s.monitor && o.engine == s.engine
}

// Register registers the epoch_memory_monitor factory.
func (m *Module) Register(r *registry.Registry) {
	r.Handlers.Register(Kind, func(node cty.Value) (engine.Handler, error) {
		cfg := Config{Freq: 1}
		if err := decode.Decode(node, &cfg); err != nil {
			return nil, fmt.Errorf("memory monitor config: %w", err)
		}
		return New(cfg.Freq)
	})
}
