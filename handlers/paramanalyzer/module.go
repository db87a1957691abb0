package paramanalyzer

import (
	"context"
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kind is the handler kind this package registers.
const Kind = "model_parameter_analyzer"

// Config holds the analyzer settings.
type Config struct {
	// Freq is the number of epochs between analyses after the initial
	// one at startup.
	Freq int `conf:"freq,optional"`
}

// Analyzer logs summary statistics for every model parameter when
// training starts and at the end of every Freq-th training epoch.
type Analyzer struct {
	freq int
}

// New creates the analyzer.
func New(freq int) (*Analyzer, error) {
	if freq < 1 {
		return nil, fmt.Errorf("parameter analyzer freq must be positive, got %d", freq)
	}
	return &Analyzer{freq: freq}, nil
}

// Attach implements engine.Handler.
func (a *Analyzer) Attach(_ context.Context, e engine.Engine) error {
	e.AddUniqueEventHandler(events.Started, &analyze{analyzer: a, engine: e})
	e.AddUniqueEventHandler(events.TrainEpochCompleted, events.NewConditional(
		&analyze{analyzer: a, engine: e},
		events.NewEpochPeriodic(e, a.freq),
	))
	return nil
}

// report logs one summary line per parameter.
func (a *Analyzer) report(ctx context.Context, e engine.Engine) error {
	logger := ctxlog.FromContext(ctx)
	params := e.Model().Parameters()
	logger.Info("Analyzing model parameters.", "parameters", len(params), "epoch", e.Epoch())
	for _, p := range params {
		s := summarize(p.Value)
		logger.Info("Parameter summary.",
			"name", p.Name,
			"count", s.count,
			"mean", s.mean,
			"min", s.min,
			"max", s.max,
			"std", s.std)
	}
	return nil
}

type summary struct {
	count int
	mean  float64
	min   float64
	max   float64
	std   float64
}

// summarize computes the summary statistics of a parameter vector.
// The standard deviation is the population one.
func summarize(values []float64) summary {
	s := summary{count: len(values)}
	if s.count == 0 {
		return s
	}
	s.min = values[0]
	s.max = values[0]
	var sum float64
	for _, v := range values {
		sum += v
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.mean = sum / float64(s.count)
	var sq float64
	for _, v := range values {
		d := v - s.mean
		sq += d * d
	}
	s.std = math.Sqrt(sq / float64(s.count))
	return s
}

type analyze struct {
	analyzer *Analyzer
	engine   engine.Engine
}

// Handle implements events.Handler.
func (h *analyze) Handle(ctx context.Context) error {
	return h.analyzer.report(ctx, h.engine)
}

// Equal implements events.Handler.
func (h *analyze) Equal(other events.Handler) bool {
	o, ok := other.(*analyze)
	return ok && o.analyzer == h.analyzer && o.engine == h.engine
}

// Register registers the model_parameter_analyzer factory.
func (m *Module) Register(r *registry.Registry) {
	r.Handlers.Register(Kind, func(node cty.Value) (engine.Handler, error) {
		cfg := Config{Freq: 1}
		if err := decode.Decode(node, &cfg); err != nil {
			return nil, fmt.Errorf("parameter analyzer config: %w", err)
		}
		return New(cfg.Freq)
	})
}
