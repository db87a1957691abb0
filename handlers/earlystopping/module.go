package earlystopping

import (
	"context"
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/history"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kind is the handler kind this package registers.
const Kind = "early_stopping"

// Watch directions for the monitored metric.
const (
	ModeMin = "min"
	ModeMax = "max"
)

// Config holds the early stopping settings.
type Config struct {
	// Metric names the engine history to watch.
	Metric string `conf:"metric,optional"`

	// Mode is "min" when smaller values are better, "max" otherwise.
	Mode string `conf:"mode,optional"`

	// Patience is the number of evaluations without improvement
	// tolerated before training is terminated.
	Patience int `conf:"patience,optional"`

	// MinDelta is the margin a value must beat the best by to count
	// as an improvement.
	MinDelta float64 `conf:"min_delta,optional"`

	// CumulativeDelta keeps the best value fixed while the margin is
	// not beaten; without it, sub-margin improvements still move the
	// best value.
	CumulativeDelta bool `conf:"cumulative_delta,optional"`
}

// DefaultConfig watches the evaluation loss with a patience of five
// evaluations.
func DefaultConfig() Config {
	return Config{Metric: "eval/loss_avg", Mode: ModeMin, Patience: 5}
}

// Handler terminates training when a watched metric stops improving.
type Handler struct {
	cfg Config

	best     float64
	hasBest  bool
	counter  int
	seenStep int
	seen     bool
}

// New validates the config and creates the handler.
func New(cfg Config) (*Handler, error) {
	if cfg.Metric == "" {
		return nil, errors.New("early stopping metric must not be empty")
	}
	if cfg.Mode != ModeMin && cfg.Mode != ModeMax {
		return nil, fmt.Errorf("early stopping mode must be %q or %q, got %q", ModeMin, ModeMax, cfg.Mode)
	}
	if cfg.Patience < 1 {
		return nil, fmt.Errorf("early stopping patience must be positive, got %d", cfg.Patience)
	}
	if cfg.MinDelta < 0 {
		return nil, fmt.Errorf("early stopping min delta must not be negative, got %v", cfg.MinDelta)
	}
	return &Handler{cfg: cfg}, nil
}

// Attach registers the improvement check on epoch_completed. When the
// watched history does not exist yet it is created with the comparator
// matching the configured mode, so Best() reflects the watch
// direction.
func (h *Handler) Attach(_ context.Context, e engine.Engine) error {
	if _, ok := e.Histories()[h.cfg.Metric]; !ok {
		hist := history.NewMaxScalar(h.cfg.Metric)
		if h.cfg.Mode == ModeMin {
			hist = history.NewMinScalar(h.cfg.Metric)
		}
		e.AddHistory(hist)
	}
	e.AddUniqueEventHandler(events.EpochCompleted, &check{handler: h, engine: e})
	return nil
}

// observe inspects the watched history after an epoch. Epochs where
// the metric was not refreshed (evaluation skipped) count neither as
// improvement nor as stagnation.
func (h *Handler) observe(ctx context.Context, e engine.Engine) error {
	logger := ctxlog.FromContext(ctx)

	entries := e.History(h.cfg.Metric).Recent()
	if len(entries) == 0 {
		logger.Debug("Watched metric has no value yet.", "metric", h.cfg.Metric, "epoch", e.Epoch())
		return nil
	}
	last := entries[len(entries)-1]
	if h.seen && last.Step == h.seenStep {
		logger.Debug("Watched metric unchanged since last evaluation.", "metric", h.cfg.Metric, "epoch", e.Epoch())
		return nil
	}
	h.seen = true
	h.seenStep = last.Step

	if !h.hasBest {
		h.best = last.Value
		h.hasBest = true
		return nil
	}
	if h.improved(last.Value) {
		h.best = last.Value
		h.counter = 0
		return nil
	}
	if !h.cfg.CumulativeDelta && h.better(last.Value) {
		h.best = last.Value
	}
	h.counter++
	logger.Debug("No improvement.",
		"metric", h.cfg.Metric,
		"value", last.Value,
		"best", h.best,
		"counter", h.counter,
		"patience", h.cfg.Patience)
	if h.counter >= h.cfg.Patience {
		logger.Info("Early stopping triggered.",
			"metric", h.cfg.Metric,
			"best", h.best,
			"patience", h.cfg.Patience,
			"epoch", e.Epoch())
		e.Terminate()
	}
	return nil
}

// improved reports whether value beats the best by at least MinDelta.
func (h *Handler) improved(value float64) bool {
	if h.cfg.Mode == ModeMax {
		return value > h.best+h.cfg.MinDelta
	}
	return value < h.best-h.cfg.MinDelta
}

// better reports whether value beats the best by any amount.
func (h *Handler) better(value float64) bool {
	if h.cfg.Mode == ModeMax {
		return value > h.best
	}
	return value < h.best
}

// check binds the handler to the engine it watches so the event
// manager can de-duplicate repeated attachments.
type check struct {
	handler *Handler
	engine  engine.Engine
}

// Handle implements events.Handler.
func (c *check) Handle(ctx context.Context) error {
	return c.handler.observe(ctx, c.engine)
}

// Equal implements events.Handler.
func (c *check) Equal(other events.Handler) bool {
	o, ok := other.(*check)
	return ok && o.handler == c.handler && o.engine == c.engine
}

// Register registers the early_stopping handler factory.
func (m *Module) Register(r *registry.Registry) {
	r.Handlers.Register(Kind, func(node cty.Value) (engine.Handler, error) {
		cfg := DefaultConfig()
		if err := decode.Decode(node, &cfg); err != nil {
			return nil, fmt.Errorf("early stopping config: %w", err)
		}
		return New(cfg)
	})
}
