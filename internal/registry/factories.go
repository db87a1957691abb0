package registry

import (
	"log/slog"
	"math/rand"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/metrics"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Factories receive the raw config node for their component and decode
// it themselves, plus whatever build context their category needs.
type (
	// EngineFactory builds an engine around already-built components.
	EngineFactory func(node cty.Value, c engine.Components) (engine.Engine, error)

	// NetworkFactory builds a network, drawing initial weights from rng.
	NetworkFactory func(node cty.Value, rng *rand.Rand) (nn.Network, error)

	// CriterionFactory builds a loss criterion.
	CriterionFactory func(node cty.Value) (nn.Criterion, error)

	// MetricFactory builds an evaluation metric.
	MetricFactory func(node cty.Value) (metrics.Metric, error)

	// OptimizerFactory builds an optimizer over the model parameters.
	OptimizerFactory func(node cty.Value, params []*optim.Parameter) (optim.Optimizer, error)

	// SchedulerFactory builds a scheduler driving the optimizer's LR.
	SchedulerFactory func(node cty.Value, opt optim.Optimizer) (optim.LRScheduler, error)

	// SourceFactory builds a data source. defaultSeed seeds dataset
	// generation and shuffling when the node does not carry its own.
	SourceFactory func(node cty.Value, defaultSeed int64) (data.Source, error)

	// TrackerFactory builds a tracker for the named run.
	TrackerFactory func(node cty.Value, run string, logger *slog.Logger) (tracker.Tracker, error)

	// HandlerFactory builds a lifecycle handler.
	HandlerFactory func(node cty.Value) (engine.Handler, error)
)
