// Package schema is the typed view of a composed experiment config.
// Structured sections decode into plain structs; component sections
// (network, optimizer, tracker, ...) stay raw cty nodes so the factory
// registered for their kind can decode them itself.
package schema

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/conf"
	"github.com/gravigo-ml/gravigo/internal/decode"
)

// Run identifies one experiment run.
type Run struct {
	Name      string `conf:"name"`
	Seed      int64  `conf:"seed,optional"`
	OutputDir string `conf:"output_dir,optional"`
}

// Logging selects the run's log output.
type Logging struct {
	Level  string `conf:"level,optional"`
	Format string `conf:"format,optional"`
}

// EngineState carries the engine's schedule counters.
type EngineState struct {
	MaxEpochs int `conf:"max_epochs"`
}

// Engine configures the training engine.
type Engine struct {
	Kind         string      `conf:"kind"`
	State        EngineState `conf:"state"`
	EvalInterval int         `conf:"eval_interval,optional"`
	ClipValue    float64     `conf:"clip_value,optional"`
}

// Model couples the network and criterion nodes with the evaluation
// metrics.
type Model struct {
	Network   cty.Value   `conf:"network"`
	Criterion cty.Value   `conf:"criterion"`
	Metrics   []cty.Value `conf:"metrics,optional"`
}

// Experiment is the full experiment configuration.
type Experiment struct {
	Run         Run         `conf:"run"`
	Logging     Logging     `conf:"logging,optional"`
	Engine      Engine      `conf:"engine"`
	DataSource  cty.Value   `conf:"datasource"`
	Model       Model       `conf:"model"`
	Optimizer   cty.Value   `conf:"optimizer"`
	LRScheduler cty.Value   `conf:"lr_scheduler,optional"`
	Tracker     cty.Value   `conf:"tracker,optional"`
	Handlers    []cty.Value `conf:"handlers,optional"`
}

// Parse decodes a composed tree into the typed experiment view,
// applying defaults and validating the structured sections. Component
// nodes are validated later by their factories.
func Parse(tree *conf.Tree) (*Experiment, error) {
	var exp Experiment
	if err := decode.Decode(tree.Root(), &exp); err != nil {
		return nil, fmt.Errorf("experiment config: %w", err)
	}

	if exp.Logging.Level == "" {
		exp.Logging.Level = "info"
	}
	if exp.Logging.Format == "" {
		exp.Logging.Format = "text"
	}
	// eval_interval defaults to every epoch; an explicit 0 disables
	// evaluation during training.
	if !tree.Has("engine.eval_interval") {
		exp.Engine.EvalInterval = 1
	}

	if err := exp.validate(); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (e *Experiment) validate() error {
	if e.Run.Name == "" {
		return fmt.Errorf("experiment config: run.name must not be empty")
	}
	switch e.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("experiment config: logging.level %q is not one of debug, info, warn, error", e.Logging.Level)
	}
	switch e.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("experiment config: logging.format %q is not one of text, json", e.Logging.Format)
	}
	if e.Engine.Kind == "" {
		return fmt.Errorf("experiment config: engine.kind must not be empty")
	}
	if e.Engine.State.MaxEpochs < 1 {
		return fmt.Errorf("experiment config: engine.state.max_epochs must be positive, got %d", e.Engine.State.MaxEpochs)
	}
	if e.Engine.EvalInterval < 0 {
		return fmt.Errorf("experiment config: engine.eval_interval must not be negative, got %d", e.Engine.EvalInterval)
	}
	if e.Engine.ClipValue < 0 {
		return fmt.Errorf("experiment config: engine.clip_value must not be negative, got %g", e.Engine.ClipValue)
	}
	return nil
}

// Kind reads the "kind" attribute of a component node.
func Kind(node cty.Value) (string, error) {
	if node.IsNull() || !node.Type().IsObjectType() {
		return "", fmt.Errorf("component config must be a mapping")
	}
	if !node.Type().HasAttribute("kind") {
		return "", fmt.Errorf("component config is missing the \"kind\" key")
	}
	kind := node.GetAttr("kind")
	if kind.IsNull() || kind.Type() != cty.String {
		return "", fmt.Errorf("component \"kind\" must be a string")
	}
	return kind.AsString(), nil
}
