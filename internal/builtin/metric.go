package builtin

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/metrics"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Metrics registers the evaluation metric kinds shipped with the
// binary.
type Metrics struct{}

// Register implements registry.Module.
func (m *Metrics) Register(r *registry.Registry) {
	r.Metrics.Register("categorical_accuracy", func(node cty.Value) (metrics.Metric, error) {
		name, err := metricName(node, "eval/accuracy")
		if err != nil {
			return nil, fmt.Errorf("categorical accuracy config: %w", err)
		}
		return metrics.NewCategoricalAccuracy(name), nil
	})
	r.Metrics.Register("squared_error", func(node cty.Value) (metrics.Metric, error) {
		name, err := metricName(node, "eval/sq_err")
		if err != nil {
			return nil, fmt.Errorf("squared error config: %w", err)
		}
		return metrics.NewSquaredError(name), nil
	})
}

// metricName reads the optional name key, falling back to the kind's
// default.
func metricName(node cty.Value, fallback string) (string, error) {
	cfg := struct {
		Name string `conf:"name,optional"`
	}{Name: fallback}
	if err := decode.Decode(node, &cfg); err != nil {
		return "", err
	}
	return cfg.Name, nil
}
