package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/conf"
	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/loops"
	"github.com/gravigo-ml/gravigo/internal/metrics"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/randseed"
	"github.com/gravigo-ml/gravigo/internal/registry"
	"github.com/gravigo-ml/gravigo/internal/rsrc"
	"github.com/gravigo-ml/gravigo/internal/runner"
	"github.com/gravigo-ml/gravigo/internal/schema"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// lookup resolves a component node's kind against a factory set.
func lookup[F any](set *registry.Set[F], node cty.Value, section string) (F, error) {
	kind, err := schema.Kind(node)
	if err != nil {
		var zero F
		return zero, fmt.Errorf("%s: %w", section, err)
	}
	return set.Lookup(kind)
}

// buildRunner turns the parsed experiment into a ready training runner.
// Every component is built by the factory registered for its kind;
// factories decode their own config nodes.
func (a *App) buildRunner(ctx context.Context, tree *conf.Tree, exp *schema.Experiment) (runner.Runner, error) {
	logger := ctxlog.FromContext(ctx)

	// One derived seed per randomized component, so that adding a
	// component never shifts the stream of another.
	seeds := randseed.NewSequence(exp.Run.Seed)
	networkSeed := seeds.Next()
	sourceSeed := seeds.Next()

	buildNetwork, err := lookup(a.registry.Networks, exp.Model.Network, "network")
	if err != nil {
		return nil, err
	}
	network, err := buildNetwork(exp.Model.Network, rand.New(rand.NewSource(networkSeed)))
	if err != nil {
		return nil, err
	}

	buildCriterion, err := lookup(a.registry.Criterions, exp.Model.Criterion, "criterion")
	if err != nil {
		return nil, err
	}
	criterion, err := buildCriterion(exp.Model.Criterion)
	if err != nil {
		return nil, err
	}
	model := nn.NewModel(network, criterion)

	ms := make([]metrics.Metric, 0, len(exp.Model.Metrics))
	for i, node := range exp.Model.Metrics {
		buildMetric, err := lookup(a.registry.Metrics, node, fmt.Sprintf("metric %d", i))
		if err != nil {
			return nil, err
		}
		m, err := buildMetric(node)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}

	buildOptimizer, err := lookup(a.registry.Optimizers, exp.Optimizer, "optimizer")
	if err != nil {
		return nil, err
	}
	opt, err := buildOptimizer(exp.Optimizer, model.Parameters())
	if err != nil {
		return nil, err
	}

	sched, err := a.buildScheduler(exp.LRScheduler, opt)
	if err != nil {
		return nil, err
	}

	buildSource, err := lookup(a.registry.Sources, exp.DataSource, "datasource")
	if err != nil {
		return nil, err
	}
	source, err := buildSource(exp.DataSource, sourceSeed)
	if err != nil {
		return nil, err
	}

	if err := validateShapes(ctx, network, source); err != nil {
		return nil, err
	}

	trk, err := a.buildTracker(exp.Tracker, exp.Run.Name, logger)
	if err != nil {
		return nil, err
	}

	trainLoop, err := loops.NewTraining(exp.Engine.ClipValue)
	if err != nil {
		return nil, err
	}

	engineNode, err := tree.At("engine")
	if err != nil {
		return nil, err
	}
	buildEngine, err := a.registry.Engines.Lookup(exp.Engine.Kind)
	if err != nil {
		return nil, err
	}
	eng, err := buildEngine(engineNode, engine.Components{
		Model:       model,
		Optimizer:   opt,
		LRScheduler: sched,
		Source:      source,
		Tracker:     trk,
		TrainLoop:   trainLoop,
		EvalLoop:    loops.NewEvaluation(ms),
	})
	if err != nil {
		return nil, err
	}

	handlers := make([]engine.Handler, 0, len(exp.Handlers))
	for i, node := range exp.Handlers {
		buildHandler, err := lookup(a.registry.Handlers, node, fmt.Sprintf("handler %d", i))
		if err != nil {
			return nil, err
		}
		h, err := buildHandler(node)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	logger.Debug("Experiment components built.", "engine", exp.Engine.Kind, "metrics", len(ms), "handlers", len(handlers))

	return runner.NewTraining(eng, runner.Options{
		Tracker:  trk,
		Handlers: handlers,
		Resources: []rsrc.Resource{
			rsrc.NewSysInfo(),
			rsrc.NewGoRuntime(0),
		},
		Params: runParams(exp),
	})
}

// validateShapes compares the network's input and output sizes against
// an example from each dataset the source provides, so a mismatched
// configuration fails at build time instead of crashing mid-epoch.
// Datasets are cached by their creators, so the peek is not wasted work.
func validateShapes(ctx context.Context, network nn.Network, source data.Source) error {
	for _, id := range []string{data.TrainID, data.EvalID} {
		loader, err := source.Loader(ctx, id)
		if errors.Is(err, data.ErrLoaderNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		dataset := loader.Dataset()
		if dataset.Len() == 0 {
			continue
		}
		features, target := dataset.At(0)
		if len(features) != network.InFeatures() {
			return fmt.Errorf("dataset %q provides %d features per example, but the network expects %d", id, len(features), network.InFeatures())
		}
		if len(target) != network.OutFeatures() {
			return fmt.Errorf("dataset %q provides %d target components per example, but the network produces %d", id, len(target), network.OutFeatures())
		}
	}
	return nil
}

// buildScheduler resolves the optional lr_scheduler section. An absent
// section leaves the learning rate constant.
func (a *App) buildScheduler(node cty.Value, opt optim.Optimizer) (optim.LRScheduler, error) {
	if node == cty.NilVal {
		return optim.NewNoOpLR(), nil
	}
	buildScheduler, err := lookup(a.registry.Schedulers, node, "lr_scheduler")
	if err != nil {
		return nil, err
	}
	return buildScheduler(node, opt)
}

// buildTracker resolves the optional tracker section. An absent section
// discards metrics.
func (a *App) buildTracker(node cty.Value, run string, logger *slog.Logger) (tracker.Tracker, error) {
	if node == cty.NilVal {
		return tracker.NewNoop(), nil
	}
	buildTracker, err := lookup(a.registry.Trackers, node, "tracker")
	if err != nil {
		return nil, err
	}
	return buildTracker(node, run, logger)
}

// runParams is the parameter set recorded by the tracker at run start.
func runParams(exp *schema.Experiment) map[string]any {
	params := map[string]any{
		"run.name":                exp.Run.Name,
		"run.seed":                exp.Run.Seed,
		"engine.kind":             exp.Engine.Kind,
		"engine.state.max_epochs": exp.Engine.State.MaxEpochs,
	}
	for key, node := range map[string]cty.Value{
		"model.network": exp.Model.Network,
		"optimizer":     exp.Optimizer,
		"datasource":    exp.DataSource,
	} {
		if kind, err := schema.Kind(node); err == nil {
			params[key+".kind"] = kind
		}
	}
	return params
}
