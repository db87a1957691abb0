package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gravigo-ml/gravigo/internal/conf"
	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/schema"
)

// Run composes the experiment configuration, builds every configured
// component and executes the training run.
func (a *App) Run(ctx context.Context) error {
	tree, err := a.Compose()
	if err != nil {
		return fmt.Errorf("composing configuration: %w", err)
	}

	exp, err := schema.Parse(tree)
	if err != nil {
		return err
	}

	// Log flags take precedence over the composed logging section.
	level, format := exp.Logging.Level, exp.Logging.Format
	if a.config.LogLevel != "" {
		level = a.config.LogLevel
	}
	if a.config.LogFormat != "" {
		format = a.config.LogFormat
	}
	logger := newLogger(level, format, a.outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.", "level", level, "format", format)

	run, err := a.buildRunner(ctx, tree, exp)
	if err != nil {
		return fmt.Errorf("building experiment: %w", err)
	}

	if err := writeResolvedConfig(ctx, tree, exp.Run.OutputDir); err != nil {
		return err
	}

	logger.Info("Experiment configured.", "run", exp.Run.Name, "max_epochs", exp.Engine.State.MaxEpochs)
	if err := run.Run(ctx); err != nil {
		return fmt.Errorf("run %q: %w", exp.Run.Name, err)
	}
	logger.Info("Experiment finished.", "run", exp.Run.Name)
	return nil
}

// writeResolvedConfig materializes the output directory and records the
// fully resolved configuration next to the run's artifacts.
func writeResolvedConfig(ctx context.Context, tree *conf.Tree, dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	raw, err := tree.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling resolved configuration: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing resolved configuration: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Resolved configuration written.", "path", path)
	return nil
}
