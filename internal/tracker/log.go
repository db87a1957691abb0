package tracker

import (
	"context"
	"log/slog"
	"sort"
)

// Log is a tracker that writes parameters and metrics to a structured
// logger at info level.
type Log struct {
	run    string
	logger *slog.Logger
}

// NewLog creates a logging tracker for the named run.
func NewLog(run string, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{run: run, logger: logger}
}

func (l *Log) Start(context.Context) error {
	l.logger.Info("Tracking started.", "run", l.run)
	return nil
}

func (l *Log) LogParams(params map[string]any) {
	attrs := make([]any, 0, 2+2*len(params))
	attrs = append(attrs, "run", l.run)
	for _, k := range sortedParamKeys(params) {
		attrs = append(attrs, k, params[k])
	}
	l.logger.Info("Run parameters.", attrs...)
}

func (l *Log) LogMetrics(step Step, metrics map[string]float64) {
	attrs := make([]any, 0, 6+2*len(metrics))
	attrs = append(attrs, "run", l.run, "kind", string(step.Kind), "step", step.Value)
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, metrics[k])
	}
	l.logger.Info("Metrics.", attrs...)
}

func (l *Log) End(context.Context) error {
	l.logger.Info("Tracking ended.", "run", l.run)
	return nil
}

func sortedParamKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
