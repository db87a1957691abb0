package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Module is the interface core modules implement to contribute their
// factories to a registry.
type Module interface {
	Register(r *Registry)
}

// Set is a named collection of factories for one component category.
type Set[F any] struct {
	category  string
	factories map[string]F
}

// NewSet creates an empty factory set. The category names the
// component family in panics and lookup errors.
func NewSet[F any](category string) *Set[F] {
	return &Set[F]{category: category, factories: make(map[string]F)}
}

// Register adds a factory under a kind. Registering the same kind
// twice is a programmer error and panics.
func (s *Set[F]) Register(kind string, factory F) {
	if _, exists := s.factories[kind]; exists {
		panic(fmt.Sprintf("%s factory with kind '%s' already registered", s.category, kind))
	}
	slog.Debug("Registering factory.", "category", s.category, "kind", kind)
	s.factories[kind] = factory
}

// Lookup returns the factory registered under kind.
func (s *Set[F]) Lookup(kind string) (F, error) {
	f, ok := s.factories[kind]
	if !ok {
		var zero F
		return zero, fmt.Errorf("unknown %s kind %q (registered: %s)", s.category, kind, strings.Join(s.Kinds(), ", "))
	}
	return f, nil
}

// Has reports whether a factory is registered under kind.
func (s *Set[F]) Has(kind string) bool {
	_, ok := s.factories[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func (s *Set[F]) Kinds() []string {
	kinds := make([]string, 0, len(s.factories))
	for kind := range s.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Registry holds the factory sets for every component category of an
// application instance.
type Registry struct {
	Engines    *Set[EngineFactory]
	Networks   *Set[NetworkFactory]
	Criterions *Set[CriterionFactory]
	Metrics    *Set[MetricFactory]
	Optimizers *Set[OptimizerFactory]
	Schedulers *Set[SchedulerFactory]
	Sources    *Set[SourceFactory]
	Trackers   *Set[TrackerFactory]
	Handlers   *Set[HandlerFactory]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		Engines:    NewSet[EngineFactory]("engine"),
		Networks:   NewSet[NetworkFactory]("network"),
		Criterions: NewSet[CriterionFactory]("criterion"),
		Metrics:    NewSet[MetricFactory]("metric"),
		Optimizers: NewSet[OptimizerFactory]("optimizer"),
		Schedulers: NewSet[SchedulerFactory]("lr scheduler"),
		Sources:    NewSet[SourceFactory]("data source"),
		Trackers:   NewSet[TrackerFactory]("tracker"),
		Handlers:   NewSet[HandlerFactory]("handler"),
	}
}

// Apply lets each module register its factories.
func (r *Registry) Apply(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}
