package app

import (
	"io"

	"github.com/gravigo-ml/gravigo/internal/compose"
	"github.com/gravigo-ml/gravigo/internal/conf"
	"github.com/gravigo-ml/gravigo/internal/interp"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	config   *Config
	registry *registry.Registry
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated registry.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Apply(modules...)

	return &App{
		outW:     outW,
		config:   cfg,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Compose merges the configuration tree selected by the app's directory,
// name and overrides, resolves every template and returns the result.
func (a *App) Compose() (*conf.Tree, error) {
	root, err := compose.Compose(compose.Options{
		Dir:       a.config.ConfigDir,
		Name:      a.config.Name,
		Overrides: a.config.Overrides,
	})
	if err != nil {
		return nil, err
	}
	resolved, err := interp.Resolve(root, interp.Options{})
	if err != nil {
		return nil, err
	}
	return conf.NewTree(resolved)
}
