package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
)

// ModuleManager keeps named auxiliary objects (handlers, meters,
// anything a lifecycle handler wants to stash on the engine) so they
// can be looked up later by name.
type ModuleManager struct {
	modules map[string]any
}

// NewModuleManager creates an empty manager.
func NewModuleManager() *ModuleManager {
	return &ModuleManager{modules: make(map[string]any)}
}

// Add registers a module under a name. Replacing an existing module
// logs a warning through the run logger carried by ctx.
func (m *ModuleManager) Add(ctx context.Context, name string, module any) {
	if _, exists := m.modules[name]; exists {
		ctxlog.FromContext(ctx).Warn("Overriding module.", "name", name)
	}
	m.modules[name] = module
}

// Get returns the module registered under name.
func (m *ModuleManager) Get(name string) (any, error) {
	module, ok := m.modules[name]
	if !ok {
		return nil, fmt.Errorf("module %q is not registered (available: %s)", name, strings.Join(m.Names(), ", "))
	}
	return module, nil
}

// Has reports whether a module is registered under name.
func (m *ModuleManager) Has(name string) bool {
	_, ok := m.modules[name]
	return ok
}

// Remove deletes the module registered under name.
func (m *ModuleManager) Remove(name string) error {
	if _, ok := m.modules[name]; !ok {
		return fmt.Errorf("module %q is not registered (available: %s)", name, strings.Join(m.Names(), ", "))
	}
	delete(m.modules, name)
	return nil
}

// Names returns the registered module names in sorted order.
func (m *ModuleManager) Names() []string {
	names := make([]string, 0, len(m.modules))
	for name := range m.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
