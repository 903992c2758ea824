// Package registry manages the set of plugins available to an engine.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
)

// Registry manages the available trial plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]ports.Plugin
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]ports.Plugin),
	}
}

// Register adds a plugin to the registry under its declared name.
// If a plugin with the same name exists, it is overwritten.
func (r *Registry) Register(p ports.Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name()] = p
}

// Get looks up a plugin by name.
// Returns domain.ErrPluginNotFound if no plugin is registered under it.
func (r *Registry) Get(name string) (ports.Plugin, error) {
	r.mu.RLock()
	p, ok := r.plugins[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPluginNotFound, name)
	}
	return p, nil
}

// Names returns the registered plugin names, sorted for stable output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
