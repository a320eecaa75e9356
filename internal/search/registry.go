package search

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrUnknownProvider is returned when a name has no registered provider
var ErrUnknownProvider = errors.New("unknown provider")

// Registry holds all registered providers in registration order
type Registry struct {
	providers []Provider
	byName    map[string]Provider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: []Provider{},
		byName:    map[string]Provider{},
	}
}

// Register adds a provider to the registry. A provider with the same name replaces the earlier one.
func (r *Registry) Register(provider Provider) {
	if _, ok := r.byName[provider.Name()]; ok {
		r.providers = lo.Reject(r.providers, func(p Provider, _ int) bool {
			return p.Name() == provider.Name()
		})
	}
	r.providers = append(r.providers, provider)
	r.byName[provider.Name()] = provider
}

// Get returns the provider registered under name
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Resolve maps names to providers, preserving order and dropping duplicates
func (r *Registry) Resolve(names []string) ([]Provider, error) {
	var chain []Provider
	for _, name := range lo.Uniq(names) {
		p, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
		chain = append(chain, p)
	}
	return chain, nil
}

// Names returns the names of all registered providers
func (r *Registry) Names() []string {
	return lo.Map(r.providers, func(p Provider, _ int) string { return p.Name() })
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	return len(r.providers)
}
