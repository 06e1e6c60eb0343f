// Package provider defines the text-completion collaborator interface and
// implementations.
package provider

import (
	"context"
	"errors"
)

// ErrProviderNotFound is returned when a requested provider doesn't exist.
var ErrProviderNotFound = errors.New("provider not found")

// Provider is the AI collaborator: one operation, best effort. Callers catch
// every failure and substitute a user-visible apology; nothing here is fatal.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// Complete sends a prompt and returns the model's text response.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Factory creates provider instances.
type Factory interface {
	Name() string
	Create() Provider
}

// Registry holds available provider factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// RegisterFactory adds a factory to the registry.
func (r *Registry) RegisterFactory(f Factory) {
	r.factories[f.Name()] = f
}

// Create builds a provider by factory name.
func (r *Registry) Create(name string) (Provider, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return f.Create(), nil
}

// List returns all registered factory names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
