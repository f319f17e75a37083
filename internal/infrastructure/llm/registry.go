package llm

import (
	"fmt"

	"Cadence/internal/ports"
)

// Registry keeps a mapping from provider names to responder implementations.
type Registry struct {
	providers map[string]ports.Responder
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]ports.Responder{}}
}

// Register adds or replaces a responder implementation.
func (r *Registry) Register(responder ports.Responder) {
	if r.providers == nil {
		r.providers = map[string]ports.Responder{}
	}
	r.providers[responder.Name()] = responder
}

// Resolve returns a responder by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Responder, error) {
	if responder, ok := r.providers[name]; ok {
		return responder, nil
	}
	return nil, fmt.Errorf("llm provider %s is not registered", name)
}
