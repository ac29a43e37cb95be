package view

import (
	"slices"
	"sync"
)

// Registry holds shapes by name so they can be selected at runtime,
// e.g. from a command-line flag or a declaration file.
type Registry struct {
	mu     sync.RWMutex
	shapes map[string]*Shape
}

func NewRegistry() *Registry {
	return &Registry{shapes: make(map[string]*Shape)}
}

func (r *Registry) Register(s *Shape) error {
	if s == nil {
		return configErrorf("<nil>", "", "cannot register a nil shape")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.shapes[s.name]; exists {
		return configErrorf(s.name, "", "shape already registered")
	}
	r.shapes[s.name] = s
	return nil
}

func (r *Registry) Lookup(name string) (*Shape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shapes[name]
	return s, ok
}

// Require is like Lookup but reports a missing shape as a configuration error.
func (r *Registry) Require(name string) (*Shape, error) {
	s, ok := r.Lookup(name)
	if !ok {
		return nil, configErrorf(name, "", "shape not registered")
	}
	return s, nil
}

// Names returns registered shape names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.shapes))
	for name := range r.shapes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
