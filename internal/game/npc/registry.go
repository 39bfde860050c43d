package npc

import (
	"errors"
	"fmt"
)

// ErrUnknownTemplate is returned by Registry lookups that miss.
var ErrUnknownTemplate = errors.New("unknown enemy template")

// Registry indexes enemy templates by ID, preserving registration order.
type Registry struct {
	byID  map[string]*Template
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Template)}
}

// Register adds a built template.
//
// Precondition: tmpl must be non-nil and built.
// Postcondition: Get(tmpl.ID) returns tmpl; returns error on duplicate ID.
func (r *Registry) Register(tmpl *Template) error {
	if _, exists := r.byID[tmpl.ID]; exists {
		return fmt.Errorf("npc: Registry.Register: template ID %q already registered", tmpl.ID)
	}
	r.byID[tmpl.ID] = tmpl
	r.order = append(r.order, tmpl.ID)
	return nil
}

// Get returns the template for id.
//
// Postcondition: Returns (tmpl, nil) if found, or ErrUnknownTemplate otherwise.
func (r *Registry) Get(id string) (*Template, error) {
	tmpl, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return tmpl, nil
}

// All returns the templates in registration order.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// LoadRegistry loads every template in dir into a new Registry.
func LoadRegistry(dir string) (*Registry, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, tmpl := range templates {
		if err := r.Register(tmpl); err != nil {
			return nil, err
		}
	}
	return r, nil
}
