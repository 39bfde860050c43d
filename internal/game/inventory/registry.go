package inventory

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry holds the consumable and material definitions indexed by ID.
type Registry struct {
	consumables map[string]*ConsumableDef
	consOrder   []string
	materials   map[string]*MaterialDef
	matOrder    []string
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		consumables: make(map[string]*ConsumableDef),
		materials:   make(map[string]*MaterialDef),
	}
}

// RegisterConsumable normalizes, validates and adds d.
//
// Precondition: d must not be nil.
// Postcondition: Consumable(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterConsumable(d *ConsumableDef) error {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := r.consumables[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterConsumable: consumable ID %q already registered", d.ID)
	}
	r.consumables[d.ID] = d
	r.consOrder = append(r.consOrder, d.ID)
	return nil
}

// Consumable returns the definition for id and whether it was found.
func (r *Registry) Consumable(id string) (*ConsumableDef, bool) {
	d, ok := r.consumables[id]
	return d, ok
}

// Consumables returns every consumable in registration order.
func (r *Registry) Consumables() []*ConsumableDef {
	out := make([]*ConsumableDef, 0, len(r.consOrder))
	for _, id := range r.consOrder {
		out = append(out, r.consumables[id])
	}
	return out
}

// RegisterMaterial adds m.
//
// Precondition: m must not be nil.
// Postcondition: Material(m.ID) returns (m, true); returns error if m.ID is empty or already registered.
func (r *Registry) RegisterMaterial(m *MaterialDef) error {
	if m.ID == "" || m.Name == "" {
		return fmt.Errorf("inventory: Registry.RegisterMaterial: material needs id and name")
	}
	if _, exists := r.materials[m.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterMaterial: material ID %q already registered", m.ID)
	}
	r.materials[m.ID] = m
	r.matOrder = append(r.matOrder, m.ID)
	return nil
}

// Material returns the definition for id and whether it was found.
func (r *Registry) Material(id string) (*MaterialDef, bool) {
	m, ok := r.materials[id]
	return m, ok
}

// Materials returns every material in registration order.
func (r *Registry) Materials() []*MaterialDef {
	out := make([]*MaterialDef, 0, len(r.matOrder))
	for _, id := range r.matOrder {
		out = append(out, r.materials[id])
	}
	return out
}

// MaterialName returns the display name of id, or id itself when unknown.
func (r *Registry) MaterialName(id string) string {
	if m, ok := r.materials[id]; ok {
		return m.Name
	}
	return id
}

type itemsFile struct {
	Consumables []*ConsumableDef `yaml:"consumables"`
	Materials   []*MaterialDef   `yaml:"materials"`
}

// LoadRegistry reads a YAML file holding `consumables` and `materials`
// lists and registers every entry.
//
// Precondition: path names a readable file.
// Postcondition: returns a populated Registry or the first error encountered.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadRegistry: cannot read file %q: %w", path, err)
	}
	return LoadRegistryFromBytes(data)
}

// LoadRegistryFromBytes parses and registers the definitions in data.
// Unknown fields are rejected.
func LoadRegistryFromBytes(data []byte) (*Registry, error) {
	var f itemsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("LoadRegistry: cannot parse items: %w", err)
	}
	reg := NewRegistry()
	for _, m := range f.Materials {
		if err := reg.RegisterMaterial(m); err != nil {
			return nil, err
		}
	}
	for _, c := range f.Consumables {
		if err := reg.RegisterConsumable(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
