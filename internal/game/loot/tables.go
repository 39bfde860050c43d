// Package loot generates equipment drops, chest contents, crafted items and
// harvest yields from the content tables.
package loot

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Base is an equipment archetype: the unscaled numbers a generated or
// crafted item starts from.
type Base struct {
	Slot       inventory.Slot       `yaml:"slot"`
	Name       string               `yaml:"name"`
	Attack     int                  `yaml:"attack"`
	Defense    int                  `yaml:"defense"`
	Value      int                  `yaml:"value"`
	WeaponType inventory.WeaponType `yaml:"weapon_type"`
	RangeMin   int                  `yaml:"range_min"`
	RangeMax   int                  `yaml:"range_max"`
}

// Score orders archetypes by strength; ranged weapons are taxed because
// they hit from safety.
func (b Base) Score() float64 {
	tax := 1.0
	if b.WeaponType.Ranged() {
		tax = 0.85
	}
	return float64(b.Attack)*tax + float64(b.Defense)*0.8
}

// item builds an unscaled item of the given slot and rarity from b.
func (b Base) item(slot inventory.Slot, rarity inventory.Rarity) *inventory.Item {
	it := &inventory.Item{
		ID:      inventory.NewItemID(),
		Slot:    slot,
		Name:    b.Name,
		Rarity:  rarity,
		Attack:  b.Attack,
		Defense: b.Defense,
		Value:   b.Value,
	}
	if slot == inventory.SlotWeapon {
		it.WeaponType = b.WeaponType
		if it.WeaponType == "" {
			it.WeaponType = inventory.WeaponMelee
		}
		it.RangeMin, it.RangeMax = b.RangeMin, b.RangeMax
		if it.RangeMin == 0 {
			it.RangeMin, it.RangeMax = it.WeaponType.DefaultRange()
		}
	}
	return it
}

// AffixDef is one entry of the weighted affix pool.
type AffixDef struct {
	Key    stats.Key `yaml:"key"`
	Label  string    `yaml:"label"`
	Min    float64   `yaml:"min"`
	Max    float64   `yaml:"max"`
	Weight int       `yaml:"weight"`
}

// ChestRules describes what an opened chest pays besides its equipment.
type ChestRules struct {
	Gold      dice.Range `yaml:"gold"`
	Materials []string   `yaml:"materials"`
	Quantity  dice.Range `yaml:"quantity"`
}

// NodeDrop is one material a harvest node may yield.
type NodeDrop struct {
	Material string     `yaml:"material"`
	Chance   float64    `yaml:"chance"`
	Quantity dice.Range `yaml:"quantity"`
}

// Node is a harvestable resource kind.
type Node struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Charges int        `yaml:"charges"`
	Drops   []NodeDrop `yaml:"drops"`
}

// ConsumableResult names the consumable a recipe yields.
type ConsumableResult struct {
	ID       string `yaml:"id"`
	Quantity int    `yaml:"quantity"`
}

// Recipe turns materials into a consumable or a piece of equipment.
// Exactly one of Consumable and Equipment is set.
type Recipe struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Rarity      inventory.Rarity  `yaml:"rarity"`
	Materials   map[string]int    `yaml:"materials"`
	Consumable  *ConsumableResult `yaml:"consumable"`
	Equipment   *Base             `yaml:"equipment"`
}

// Tables holds every loot content table.
type Tables struct {
	SlotWeights map[inventory.Slot]int    `yaml:"slot_weights"`
	Bases       map[inventory.Slot][]Base `yaml:"bases"`
	Affixes     []AffixDef                `yaml:"affixes"`
	Chest       ChestRules                `yaml:"chest"`
	Nodes       []*Node                   `yaml:"nodes"`
	Recipes     []*Recipe                 `yaml:"recipes"`
}

// DefaultNodeCharges is how many times a node can be harvested when its
// definition does not say.
const DefaultNodeCharges = 3

func (t *Tables) normalize() {
	for _, n := range t.Nodes {
		if n.Charges == 0 {
			n.Charges = DefaultNodeCharges
		}
	}
	for _, r := range t.Recipes {
		if r.Consumable != nil && r.Consumable.Quantity == 0 {
			r.Consumable.Quantity = 1
		}
	}
}

// Validate checks every table and reports all violations at once.
func (t *Tables) Validate() error {
	var errs []error
	for _, slot := range inventory.Slots {
		if t.SlotWeights[slot] <= 0 {
			errs = append(errs, fmt.Errorf("slot_weights: %s must be > 0", slot))
		}
		if len(t.Bases[slot]) == 0 {
			errs = append(errs, fmt.Errorf("bases: %s has no archetypes", slot))
		}
	}
	for slot, bases := range t.Bases {
		if !slot.Valid() {
			errs = append(errs, fmt.Errorf("bases: unknown slot %q", slot))
		}
		for _, b := range bases {
			if b.Name == "" || b.Attack < 0 || b.Defense < 0 || b.Value < 1 {
				errs = append(errs, fmt.Errorf("bases: %s archetype %q is invalid", slot, b.Name))
			}
		}
	}
	seenKeys := make(map[stats.Key]bool)
	for _, a := range t.Affixes {
		if !a.Key.Valid() {
			errs = append(errs, fmt.Errorf("affixes: unknown key %q", a.Key))
		}
		if seenKeys[a.Key] {
			errs = append(errs, fmt.Errorf("affixes: key %q listed twice", a.Key))
		}
		seenKeys[a.Key] = true
		if a.Weight <= 0 || a.Min <= 0 || a.Max < a.Min {
			errs = append(errs, fmt.Errorf("affixes: %q needs weight > 0 and 0 < min <= max", a.Key))
		}
	}
	if len(t.Chest.Materials) == 0 || t.Chest.Quantity.Min < 1 {
		errs = append(errs, errors.New("chest: needs materials and a quantity >= 1"))
	}
	nodeIDs := make(map[string]bool)
	for _, n := range t.Nodes {
		if n.ID == "" || nodeIDs[n.ID] {
			errs = append(errs, fmt.Errorf("nodes: id %q empty or duplicated", n.ID))
		}
		nodeIDs[n.ID] = true
		for _, d := range n.Drops {
			if d.Material == "" || d.Chance <= 0 || d.Chance > 1 || d.Quantity.Min < 1 {
				errs = append(errs, fmt.Errorf("nodes: %s drop %q is invalid", n.ID, d.Material))
			}
		}
	}
	recipeIDs := make(map[string]bool)
	for _, r := range t.Recipes {
		if r.ID == "" || recipeIDs[r.ID] {
			errs = append(errs, fmt.Errorf("recipes: id %q empty or duplicated", r.ID))
		}
		recipeIDs[r.ID] = true
		if !r.Rarity.Valid() {
			errs = append(errs, fmt.Errorf("recipes: %s has unknown rarity %q", r.ID, r.Rarity))
		}
		if len(r.Materials) == 0 {
			errs = append(errs, fmt.Errorf("recipes: %s needs materials", r.ID))
		}
		if (r.Consumable == nil) == (r.Equipment == nil) {
			errs = append(errs, fmt.Errorf("recipes: %s must yield exactly one of consumable or equipment", r.ID))
		}
		if r.Equipment != nil && !r.Equipment.Slot.Valid() {
			errs = append(errs, fmt.Errorf("recipes: %s has unknown slot %q", r.ID, r.Equipment.Slot))
		}
	}
	return errors.Join(errs...)
}

// Node returns the node kind with id.
func (t *Tables) Node(id string) (*Node, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Recipe returns the recipe with id.
func (t *Tables) Recipe(id string) (*Recipe, bool) {
	for _, r := range t.Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// LoadTablesFromBytes parses and validates loot tables from YAML.
func LoadTablesFromBytes(data []byte) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing loot tables: %w", err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("loot tables: %w", err)
	}
	return &t, nil
}

// LoadTables reads the loot tables from path.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadTablesFromBytes(data)
}
