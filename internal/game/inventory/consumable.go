package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/veilrun/internal/game/effect"
)

// DefaultShieldTurns is how long a consumable's shield lasts when the
// definition does not say.
const DefaultShieldTurns = 2

// ConsumableBuff is one timed modifier a consumable grants.
type ConsumableBuff struct {
	Attribute effect.Attribute `yaml:"attribute"`
	Value     float64          `yaml:"value"`
	Turns     int              `yaml:"turns"`
}

// ConsumableDef is a usable item sold by merchants or produced by recipes.
// Heal and Mana apply immediately; buffs and the shield are timed effects.
type ConsumableDef struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Price       int              `yaml:"price"`
	Heal        int              `yaml:"heal"`
	Mana        int              `yaml:"mana"`
	Buffs       []ConsumableBuff `yaml:"buffs"`
	// Cleanse strips dots and debuffs from the user when used in combat.
	Cleanse     bool `yaml:"cleanse"`
	Shield      int  `yaml:"shield"`
	ShieldTurns int  `yaml:"shield_turns"`
}

// Normalize fills defaults for unset fields.
func (d *ConsumableDef) Normalize() {
	if d.Shield > 0 && d.ShieldTurns == 0 {
		d.ShieldTurns = DefaultShieldTurns
	}
}

// Validate checks that the definition satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid and the consumable does something.
func (d *ConsumableDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Price < 0 || d.Heal < 0 || d.Mana < 0 || d.Shield < 0 {
		errs = append(errs, errors.New("price, heal, mana and shield must be >= 0"))
	}
	for i, b := range d.Buffs {
		if !b.Attribute.Valid() || b.Turns < 1 || b.Value <= 0 {
			errs = append(errs, fmt.Errorf("buff %d: attribute %q value %g turns %d invalid", i, b.Attribute, b.Value, b.Turns))
		}
	}
	if d.Shield > 0 && d.ShieldTurns < 1 {
		errs = append(errs, errors.New("shield_turns must be >= 1"))
	}
	if d.Heal == 0 && d.Mana == 0 && len(d.Buffs) == 0 && !d.Cleanse && d.Shield == 0 {
		errs = append(errs, errors.New("consumable has no effect"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("consumable %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// TimedEffects returns the ledger effects the consumable grants, buffs first.
func (d *ConsumableDef) TimedEffects() []effect.Effect {
	out := make([]effect.Effect, 0, len(d.Buffs)+1)
	for _, b := range d.Buffs {
		out = append(out, effect.Buff(b.Attribute, b.Value, b.Turns))
	}
	if d.Shield > 0 {
		out = append(out, effect.Shield(d.Shield, d.ShieldTurns))
	}
	return out
}

// Stack is a quantity of one consumable at one rarity.
type Stack struct {
	ID       string `json:"id"`
	DefID    string `json:"defId"`
	Name     string `json:"name"`
	Rarity   Rarity `json:"rarity"`
	Quantity int    `json:"quantity"`
	Value    int    `json:"value"`
}

// NewStack creates a stack of qty units of def.
//
// Precondition: def is non-nil and qty > 0.
func NewStack(def *ConsumableDef, rarity Rarity, qty, value int) *Stack {
	return &Stack{
		ID:       uuid.NewString(),
		DefID:    def.ID,
		Name:     def.Name,
		Rarity:   rarity,
		Quantity: qty,
		Value:    value,
	}
}
