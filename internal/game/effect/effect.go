// Package effect provides the per-combatant ledger of timed combat effects:
// buffs, debuffs, damage-over-time, shields, and one-shot guaranteed dodges.
package effect

import "fmt"

// Kind tags the variant of an Effect.
type Kind string

const (
	KindBuff   Kind = "buff"
	KindDebuff Kind = "debuff"
	KindDot    Kind = "dot"
	KindShield Kind = "shield"
	// KindDodge is a one-shot guaranteed avoidance of the next hit.
	KindDodge Kind = "dodge"
)

// Valid reports whether k is one of the closed set of effect kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBuff, KindDebuff, KindDot, KindShield, KindDodge:
		return true
	}
	return false
}

// Attribute names the stat a buff or debuff modifies.
type Attribute string

const (
	AttrNone                 Attribute = ""
	AttrAttackPercent        Attribute = "attackPercent"
	AttrDefensePercent       Attribute = "defensePercent"
	AttrDamagePercent        Attribute = "damagePercent"
	AttrCritChance           Attribute = "critChance"
	AttrCritDamage           Attribute = "critDamage"
	AttrDodgeChance          Attribute = "dodgeChance"
	AttrParryChance          Attribute = "parryChance"
	AttrCounterDamagePercent Attribute = "counterDamagePercent"
	// AttrAPPenalty removes action points at the start of the afflicted side's turn.
	AttrAPPenalty Attribute = "apPenalty"
)

// Valid reports whether a is a modifiable attribute. AttrNone is not valid.
func (a Attribute) Valid() bool {
	switch a {
	case AttrAttackPercent, AttrDefensePercent, AttrDamagePercent, AttrCritChance, AttrCritDamage,
		AttrDodgeChance, AttrParryChance, AttrCounterDamagePercent, AttrAPPenalty:
		return true
	}
	return false
}

// Ailment flavours a damage-over-time effect.
type Ailment string

const (
	AilmentCorruption Ailment = "corruption"
	AilmentBleed      Ailment = "bleed"
	AilmentBurn       Ailment = "burn"
	AilmentPoison     Ailment = "poison"
	AilmentCurse      Ailment = "curse"
)

// Valid reports whether a is a known ailment.
func (a Ailment) Valid() bool {
	switch a {
	case AilmentCorruption, AilmentBleed, AilmentBurn, AilmentPoison, AilmentCurse:
		return true
	}
	return false
}

// Effect is one timed entry in a Ledger.
//
// Attribute is set only for buffs and debuffs; Ailment only for dots.
// Shield and dot magnitudes are whole numbers.
type Effect struct {
	Kind      Kind      `json:"kind"`
	Attribute Attribute `json:"attribute,omitempty"`
	Ailment   Ailment   `json:"ailment,omitempty"`
	Magnitude float64   `json:"magnitude"`
	Turns     int       `json:"turns"`
}

// Buff builds a buff on attr.
func Buff(attr Attribute, magnitude float64, turns int) Effect {
	return Effect{Kind: KindBuff, Attribute: attr, Magnitude: magnitude, Turns: turns}
}

// Debuff builds a debuff on attr.
func Debuff(attr Attribute, magnitude float64, turns int) Effect {
	return Effect{Kind: KindDebuff, Attribute: attr, Magnitude: magnitude, Turns: turns}
}

// Dot builds a damage-over-time effect dealing perTurn each turn start.
func Dot(ailment Ailment, perTurn, turns int) Effect {
	return Effect{Kind: KindDot, Ailment: ailment, Magnitude: float64(perTurn), Turns: turns}
}

// Shield builds an absorbing shield of the given size.
func Shield(amount, turns int) Effect {
	return Effect{Kind: KindShield, Magnitude: float64(amount), Turns: turns}
}

// GuaranteedDodge builds a one-shot dodge lasting at most turns.
func GuaranteedDodge(turns int) Effect {
	return Effect{Kind: KindDodge, Magnitude: 1, Turns: turns}
}

// Validate checks the variant's invariants.
//
// Postcondition: Returns nil iff the kind is known, Turns >= 1, the magnitude
// is non-negative, and kind-specific fields are consistent.
func (e Effect) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("effect: unknown kind %q", e.Kind)
	}
	if e.Turns < 1 {
		return fmt.Errorf("effect %s: turns must be >= 1, got %d", e.Kind, e.Turns)
	}
	if e.Magnitude < 0 {
		return fmt.Errorf("effect %s: magnitude must be >= 0, got %g", e.Kind, e.Magnitude)
	}
	switch e.Kind {
	case KindBuff, KindDebuff:
		if !e.Attribute.Valid() {
			return fmt.Errorf("effect %s: unknown attribute %q", e.Kind, e.Attribute)
		}
	case KindDot:
		if !e.Ailment.Valid() {
			return fmt.Errorf("effect dot: unknown ailment %q", e.Ailment)
		}
	case KindShield, KindDodge:
		if e.Attribute != AttrNone {
			return fmt.Errorf("effect %s: attribute must be empty", e.Kind)
		}
	}
	return nil
}
