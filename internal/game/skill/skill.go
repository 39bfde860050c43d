// Package skill defines the static skill descriptors shared by player
// classes and enemy templates.
package skill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/veilrun/internal/game/effect"
)

// EffectKind is the closed set of skill resolution algorithms.
type EffectKind string

const (
	KindDamage        EffectKind = "damage"
	KindControl       EffectKind = "control"
	KindExecute       EffectKind = "execute"
	KindDot           EffectKind = "dot"
	KindHeal          EffectKind = "heal"
	KindLifesteal     EffectKind = "lifesteal"
	KindShield        EffectKind = "shield"
	KindBuff          EffectKind = "buff"
	KindDebuff        EffectKind = "debuff"
	KindHealAndDamage EffectKind = "heal_and_damage"
)

// Kinds lists every effect kind in declaration order.
var Kinds = []EffectKind{
	KindDamage, KindControl, KindExecute, KindDot, KindHeal,
	KindLifesteal, KindShield, KindBuff, KindDebuff, KindHealAndDamage,
}

// Valid reports whether k is a known effect kind.
func (k EffectKind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Offensive reports whether k targets the opponent.
func (k EffectKind) Offensive() bool {
	switch k {
	case KindHeal, KindShield, KindBuff:
		return false
	}
	return true
}

// Tunables used when a descriptor leaves a field unset.
const (
	DefaultPower           = 1.0
	DefaultHealRatio       = 0.7
	DefaultHybridHealRatio = 0.5
	DefaultStealRatio      = 0.4
	DefaultShieldRatio     = 0.25
	DefaultExecuteBonus    = 0.5
	DefaultPullDistance    = 1
	DefaultDotTurns        = 3
	DefaultBuffValue       = 0.2
	DefaultBuffTurns       = 2
	DefaultDodgeTurns      = 1
	DefaultDebuffValue     = 0.15
	DefaultDebuffTurns     = 2
	DefaultStatusChance    = 0.2
	DefaultStatusTurns     = 1
	DefaultStatusValue     = 1.0
)

// UnsetPowerRank is the priority the enemy policy gives a skill without a
// power coefficient.
const UnsetPowerRank = 0.2

// DotSpec configures a damage-over-time skill.
type DotSpec struct {
	Ailment effect.Ailment `yaml:"ailment" json:"ailment"`
	Turns   int            `yaml:"turns" json:"turns"`
}

// BuffSpec configures a self buff. Dodge selects a guaranteed dodge instead
// of an attribute modifier; an empty Attribute with RestoreAP > 0 only
// refunds action points.
type BuffSpec struct {
	Attribute effect.Attribute `yaml:"attribute" json:"attribute,omitempty"`
	Dodge     bool             `yaml:"dodge" json:"dodge,omitempty"`
	Value     float64          `yaml:"value" json:"value"`
	Turns     int              `yaml:"turns" json:"turns"`
	RestoreAP int              `yaml:"restore_ap" json:"restoreAp,omitempty"`
}

// DebuffSpec configures the modifier a debuff skill leaves on its target.
type DebuffSpec struct {
	Attribute effect.Attribute `yaml:"attribute" json:"attribute"`
	Value     float64          `yaml:"value" json:"value"`
	Turns     int              `yaml:"turns" json:"turns"`
}

// StatusSpec is a secondary status rolled after an unavoided hit.
type StatusSpec struct {
	Kind   effect.Status `yaml:"kind" json:"kind"`
	Chance float64       `yaml:"chance" json:"chance"`
	Turns  int           `yaml:"turns" json:"turns"`
	Value  float64       `yaml:"value" json:"value"`
}

// Skill is a static skill descriptor.
type Skill struct {
	ID           string      `yaml:"id" json:"id"`
	Name         string      `yaml:"name" json:"name"`
	Description  string      `yaml:"description" json:"description,omitempty"`
	UnlockLevel  int         `yaml:"unlock_level" json:"unlockLevel"`
	APCost       int         `yaml:"ap_cost" json:"apCost"`
	ManaCost     int         `yaml:"mana_cost" json:"manaCost"`
	Cooldown     int         `yaml:"cooldown" json:"cooldown"`
	RangeMin     int         `yaml:"range_min" json:"rangeMin"`
	RangeMax     int         `yaml:"range_max" json:"rangeMax"`
	Kind         EffectKind  `yaml:"effect" json:"effect"`
	Power        float64     `yaml:"power" json:"power,omitempty"`
	ArmorPen     float64     `yaml:"armor_pen" json:"armorPen,omitempty"`
	HealRatio    float64     `yaml:"heal_ratio" json:"healRatio,omitempty"`
	StealRatio   float64     `yaml:"steal_ratio" json:"stealRatio,omitempty"`
	ShieldRatio  float64     `yaml:"shield_ratio" json:"shieldRatio,omitempty"`
	ExecuteBonus float64     `yaml:"execute_bonus" json:"executeBonus,omitempty"`
	PullDistance int         `yaml:"pull_distance" json:"pullDistance,omitempty"`
	ImpactPower  float64     `yaml:"impact_power" json:"impactPower,omitempty"`
	Dot          *DotSpec    `yaml:"dot" json:"dot,omitempty"`
	Buff         *BuffSpec   `yaml:"buff" json:"buff,omitempty"`
	Debuff       *DebuffSpec `yaml:"debuff" json:"debuff,omitempty"`
	Status       *StatusSpec `yaml:"status" json:"status,omitempty"`
	// AIHook names an optional Lua precondition the enemy policy consults.
	AIHook string `yaml:"ai_hook" json:"aiHook,omitempty"`
}

// EffectivePower returns the power coefficient used for resolution.
func (s *Skill) EffectivePower() float64 {
	if s.Power > 0 {
		return s.Power
	}
	return DefaultPower
}

// Rank returns the priority the enemy policy sorts skills by.
func (s *Skill) Rank() float64 {
	if s.Power > 0 {
		return s.Power
	}
	return UnsetPowerRank
}

// Unrestricted reports whether the skill ignores distance.
func (s *Skill) Unrestricted() bool {
	return s.RangeMin == 0 && s.RangeMax == 0
}

// InRange reports whether distance is within the skill's window, extending
// the upper bound by bonus.
func (s *Skill) InRange(distance, bonus int) bool {
	if s.Unrestricted() {
		return true
	}
	lo := max(0, s.RangeMin)
	hi := max(s.RangeMin, s.RangeMax+bonus)
	return distance >= lo && distance <= hi
}

// Normalize fills defaults for unset kind-specific fields. Offensive skills
// without a declared window become melee (1-1).
//
// Postcondition: the kind's parameter block is non-nil where the kind requires one.
func (s *Skill) Normalize() {
	if s.UnlockLevel < 1 {
		s.UnlockLevel = 1
	}
	if s.Kind.Offensive() && s.Unrestricted() {
		s.RangeMin, s.RangeMax = 1, 1
	}
	switch s.Kind {
	case KindHeal:
		if s.HealRatio == 0 {
			s.HealRatio = DefaultHealRatio
		}
	case KindHealAndDamage:
		if s.HealRatio == 0 {
			s.HealRatio = DefaultHybridHealRatio
		}
	case KindLifesteal:
		if s.StealRatio == 0 {
			s.StealRatio = DefaultStealRatio
		}
	case KindShield:
		if s.ShieldRatio == 0 {
			s.ShieldRatio = DefaultShieldRatio
		}
	case KindExecute:
		if s.ExecuteBonus == 0 {
			s.ExecuteBonus = DefaultExecuteBonus
		}
	case KindControl:
		if s.PullDistance == 0 {
			s.PullDistance = DefaultPullDistance
		}
	case KindDot:
		if s.Dot == nil {
			s.Dot = &DotSpec{}
		}
		if s.Dot.Ailment == "" {
			s.Dot.Ailment = effect.AilmentCorruption
		}
		if s.Dot.Turns == 0 {
			s.Dot.Turns = DefaultDotTurns
		}
	case KindBuff:
		if s.Buff == nil {
			s.Buff = &BuffSpec{Attribute: effect.AttrAttackPercent}
		}
		if s.Buff.Dodge {
			if s.Buff.Turns == 0 {
				s.Buff.Turns = DefaultDodgeTurns
			}
		} else if s.Buff.Attribute != effect.AttrNone {
			if s.Buff.Value == 0 {
				s.Buff.Value = DefaultBuffValue
			}
			if s.Buff.Turns == 0 {
				s.Buff.Turns = DefaultBuffTurns
			}
		}
	case KindDebuff:
		if s.Debuff == nil {
			s.Debuff = &DebuffSpec{}
		}
		if s.Debuff.Attribute == effect.AttrNone {
			s.Debuff.Attribute = effect.AttrDefensePercent
		}
		if s.Debuff.Value == 0 {
			s.Debuff.Value = DefaultDebuffValue
		}
		if s.Debuff.Turns == 0 {
			s.Debuff.Turns = DefaultDebuffTurns
		}
	}
	if s.Status != nil {
		if s.Status.Chance == 0 {
			s.Status.Chance = DefaultStatusChance
		}
		if s.Status.Turns == 0 {
			s.Status.Turns = DefaultStatusTurns
		}
		if s.Status.Value == 0 {
			s.Status.Value = DefaultStatusValue
		}
	}
}

// Validate checks every invariant of a normalized descriptor and reports all
// violations at once.
func (s *Skill) Validate() error {
	var errs []string
	if s.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if s.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if !s.Kind.Valid() {
		errs = append(errs, fmt.Sprintf("unknown effect %q", s.Kind))
	}
	if s.APCost < 0 || s.ManaCost < 0 || s.Cooldown < 0 {
		errs = append(errs, "costs and cooldown must be >= 0")
	}
	if s.RangeMin < 0 || s.RangeMax < s.RangeMin {
		errs = append(errs, fmt.Sprintf("range window %d-%d is invalid", s.RangeMin, s.RangeMax))
	}
	if s.Power < 0 || s.ArmorPen < 0 || s.ArmorPen > 1 {
		errs = append(errs, "power must be >= 0 and armor_pen in [0,1]")
	}
	if s.Dot != nil && (!s.Dot.Ailment.Valid() || s.Dot.Turns < 1) {
		errs = append(errs, fmt.Sprintf("dot ailment %q/turns %d invalid", s.Dot.Ailment, s.Dot.Turns))
	}
	if s.Buff != nil {
		switch {
		case s.Buff.Dodge:
			if s.Buff.Turns < 1 {
				errs = append(errs, "dodge buff turns must be >= 1")
			}
		case s.Buff.Attribute == effect.AttrNone:
			if s.Buff.RestoreAP <= 0 {
				errs = append(errs, "buff needs an attribute, dodge, or restore_ap")
			}
		case !s.Buff.Attribute.Valid() || s.Buff.Turns < 1:
			errs = append(errs, fmt.Sprintf("buff attribute %q/turns %d invalid", s.Buff.Attribute, s.Buff.Turns))
		}
		if s.Buff.RestoreAP < 0 {
			errs = append(errs, "restore_ap must be >= 0")
		}
	}
	if s.Debuff != nil && (!s.Debuff.Attribute.Valid() || s.Debuff.Turns < 1) {
		errs = append(errs, fmt.Sprintf("debuff attribute %q/turns %d invalid", s.Debuff.Attribute, s.Debuff.Turns))
	}
	if s.Status != nil && (!s.Status.Kind.Valid() || s.Status.Turns < 1 || s.Status.Chance < 0) {
		errs = append(errs, fmt.Sprintf("status %q invalid", s.Status.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("skill %q: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}

// ErrUnknownSkill is returned by Catalog lookups that miss.
var ErrUnknownSkill = errors.New("unknown skill")
