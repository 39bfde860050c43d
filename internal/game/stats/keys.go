// Package stats folds class, level, gear, passive and conditional modifiers
// into one derived StatBlock.
package stats

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Key names one bonus attribute contributed by passives, innate traits or
// gear affixes.
type Key string

const (
	MaxHPFlat              Key = "maxHpFlat"
	MaxManaFlat            Key = "maxManaFlat"
	AttackFlat             Key = "attackFlat"
	DefenseFlat            Key = "defenseFlat"
	SpeedFlat              Key = "speedFlat"
	CritChanceFlat         Key = "critChanceFlat"
	CritDamageFlat         Key = "critDamageFlat"
	DodgeChanceFlat        Key = "dodgeChanceFlat"
	ParryChanceFlat        Key = "parryChanceFlat"
	ToppleChanceFlat       Key = "toppleChanceFlat"
	StatusChanceFlat       Key = "statusChanceFlat"
	StatusResistFlat       Key = "statusResistFlat"
	APFlat                 Key = "apFlat"
	DamagePercent          Key = "damagePercent"
	DotPercent             Key = "dotPercent"
	ManaRegenFlat          Key = "manaRegenFlat"
	LifeRegenFlat          Key = "lifeRegenFlat"
	HealingDonePercent     Key = "healingDonePercent"
	HealingTakenPercent    Key = "healingTakenPercent"
	GatherBonus            Key = "gatherBonus"
	BossDamagePercent      Key = "bossDamagePercent"
	HighHPDamagePercent    Key = "highHpDamagePercent"
	LowHPDefensePercent    Key = "lowHpDefensePercent"
	HighManaDamagePercent  Key = "highManaDamagePercent"
	LongRangeDamagePercent Key = "longRangeDamagePercent"
	LifeStealPercent       Key = "lifeStealPercent"
	RangeFlat              Key = "rangeFlat"
)

// fractional lists keys whose values are fractions rather than whole points.
var fractional = map[Key]bool{
	CritChanceFlat:         true,
	CritDamageFlat:         true,
	DodgeChanceFlat:        true,
	ParryChanceFlat:        true,
	ToppleChanceFlat:       true,
	StatusChanceFlat:       true,
	StatusResistFlat:       true,
	DamagePercent:          true,
	DotPercent:             true,
	HealingDonePercent:     true,
	HealingTakenPercent:    true,
	BossDamagePercent:      true,
	HighHPDamagePercent:    true,
	LowHPDefensePercent:    true,
	HighManaDamagePercent:  true,
	LongRangeDamagePercent: true,
	LifeStealPercent:       true,
	GatherBonus:            true,
}

var whole = map[Key]bool{
	MaxHPFlat:     true,
	MaxManaFlat:   true,
	AttackFlat:    true,
	DefenseFlat:   true,
	SpeedFlat:     true,
	APFlat:        true,
	ManaRegenFlat: true,
	LifeRegenFlat: true,
	RangeFlat:     true,
}

// Valid reports whether k is a known bonus key.
func (k Key) Valid() bool { return fractional[k] || whole[k] }

// IsFraction reports whether k holds a fraction (0.05 == 5%).
func (k Key) IsFraction() bool { return fractional[k] }

// Bonuses maps bonus keys to additive values.
type Bonuses map[Key]float64

// Get returns the value for k, or 0.
func (b Bonuses) Get(k Key) float64 { return b[k] }

// Merge returns the key-wise sum of all sets. Nil sets are skipped.
//
// Postcondition: the inputs are not modified.
func Merge(sets ...Bonuses) Bonuses {
	out := make(Bonuses)
	for _, s := range sets {
		for k, v := range s {
			out[k] += v
		}
	}
	return out
}

// Keys returns the keys of b in sorted order.
func (b Bonuses) Keys() []Key {
	out := make([]Key, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UnmarshalYAML rejects unknown bonus keys.
func (b *Bonuses) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]float64
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out := make(Bonuses, len(raw))
	for k, v := range raw {
		key := Key(k)
		if !key.Valid() {
			return fmt.Errorf("stats: unknown bonus key %q (line %d)", k, node.Line)
		}
		out[key] = v
	}
	*b = out
	return nil
}
