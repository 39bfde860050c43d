// Package ai decides what an enemy does on its turn. It sees the encounter
// only through a Situation snapshot and never mutates combat state.
package ai

import "github.com/cory-johannsen/veilrun/internal/game/skill"

// Situation captures the acting enemy's view of the encounter at decision time.
//
// Invariant: Skills is the template's skill list; Cooldowns may be nil.
type Situation struct {
	// Scope names the script scope hooks are called in, usually the
	// template ID.
	Scope string
	HP    int
	MaxHP int
	Mana  int
	AP    int
	// Distance is the current gap to the player.
	Distance int
	// WeaponMin and WeaponMax bound the basic attack.
	WeaponMin int
	WeaponMax int
	// BandMin and BandMax bound the distance the enemy prefers to hold.
	BandMin   int
	BandMax   int
	Skills    []*skill.Skill
	Cooldowns map[string]int
	// AttackCost and MoveCost are the AP prices of a basic attack and one step.
	AttackCost int
	MoveCost   int
}

// HPRatio returns HP as a fraction of MaxHP; 0 if MaxHP == 0.
func (s *Situation) HPRatio() float64 {
	if s.MaxHP <= 0 {
		return 0
	}
	return float64(s.HP) / float64(s.MaxHP)
}

// Affordable reports whether sk's costs and cooldown allow casting it now.
func (s *Situation) Affordable(sk *skill.Skill) bool {
	if s.AP < sk.APCost || s.Mana < sk.ManaCost {
		return false
	}
	return s.Cooldowns[sk.ID] <= 0
}

// CanAttack reports whether a basic attack is affordable and in reach.
func (s *Situation) CanAttack() bool {
	return s.AP >= s.AttackCost && s.Distance >= s.WeaponMin && s.Distance <= s.WeaponMax
}
