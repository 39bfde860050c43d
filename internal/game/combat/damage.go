package combat

import (
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/effect"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Avoidance and damage tunables.
const (
	maxDodgeChance        = 0.72
	maxParryChance        = 0.62
	minParryReduction     = 0.2
	maxParryReduction     = 0.85
	maxBuffedCritChance   = 0.9
	minBuffedCritDamage   = 0.2
	maxBuffedCritDamage   = 1.5
	damageJitterMin       = -4
	damageJitterMax       = 6
	armorFactor           = 5
	executeThreshold      = 0.35
	longRangeDistance     = 4
	dotImpactScale        = 0.45
	dotTickScale          = 0.7
	minDotTick            = 2
	ailmentDebuffValue    = 0.1
	debuffPowerScale      = 0.7
	debuffBonusScale      = 0.55
	healMaxHPFraction     = 0.05
	minShield             = 8
	shieldTurns           = 2
	enemyStatusBonusScale = 0.35
	statusResistScale     = 0.45
	minStatusChance       = 0.03
	maxStatusChance       = 0.95
)

// fighter is one side's effective view for a single resolution: its derived
// stats with the active effects folded into attack, defense and crit.
type fighter struct {
	side Side
	c    *Combatant
	base stats.Block
	eff  stats.Block
}

func newFighter(side Side, c *Combatant, base stats.Block) fighter {
	l := c.Effects
	eff := base
	eff.Attack = stats.Floor(float64(base.Attack) * effect.StatMultiplier(l, effect.AttrAttackPercent))
	eff.Defense = stats.Floor(float64(base.Defense) * effect.StatMultiplier(l, effect.AttrDefensePercent))
	eff.CritChance = stats.Clamp(base.CritChance+effect.NetBonus(l, effect.AttrCritChance), 0, maxBuffedCritChance)
	eff.CritDamage = stats.Clamp(base.CritDamage+effect.NetBonus(l, effect.AttrCritDamage), minBuffedCritDamage, maxBuffedCritDamage)
	return fighter{side: side, c: c, base: base, eff: eff}
}

// hpRatio returns the fighter's HP as a fraction of its maximum.
func (f fighter) hpRatio() float64 {
	return float64(f.c.HP) / float64(max(1, f.base.MaxHP))
}

// Hit is the outcome of the avoidance pipeline.
type Hit struct {
	// Damage is what reached HP after parry and shields.
	Damage  int
	Crit    bool
	Dodged  bool
	Parried bool
}

// rollDamage computes a hit's raw damage before avoidance.
//
// Postcondition: damage >= 1.
func rollDamage(src dice.Source, att, def fighter, power, extraPercent, armorPen float64) (int, bool) {
	base := float64(att.eff.Attack)*power + float64(dice.Between(src, damageJitterMin, damageJitterMax))
	crit := dice.Chance(src, att.eff.CritChance)
	mult := 1.0
	if crit {
		mult += att.eff.CritDamage
	}
	defense := float64(def.eff.Defense) * (1 - armorPen)
	mitigation := 100 / (100 + defense*armorFactor)
	return max(1, stats.Floor(base*mult*mitigation*(1+extraPercent))), crit
}

// takeDamage runs the avoidance pipeline on target: guaranteed dodge,
// dodge roll, parry roll, then shields, then HP. ignoreAvoidance skips
// straight to shields.
//
// Postcondition: 0 <= target HP; returned Damage <= incoming.
func takeDamage(src dice.Source, target fighter, incoming int, ignoreAvoidance bool) Hit {
	l := target.c.Effects
	damage := incoming
	parried := false
	if !ignoreAvoidance {
		if l.ConsumeGuaranteedDodge() {
			return Hit{Dodged: true}
		}
		dodge := stats.Clamp(target.base.DodgeChance+effect.NetBonus(l, effect.AttrDodgeChance), 0, maxDodgeChance)
		if dice.Chance(src, dodge) {
			return Hit{Dodged: true}
		}
		parry := stats.Clamp(target.base.ParryChance+effect.NetBonus(l, effect.AttrParryChance), 0, maxParryChance)
		if dice.Chance(src, parry) {
			reduction := stats.Clamp(target.base.ParryReduction, minParryReduction, maxParryReduction)
			damage = max(0, stats.Floor(float64(damage)*(1-reduction)))
			parried = true
			if damage == 0 {
				return Hit{Parried: true}
			}
		}
	}
	damage = l.AbsorbShields(damage)
	target.c.HP = max(0, target.c.HP-damage)
	return Hit{Damage: damage, Parried: parried}
}

// statusChance combines a status's base chance with the attacker's bonus,
// the defender's resistance and the difficulty scale.
//
// Postcondition: result in [0.03, 0.95].
func statusChance(att, def fighter, base, scale float64) float64 {
	bonus := att.base.StatusChance
	if att.side == SideEnemy {
		bonus = att.base.ToppleChance * enemyStatusBonusScale
	}
	raw := (base + bonus - def.base.StatusResist*statusResistScale) * scale
	return stats.Clamp(raw, minStatusChance, maxStatusChance)
}
