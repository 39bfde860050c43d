package combat

import (
	"math"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/effect"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// toppleAPPenalty is the AP a successful basic-attack topple removes.
const toppleAPPenalty = 1

// skillPower returns the power a skill resolves with. Player skills never
// hit weaker than a basic attack per AP spent.
func skillPower(side Side, sk *skill.Skill) float64 {
	p := sk.EffectivePower()
	if side != SidePlayer {
		return p
	}
	return math.Max(p, math.Max(1, float64(sk.APCost)/AttackAPCost))
}

// bonusPercent is the attacker's global damage bonus for this hit.
func (s *Session) bonusPercent(att fighter) float64 {
	bonus := att.base.DamagePercent + effect.NetBonus(att.c.Effects, effect.AttrDamagePercent)
	if att.side == SidePlayer {
		if s.Boss {
			bonus += att.base.BossDamagePercent
		}
		if s.Distance >= longRangeDistance {
			bonus += att.base.LongRangeDamagePercent
		}
	}
	return bonus
}

// strike rolls damage and runs it through def's avoidance pipeline.
func (s *Session) strike(att, def fighter, power, extra, armorPen float64) Hit {
	dmg, crit := rollDamage(s.env.Source, att, def, power, extra, armorPen)
	hit := takeDamage(s.env.Source, def, dmg, false)
	hit.Crit = crit && !hit.Dodged
	return hit
}

// logHit writes the standard line for a hit on target.
func (s *Session) logHit(target *Combatant, hit Hit) {
	switch {
	case hit.Dodged:
		s.logf("%s dodges.", target.Name)
	case hit.Parried:
		s.logf("%s parries and takes %d damage.", target.Name, hit.Damage)
	case hit.Crit:
		s.logf("Critical! %s takes %d damage.", target.Name, hit.Damage)
	default:
		s.logf("%s takes %d damage.", target.Name, hit.Damage)
	}
}

// rollStatus attempts to attach a skill's secondary status to def.
func (s *Session) rollStatus(att, def fighter, spec *skill.StatusSpec) {
	if spec == nil {
		return
	}
	chance := statusChance(att, def, spec.Chance, s.Status.forSide(att.side))
	if !dice.Chance(s.env.Source, chance) {
		return
	}
	e, err := spec.Kind.Debuff(spec.Value, spec.Turns)
	if err != nil {
		return
	}
	if def.c.Effects.Add(e) == nil {
		s.logf("%s is %s.", def.c.Name, spec.Kind.Label())
	}
}

// applySkill resolves sk for side, charges its costs and checks for the
// end of the encounter.
//
// Precondition: sk passed the caster's affordability and range checks.
// Postcondition: caster AP >= 0; caster mana in [0, max mana].
func (s *Session) applySkill(side Side, sk *skill.Skill) {
	att := s.fighter(side)
	def := s.fighter(side.Opponent())
	s.logf("%s uses %s.", att.c.Name, sk.Name)

	restoredAP := 0
	switch sk.Kind {
	case skill.KindDamage, skill.KindControl, skill.KindExecute:
		s.resolveStrike(att, def, sk)
	case skill.KindDot:
		s.resolveDot(att, def, sk)
	case skill.KindHeal:
		s.resolveHeal(att, sk)
	case skill.KindLifesteal:
		hit := s.strike(att, def, skillPower(side, sk), s.bonusPercent(att), 0)
		s.logHit(def.c, hit)
		if !hit.Dodged {
			healed := stats.Floor(float64(hit.Damage) * (sk.StealRatio + att.base.LifeStealPercent))
			att.c.heal(healed, att.base.MaxHP)
			s.logf("%s steals %d HP.", att.c.Name, healed)
			s.rollStatus(att, def, sk.Status)
		}
	case skill.KindHealAndDamage:
		hit := s.strike(att, def, skillPower(side, sk), s.bonusPercent(att), sk.ArmorPen)
		s.logHit(def.c, hit)
		if !hit.Dodged {
			healed := stats.Floor(float64(hit.Damage) * sk.HealRatio * (1 + att.base.HealingDonePercent))
			att.c.heal(healed, att.base.MaxHP)
			s.logf("%s recovers %d HP.", att.c.Name, healed)
			s.rollStatus(att, def, sk.Status)
		}
	case skill.KindShield:
		amount := max(minShield, stats.Floor(float64(att.base.MaxHP)*sk.ShieldRatio))
		_ = att.c.Effects.Add(effect.Shield(amount, shieldTurns))
		s.logf("%s gains a %d shield.", att.c.Name, amount)
	case skill.KindBuff:
		restoredAP = s.resolveBuff(att, sk)
	case skill.KindDebuff:
		s.resolveDebuff(att, def, sk)
	}

	att.c.AP = max(0, att.c.AP-sk.APCost+restoredAP)
	maxMana := s.statsOf(side).MaxMana
	att.c.Mana = stats.ClampInt(att.c.Mana-sk.ManaCost, 0, maxMana)
	att.c.Cooldowns[sk.ID] = sk.Cooldown
	s.checkEnd()
}

func (s *Session) resolveStrike(att, def fighter, sk *skill.Skill) {
	dmg, crit := rollDamage(s.env.Source, att, def, skillPower(att.side, sk), s.bonusPercent(att), sk.ArmorPen)
	if sk.Kind == skill.KindExecute && def.hpRatio() <= executeThreshold {
		dmg = stats.Floor(float64(dmg) * (1 + sk.ExecuteBonus))
	}
	hit := takeDamage(s.env.Source, def, dmg, false)
	hit.Crit = crit && !hit.Dodged

	if sk.Kind == skill.KindControl {
		s.Distance = max(MinDistance, s.Distance-sk.PullDistance)
	}
	if counter := def.c.Effects.AmountOf(effect.KindBuff, effect.AttrCounterDamagePercent); counter > 0 && hit.Damage > 0 {
		reflected := stats.Floor(float64(hit.Damage) * counter)
		takeDamage(s.env.Source, att, reflected, true)
		s.logf("%s reflects %d damage.", def.c.Name, reflected)
	}
	s.logHit(def.c, hit)
	if !hit.Dodged {
		s.rollStatus(att, def, sk.Status)
	}
}

func (s *Session) resolveDot(att, def fighter, sk *skill.Skill) {
	power := skillPower(att.side, sk)
	if sk.ImpactPower > 0 {
		impact := math.Max(sk.ImpactPower, power*dotImpactScale)
		hit := s.strike(att, def, impact, s.bonusPercent(att), sk.ArmorPen)
		if hit.Dodged {
			s.logf("%s dodges the impact.", def.c.Name)
			return
		}
		s.logf("%s takes %d impact damage.", def.c.Name, hit.Damage)
	}

	tick := max(minDotTick, stats.Floor(float64(att.eff.Attack)*power*dotTickScale*(1+att.base.DotPercent)))
	turns := sk.Dot.Turns
	_ = def.c.Effects.Add(effect.Dot(sk.Dot.Ailment, tick, turns))
	s.logf("%s suffers %s (%d per turn).", def.c.Name, sk.Dot.Ailment, tick)
	switch sk.Dot.Ailment {
	case effect.AilmentBleed:
		_ = def.c.Effects.Add(effect.Debuff(effect.AttrAttackPercent, ailmentDebuffValue, turns))
		s.logf("%s's attack is reduced.", def.c.Name)
	case effect.AilmentBurn:
		_ = def.c.Effects.Add(effect.Debuff(effect.AttrDefensePercent, ailmentDebuffValue, turns))
		s.logf("%s's armor is reduced.", def.c.Name)
	}
	s.rollStatus(att, def, sk.Status)
}

func (s *Session) resolveHeal(att fighter, sk *skill.Skill) {
	raw := stats.Floor((float64(att.eff.Attack)*sk.HealRatio + float64(att.base.MaxHP)*healMaxHPFraction) *
		(1 + att.base.HealingDonePercent))
	healed := stats.Floor(float64(raw) * (1 + att.base.HealingTakenPercent))
	att.c.heal(healed, att.base.MaxHP)
	s.logf("%s recovers %d HP.", att.c.Name, healed)
}

// resolveBuff applies a self buff and returns the AP it refunds.
func (s *Session) resolveBuff(att fighter, sk *skill.Skill) int {
	b := sk.Buff
	switch {
	case b.Dodge:
		_ = att.c.Effects.Add(effect.GuaranteedDodge(b.Turns))
		s.logf("%s will dodge the next hit.", att.c.Name)
	case b.Attribute != effect.AttrNone:
		_ = att.c.Effects.Add(effect.Buff(b.Attribute, b.Value, b.Turns))
		s.logf("%s gains %s for %d turns.", att.c.Name, b.Attribute, b.Turns)
	}
	if b.RestoreAP > 0 {
		s.logf("%s recovers %d AP.", att.c.Name, b.RestoreAP)
	}
	return max(0, b.RestoreAP)
}

// resolveDebuff lands the debuff whether or not its damage component is
// dodged. A dodge only forfeits the secondary status roll.
func (s *Session) resolveDebuff(att, def fighter, sk *skill.Skill) {
	dodged := false
	if sk.Power > 0 {
		power := math.Max(sk.Power, skillPower(att.side, sk)*debuffPowerScale)
		hit := s.strike(att, def, power, s.bonusPercent(att)*debuffBonusScale, 0)
		s.logHit(def.c, hit)
		dodged = hit.Dodged
	}
	d := sk.Debuff
	_ = def.c.Effects.Add(effect.Debuff(d.Attribute, d.Value, d.Turns))
	if d.Attribute == effect.AttrAPPenalty {
		s.logf("%s will lose AP.", def.c.Name)
	} else {
		s.logf("%s is weakened (%s).", def.c.Name, d.Attribute)
	}
	if !dodged {
		s.rollStatus(att, def, sk.Status)
	}
}

// normalAttack resolves a basic weapon attack for side, which may topple
// the target for one turn.
func (s *Session) normalAttack(side Side) {
	att := s.fighter(side)
	def := s.fighter(side.Opponent())
	hit := s.strike(att, def, 1, 0, 0)
	att.c.AP = max(0, att.c.AP-AttackAPCost)

	switch {
	case hit.Dodged:
		s.logf("%s dodges %s's attack.", def.c.Name, att.c.Name)
	case hit.Parried:
		s.logf("%s partly parries %s's attack (%d).", def.c.Name, att.c.Name, hit.Damage)
	case hit.Crit:
		s.logf("Critical! %s hits %s for %d.", att.c.Name, def.c.Name, hit.Damage)
	default:
		s.logf("%s hits %s for %d.", att.c.Name, def.c.Name, hit.Damage)
	}
	if !hit.Dodged {
		chance := statusChance(att, def, att.base.ToppleChance, s.Status.forSide(side))
		if dice.Chance(s.env.Source, chance) {
			_ = def.c.Effects.Add(effect.Debuff(effect.AttrAPPenalty, toppleAPPenalty, 1))
			s.logf("%s is knocked off balance.", def.c.Name)
		}
	}
	s.checkEnd()
}
