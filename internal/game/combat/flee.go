package combat

import (
	"math"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/effect"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Flee tunables.
const (
	fleeBase          = 0.42
	fleeSpeedFactor   = 0.028
	fleeDistanceFree  = 2
	fleeDistanceBonus = 0.05
	fleeBossPenalty   = 0.22
	minFleeChance     = 0.05
	maxFleeChance     = 0.9
)

// FleeChance returns the player's current chance to escape.
//
// Postcondition: result in [0.05, 0.9].
func (s *Session) FleeChance() float64 {
	speedDelta := float64(s.playerStats().Speed - s.EnemyStats.Speed)
	raw := fleeBase + speedDelta*fleeSpeedFactor +
		float64(max(0, s.Distance-fleeDistanceFree))*fleeDistanceBonus - s.FleeResist
	if s.Boss {
		raw -= fleeBossPenalty
	}
	return stats.Clamp(raw, minFleeChance, maxFleeChance)
}

// Flee spends AP on an escape attempt. A failed attempt that exhausts the
// player's AP ends the turn.
func (s *Session) Flee() Result {
	if r, ok := s.playerTurn(); !ok {
		return r
	}
	if s.Player.AP < FleeAPCost {
		return s.fail(ReasonFleeAP)
	}
	chance := s.FleeChance()
	s.Player.AP -= FleeAPCost
	pct := int(math.Round(chance * 100))

	if dice.Chance(s.env.Source, chance) {
		s.State = StateFled
		s.logf("Escape succeeds (%d%%).", pct)
	} else {
		s.logf("Escape fails (%d%%).", pct)
		if s.Player.AP <= 0 {
			s.endTurn()
		}
	}
	r := s.result(true, "")
	r.FleeChance = chance
	return r
}

// UseConsumable applies def to the player mid-fight for ConsumableAPCost.
// The caller removes the unit from the bag only on success.
func (s *Session) UseConsumable(def *inventory.ConsumableDef) Result {
	if r, ok := s.playerTurn(); !ok {
		return r
	}
	if s.Player.AP < ConsumableAPCost {
		return s.fail(ReasonItemAP)
	}
	block := s.playerStats()
	if def.Heal > 0 {
		s.Player.heal(def.Heal, block.MaxHP)
	}
	if def.Mana > 0 {
		s.Player.restoreMana(def.Mana, block.MaxMana)
	}
	if def.Cleanse {
		s.Player.Effects.Cleanse(effect.KindDot, effect.KindDebuff)
	}
	for _, e := range def.TimedEffects() {
		_ = s.Player.Effects.Add(e)
	}
	s.Player.AP = max(0, s.Player.AP-ConsumableAPCost)
	s.logf("%s uses %s.", s.Player.Name, def.Name)
	return s.result(true, "")
}
