package combat

import (
	"github.com/cory-johannsen/veilrun/internal/game/ai"
)

// situation builds the planner's view of the enemy.
func (s *Session) situation() *ai.Situation {
	tmpl := s.env.Template
	lo, hi := tmpl.PreferredBand()
	return &ai.Situation{
		Scope:      tmpl.ID,
		HP:         s.Enemy.HP,
		MaxHP:      s.EnemyStats.MaxHP,
		Mana:       s.Enemy.Mana,
		AP:         s.Enemy.AP,
		Distance:   s.Distance,
		WeaponMin:  s.EnemyStats.RangeMin,
		WeaponMax:  s.EnemyStats.RangeMax,
		BandMin:    lo,
		BandMax:    hi,
		Skills:     tmpl.Skills,
		Cooldowns:  s.Enemy.Cooldowns,
		AttackCost: AttackAPCost,
		MoveCost:   MoveAPCost,
	}
}

// EnemyTurn plays the enemy's whole turn: up to ai.MaxSteps decisions,
// stopping early when the encounter resolves, AP runs low or the planner
// ends the turn. The turn then passes back to the player.
//
// Postcondition: on success the state is PlayerTurn or terminal.
func (s *Session) EnemyTurn() Result {
	if s.State.Resolved() {
		return s.fail(ReasonResolved)
	}
	if s.State != StateEnemyTurn {
		return s.fail(ReasonNotYourTurn)
	}

	for range ai.MaxSteps {
		if s.State != StateEnemyTurn {
			break
		}
		d := s.env.Planner.Decide(s.situation())
		acted := true
		switch d.Action {
		case ai.ActionSkill:
			if d.Skill == nil {
				acted = false
				break
			}
			s.applySkill(SideEnemy, d.Skill)
		case ai.ActionAttack:
			s.normalAttack(SideEnemy)
		case ai.ActionAdvance:
			s.Distance = max(MinDistance, s.Distance-1)
			s.Enemy.AP -= MoveAPCost
			s.logf("%s advances.", s.Enemy.Name)
			continue
		case ai.ActionRetreat:
			s.Distance = min(MaxDistance, s.Distance+1)
			s.Enemy.AP -= MoveAPCost
			s.logf("%s keeps its distance.", s.Enemy.Name)
			continue
		default:
			acted = false
		}
		if !acted || s.State != StateEnemyTurn || s.Enemy.AP <= 1 {
			break
		}
	}

	if s.State == StateEnemyTurn {
		s.endTurn()
	}
	return s.result(true, "")
}
