package ai

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/skill"
)

// MaxSteps bounds the number of decisions an enemy makes in one turn.
const MaxSteps = 10

// ScriptCaller is the interface required by the Policy to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Action is the kind of step an enemy takes.
type Action string

const (
	ActionSkill   Action = "skill"
	ActionAttack  Action = "attack"
	ActionAdvance Action = "advance"
	ActionRetreat Action = "retreat"
	ActionEndTurn Action = "end_turn"
)

// Decision is one step chosen by the Policy.
type Decision struct {
	Action Action
	// Skill is set only for ActionSkill.
	Skill *skill.Skill
}

// Policy is the fixed-priority enemy behaviour: strongest usable skill,
// then a basic attack, then a step toward the preferred range band.
type Policy struct {
	caller ScriptCaller
	logger *zap.Logger
}

// NewPolicy constructs a Policy. A nil caller disables skill hooks; a nil
// logger discards hook failures.
func NewPolicy(caller ScriptCaller, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{caller: caller, logger: logger}
}

// Decide picks the next step for the enemy described by sit.
//
// Precondition: sit must not be nil.
// Postcondition: a returned ActionSkill names an affordable, in-range skill
// whose hook (if any) passed; never returns an error for Lua failures
// (they are treated as precondition-false).
func (p *Policy) Decide(sit *Situation) Decision {
	if sk := p.bestSkill(sit); sk != nil {
		return Decision{Action: ActionSkill, Skill: sk}
	}
	if sit.CanAttack() {
		return Decision{Action: ActionAttack}
	}
	if sit.AP >= sit.MoveCost {
		switch {
		case sit.Distance > sit.BandMax:
			return Decision{Action: ActionAdvance}
		case sit.Distance < sit.BandMin:
			return Decision{Action: ActionRetreat}
		}
	}
	return Decision{Action: ActionEndTurn}
}

// bestSkill returns the highest-ranked usable skill, or nil. Ties keep
// template order.
func (p *Policy) bestSkill(sit *Situation) *skill.Skill {
	var usable []*skill.Skill
	for _, sk := range sit.Skills {
		if !sit.Affordable(sk) || !sk.InRange(sit.Distance, 0) {
			continue
		}
		if !p.hookAllows(sit, sk) {
			continue
		}
		usable = append(usable, sk)
	}
	if len(usable) == 0 {
		return nil
	}
	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Rank() > usable[j].Rank() })
	return usable[0]
}

// hookAllows evaluates sk's Lua precondition. Skills without a hook, or a
// Policy without a caller, always pass.
func (p *Policy) hookAllows(sit *Situation, sk *skill.Skill) bool {
	if sk.AIHook == "" || p.caller == nil {
		return true
	}
	val, err := p.caller.CallHook(sit.Scope, sk.AIHook,
		lua.LNumber(sit.HP), lua.LNumber(sit.MaxHP), lua.LNumber(sit.Mana), lua.LNumber(sit.Distance))
	if err != nil {
		p.logger.Warn("ai hook failed",
			zap.String("scope", sit.Scope),
			zap.String("hook", sk.AIHook),
			zap.Error(err),
		)
		return false
	}
	return val == lua.LTrue
}
