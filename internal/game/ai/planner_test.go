package ai_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/veilrun/internal/game/ai"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
)

// mockScriptCaller always returns the given value for any hook call.
type mockScriptCaller struct {
	returnVal lua.LValue
	err       error
	calls     []string
}

func (m *mockScriptCaller) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.calls = append(m.calls, scope+"/"+hook)
	if m.err != nil {
		return lua.LNil, m.err
	}
	if m.returnVal == nil {
		return lua.LNil, nil
	}
	return m.returnVal, nil
}

func normalized(s *skill.Skill) *skill.Skill {
	s.Normalize()
	return s
}

func slash() *skill.Skill {
	return normalized(&skill.Skill{ID: "slash", Name: "Slash", APCost: 2, Power: 1.2, Kind: skill.KindDamage})
}

func bolt() *skill.Skill {
	return normalized(&skill.Skill{ID: "bolt", Name: "Bolt", APCost: 3, ManaCost: 10, Power: 1.6,
		RangeMin: 2, RangeMax: 4, Kind: skill.KindDamage})
}

func mend() *skill.Skill {
	return normalized(&skill.Skill{ID: "mend", Name: "Mend", APCost: 2, Kind: skill.KindHeal, AIHook: "mend_when_hurt"})
}

func situation(skills ...*skill.Skill) *ai.Situation {
	return &ai.Situation{
		Scope:      "orc_shaman",
		HP:         40,
		MaxHP:      40,
		Mana:       20,
		AP:         4,
		Distance:   1,
		WeaponMin:  1,
		WeaponMax:  1,
		BandMin:    1,
		BandMax:    4,
		Skills:     skills,
		AttackCost: 2,
		MoveCost:   2,
	}
}

func TestPolicy_PrefersHighestRankedUsableSkill(t *testing.T) {
	p := ai.NewPolicy(nil, nil)
	sit := situation(slash(), bolt())
	sit.Distance = 3

	d := p.Decide(sit)
	require.Equal(t, ai.ActionSkill, d.Action)
	assert.Equal(t, "bolt", d.Skill.ID)

	sit.Distance = 1
	d = p.Decide(sit)
	require.Equal(t, ai.ActionSkill, d.Action)
	assert.Equal(t, "slash", d.Skill.ID, "bolt is out of range at distance 1")
}

func TestPolicy_SkipsUnaffordableAndCoolingSkills(t *testing.T) {
	p := ai.NewPolicy(nil, nil)
	sit := situation(bolt())
	sit.Distance = 3
	sit.Mana = 5
	assert.Equal(t, ai.ActionEndTurn, p.Decide(sit).Action, "inside the band with nothing usable")

	sit.Mana = 20
	sit.Cooldowns = map[string]int{"bolt": 1}
	sit.Distance = 5
	assert.Equal(t, ai.ActionAdvance, p.Decide(sit).Action)
}

func TestPolicy_FallsBackToBasicAttack(t *testing.T) {
	p := ai.NewPolicy(nil, nil)
	sit := situation(bolt())
	sit.Mana = 0
	assert.Equal(t, ai.ActionAttack, p.Decide(sit).Action)
}

func TestPolicy_RepositionsTowardBand(t *testing.T) {
	p := ai.NewPolicy(nil, nil)
	sit := situation()
	sit.WeaponMin, sit.WeaponMax = 3, 4
	sit.BandMin, sit.BandMax = 3, 4

	sit.Distance = 6
	assert.Equal(t, ai.ActionAdvance, p.Decide(sit).Action)
	sit.Distance = 1
	assert.Equal(t, ai.ActionRetreat, p.Decide(sit).Action)

	sit.Distance = 3
	sit.AP = 1
	assert.Equal(t, ai.ActionEndTurn, p.Decide(sit).Action)
}

func TestPolicy_HookGatesSkill(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LFalse}
	p := ai.NewPolicy(caller, nil)
	sit := situation(mend())

	assert.Equal(t, ai.ActionAttack, p.Decide(sit).Action)
	assert.Equal(t, []string{"orc_shaman/mend_when_hurt"}, caller.calls)

	caller.returnVal = lua.LTrue
	d := p.Decide(sit)
	require.Equal(t, ai.ActionSkill, d.Action)
	assert.Equal(t, "mend", d.Skill.ID)
}

func TestPolicy_HookErrorIsPreconditionFalse(t *testing.T) {
	caller := &mockScriptCaller{err: errors.New("boom")}
	p := ai.NewPolicy(caller, nil)
	assert.Equal(t, ai.ActionAttack, p.Decide(situation(mend())).Action)
}

func TestPolicy_NilCallerIgnoresHooks(t *testing.T) {
	p := ai.NewPolicy(nil, nil)
	d := p.Decide(situation(mend()))
	require.Equal(t, ai.ActionSkill, d.Action)
	assert.Equal(t, "mend", d.Skill.ID)
}

func TestPolicy_Decide_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := ai.NewPolicy(nil, nil)
		sit := situation(slash(), bolt())
		sit.AP = rapid.IntRange(0, 8).Draw(rt, "ap")
		sit.Mana = rapid.IntRange(0, 30).Draw(rt, "mana")
		sit.Distance = rapid.IntRange(1, 9).Draw(rt, "distance")

		d := p.Decide(sit)
		switch d.Action {
		case ai.ActionSkill:
			assert.True(rt, sit.Affordable(d.Skill))
			assert.True(rt, d.Skill.InRange(sit.Distance, 0))
		case ai.ActionAttack:
			assert.True(rt, sit.CanAttack())
		case ai.ActionAdvance, ai.ActionRetreat:
			assert.GreaterOrEqual(rt, sit.AP, sit.MoveCost)
		}
	})
}

func TestSituation_HPRatio(t *testing.T) {
	sit := situation()
	sit.HP = 10
	assert.InDelta(t, 0.25, sit.HPRatio(), 1e-9)
	sit.MaxHP = 0
	assert.Zero(t, sit.HPRatio())
}
