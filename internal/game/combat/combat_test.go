package combat_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/veilrun/internal/game/ai"
	"github.com/cory-johannsen/veilrun/internal/game/combat"
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/effect"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/npc"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

const wraithYAML = `
id: wraith
name: Wraith
stats: {max_hp: 100, attack: 10, defense: 0, speed: 9, range_min: 1, range_max: 2}
`

// lowSource always draws zero: every chance above zero succeeds and every
// range yields its lower bound.
type lowSource struct{}

func (lowSource) Intn(int) int { return 0 }

// maxSource always draws n-1: every chance below one fails and every range
// yields its upper bound.
type maxSource struct{}

func (maxSource) Intn(n int) int { return n - 1 }

type stubPlanner struct {
	decision ai.Decision
	calls    int
}

func (p *stubPlanner) Decide(*ai.Situation) ai.Decision {
	p.calls++
	return p.decision
}

func endTurnPlanner() *stubPlanner {
	return &stubPlanner{decision: ai.Decision{Action: ai.ActionEndTurn}}
}

func playerBlock() stats.Block {
	return stats.Block{
		MaxHP:          100,
		MaxMana:        30,
		Attack:         20,
		Speed:          10,
		AP:             6,
		CritDamage:     0.45,
		ParryReduction: stats.DefaultParryReduction,
		RangeMin:       1,
		RangeMax:       2,
	}
}

func wraith(t *testing.T) *npc.Template {
	t.Helper()
	tmpl, err := npc.LoadTemplateFromBytes([]byte(wraithYAML))
	require.NoError(t, err)
	return tmpl
}

func playerSkills(t *testing.T, skills ...*skill.Skill) *skill.Catalog {
	t.Helper()
	c := skill.NewCatalog()
	for _, s := range skills {
		require.NoError(t, c.Register(s))
	}
	return c
}

type fixture struct {
	src      dice.Source
	block    stats.Block
	hp       int
	skills   *skill.Catalog
	planner  combat.Planner
	instance *npc.Instance
	scaling  stats.Scaling
}

func newFixture(t *testing.T, src dice.Source) *fixture {
	return &fixture{
		src:     src,
		block:   playerBlock(),
		hp:      100,
		skills:  playerSkills(t),
		planner: endTurnPlanner(),
		scaling: stats.Identity,
	}
}

func (f *fixture) env(tmpl *npc.Template) combat.Env {
	block := f.block
	return combat.Env{
		Source:       f.src,
		PlayerStats:  func(int, int) stats.Block { return block },
		PlayerSkills: f.skills,
		Template:     tmpl,
		Planner:      f.planner,
	}
}

func (f *fixture) start(t *testing.T) (*combat.Session, combat.Result) {
	t.Helper()
	tmpl := wraith(t)
	inst := f.instance
	if inst == nil {
		inst = npc.NewInstance(tmpl, 0, 0)
	}
	return combat.Start(combat.Encounter{
		Instance:   inst,
		Template:   tmpl,
		Scaling:    f.scaling,
		PlayerName: "Hero",
		PlayerHP:   f.hp,
		PlayerMana: f.block.MaxMana,
	}, f.env(tmpl))
}

func TestStart_ScalesEnemyAndRestoresPersistedHealth(t *testing.T) {
	f := newFixture(t, lowSource{})
	tmpl := wraith(t)
	f.instance = npc.NewInstance(tmpl, 0, 0)
	f.instance.Persist(50, 0)
	f.scaling = stats.Scaling{HP: 1.28, Damage: 1, Armor: 1, Tactics: 1}

	s, r := f.start(t)

	require.True(t, r.OK)
	assert.Equal(t, 128, s.EnemyStats.MaxHP)
	assert.Equal(t, 64, s.Enemy.HP)
	assert.Equal(t, combat.StartDistanceMin, s.Distance)
	assert.Equal(t, combat.StatePlayerTurn, s.State)
	assert.Equal(t, 6, s.Player.AP)
	assert.NotEmpty(t, r.Events)
}

func TestStart_PanicsWithoutTemplate(t *testing.T) {
	assert.Panics(t, func() {
		combat.Start(combat.Encounter{}, combat.Env{Source: lowSource{}})
	})
}

func TestStart_FasterEnemyActsFirst(t *testing.T) {
	f := newFixture(t, maxSource{})
	f.block.Speed = 5

	s, _ := f.start(t)

	assert.Equal(t, combat.StateEnemyTurn, s.State)
	assert.Equal(t, combat.SideEnemy, s.Actor())
	assert.Equal(t, stats.DefaultEnemyAP, s.Enemy.AP)
}

func TestUseSkill_KillingBlowWinsAndChargesCosts(t *testing.T) {
	f := newFixture(t, maxSource{})
	f.skills = playerSkills(t, &skill.Skill{
		ID: "smite", Name: "Smite", APCost: 3, ManaCost: 10,
		Kind: skill.KindDamage, Power: 1.5, RangeMin: 1, RangeMax: 4,
	})
	tmpl := wraith(t)
	f.instance = npc.NewInstance(tmpl, 0, 0)
	f.instance.Persist(1, 0)

	s, _ := f.start(t)
	require.Equal(t, combat.StatePlayerTurn, s.State)
	require.Equal(t, 4, s.Distance)
	require.Equal(t, 5, s.Enemy.HP)

	r := s.UseSkill("smite")

	require.True(t, r.OK, r.Reason)
	assert.True(t, r.Ended)
	assert.Equal(t, combat.StateVictory, r.State)
	assert.Equal(t, 0, s.Enemy.HP)
	assert.Equal(t, 3, s.Player.AP)
	assert.Equal(t, 20, s.Player.Mana)
	assert.Contains(t, r.Events, "Wraith is defeated.")

	after := s.Attack()
	assert.False(t, after.OK)
	assert.Equal(t, combat.ReasonResolved, after.Reason)
}

func TestUseSkill_RejectsUnknownAndUnaffordable(t *testing.T) {
	f := newFixture(t, maxSource{})
	f.skills = playerSkills(t, &skill.Skill{
		ID: "nova", Name: "Nova", APCost: 3, ManaCost: 50,
		Kind: skill.KindDamage, RangeMin: 1, RangeMax: 9,
	})
	s, _ := f.start(t)

	assert.Equal(t, combat.ReasonUnknownSkill, s.UseSkill("missing").Reason)
	r := s.UseSkill("nova")
	assert.False(t, r.OK)
	assert.Equal(t, combat.ReasonCannotCast, r.Reason)
	assert.Equal(t, 6, s.Player.AP)
}

func TestHealSkill_ClampsToMaxHP(t *testing.T) {
	f := newFixture(t, maxSource{})
	f.hp = 90
	f.skills = playerSkills(t, &skill.Skill{
		ID: "mend", Name: "Mend", APCost: 2, Kind: skill.KindHeal,
	})
	s, _ := f.start(t)

	r := s.UseSkill("mend")

	require.True(t, r.OK, r.Reason)
	assert.Equal(t, 100, s.Player.HP)
	assert.Equal(t, 4, s.Player.AP)
}

func TestAttack_OutOfRangeFails(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	require.Equal(t, 4, s.Distance)

	r := s.Attack()

	assert.False(t, r.OK)
	assert.Equal(t, "out of weapon range (1-2)", r.Reason)
	assert.Equal(t, 6, s.Player.AP)
}

func TestAttack_GuaranteedDodgeIsConsumed(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	s.Distance = 1
	require.NoError(t, s.Enemy.Effects.Add(effect.GuaranteedDodge(1)))

	r := s.Attack()

	require.True(t, r.OK, r.Reason)
	assert.Equal(t, 100, s.Enemy.HP)
	assert.Equal(t, 0, s.Enemy.Effects.Len())
	assert.Equal(t, 4, s.Player.AP)
	assert.Contains(t, r.Events, "Wraith dodges Hero's attack.")
}

func TestAttack_ParryReducesDamage(t *testing.T) {
	f := newFixture(t, lowSource{})
	s, _ := f.start(t)
	require.Equal(t, combat.StatePlayerTurn, s.State)
	require.Equal(t, 2, s.Distance)
	// Remove the enemy's dodge so the low roll lands on the parry check.
	require.NoError(t, s.Enemy.Effects.Add(effect.Debuff(effect.AttrDodgeChance, 1, 2)))

	r := s.Attack()

	require.True(t, r.OK, r.Reason)
	// 20 attack, -4 jitter, parried for 45%.
	assert.Equal(t, 92, s.Enemy.HP)
	assert.Contains(t, r.Events, "Wraith partly parries Hero's attack (8).")
}

func TestShield_AbsorbsBeforeHP(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	s.Distance = 1
	require.NoError(t, s.Enemy.Effects.Add(effect.Shield(10, 2)))

	r := s.Attack()

	require.True(t, r.OK, r.Reason)
	// 20 attack plus the maximum jitter of 6.
	assert.Equal(t, 84, s.Enemy.HP)
}

func TestDot_TicksAtTurnStartThenExpires(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	require.NoError(t, s.Enemy.Effects.Add(effect.Dot(effect.AilmentBleed, 10, 3)))

	for range 3 {
		require.True(t, s.EndTurn().OK)
		require.Equal(t, combat.StateEnemyTurn, s.State)
		require.True(t, s.EnemyTurn().OK)
		require.Equal(t, combat.StatePlayerTurn, s.State)
	}

	assert.Equal(t, 70, s.Enemy.HP)
	assert.Equal(t, 0, s.Enemy.Effects.Len())
	assert.Equal(t, 7, s.Turn)
}

func TestDot_LethalTickEndsEncounter(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	require.NoError(t, s.Enemy.Effects.Add(effect.Dot(effect.AilmentPoison, 500, 2)))

	r := s.EndTurn()

	assert.True(t, r.Ended)
	assert.Equal(t, combat.StateVictory, s.State)
	assert.Equal(t, combat.ReasonResolved, s.EnemyTurn().Reason)
}

func TestAPPenalty_AppliesAtTurnStart(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	require.NoError(t, s.Player.Effects.Add(effect.Debuff(effect.AttrAPPenalty, 2, 3)))

	require.True(t, s.EndTurn().OK)
	require.True(t, s.EnemyTurn().OK)

	assert.Equal(t, 4, s.Player.AP)
}

func TestEnemyTurn_DefeatsPlayer(t *testing.T) {
	f := newFixture(t, lowSource{})
	f.block.Speed = 5
	f.hp = 1
	f.planner = ai.NewPolicy(nil, nil)
	s, _ := f.start(t)
	require.Equal(t, combat.StateEnemyTurn, s.State)

	r := s.EnemyTurn()

	require.True(t, r.OK)
	assert.True(t, r.Ended)
	assert.Equal(t, combat.StateDefeat, s.State)
	assert.Equal(t, 0, s.Player.HP)
	assert.Contains(t, r.Events, "Hero falls.")
}

func TestEnemyTurn_RejectedOnPlayerTurn(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)

	r := s.EnemyTurn()

	assert.False(t, r.OK)
	assert.Equal(t, combat.ReasonNotYourTurn, r.Reason)
}

func TestEnemyTurn_StopsAfterMaxSteps(t *testing.T) {
	f := newFixture(t, maxSource{})
	f.block.Speed = 5
	planner := &stubPlanner{decision: ai.Decision{
		Action: ai.ActionSkill,
		Skill: &skill.Skill{
			ID: "focus", Name: "Focus", APCost: 1, Kind: skill.KindBuff,
			Buff: &skill.BuffSpec{RestoreAP: 1},
		},
	}}
	f.planner = planner
	s, _ := f.start(t)
	require.Equal(t, combat.StateEnemyTurn, s.State)

	r := s.EnemyTurn()

	require.True(t, r.OK)
	assert.Equal(t, ai.MaxSteps, planner.calls)
	assert.Equal(t, combat.StatePlayerTurn, s.State)
}

func TestPlayerActions_RejectedOnEnemyTurn(t *testing.T) {
	f := newFixture(t, maxSource{})
	f.block.Speed = 5
	s, _ := f.start(t)

	for _, r := range []combat.Result{s.Attack(), s.Move(combat.Closer), s.Flee(), s.EndTurn(), s.UseSkill("x")} {
		assert.False(t, r.OK)
		assert.Equal(t, combat.ReasonNotYourTurn, r.Reason)
	}
}

func TestMove_ClampsDistanceAndSpendsAP(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)

	s.Distance = combat.MaxDistance
	require.True(t, s.Move(combat.Away).OK)
	assert.Equal(t, combat.MaxDistance, s.Distance)

	s.Distance = combat.MinDistance
	require.True(t, s.Move(combat.Closer).OK)
	assert.Equal(t, combat.MinDistance, s.Distance)

	require.True(t, s.Move(combat.Away).OK)
	assert.Equal(t, 2, s.Distance)
	assert.Equal(t, 0, s.Player.AP)
	assert.Equal(t, combat.ReasonMoveAP, s.Move(combat.Closer).Reason)
}

func TestFlee_FailureWithoutAPEndsTurn(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	s.Player.AP = combat.FleeAPCost

	r := s.Flee()

	require.True(t, r.OK)
	assert.Equal(t, combat.StateEnemyTurn, s.State)
	assert.InDelta(t, s.FleeChance(), r.FleeChance, 1e-9)
}

func TestFlee_SuccessResolvesEncounter(t *testing.T) {
	f := newFixture(t, lowSource{})
	s, _ := f.start(t)

	r := s.Flee()

	require.True(t, r.OK)
	assert.True(t, r.Ended)
	assert.Equal(t, combat.StateFled, s.State)
}

func TestFleeChance_StaysWithinBounds(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	rapid.Check(t, func(rt *rapid.T) {
		s.EnemyStats.Speed = rapid.IntRange(1, 60).Draw(rt, "enemySpeed")
		s.Distance = rapid.IntRange(combat.MinDistance, combat.MaxDistance).Draw(rt, "distance")
		s.FleeResist = rapid.Float64Range(0, 1).Draw(rt, "fleeResist")
		s.Boss = rapid.Bool().Draw(rt, "boss")

		chance := s.FleeChance()
		if chance < 0.05 || chance > 0.9 {
			rt.Fatalf("flee chance %g out of bounds", chance)
		}
	})
}

func TestUseConsumable_CleansesAndShields(t *testing.T) {
	f := newFixture(t, maxSource{})
	f.hp = 50
	s, _ := f.start(t)
	require.NoError(t, s.Player.Effects.Add(effect.Dot(effect.AilmentBurn, 5, 3)))
	require.NoError(t, s.Player.Effects.Add(effect.Debuff(effect.AttrAttackPercent, 0.2, 2)))
	def := &inventory.ConsumableDef{
		ID: "purifying_tonic", Name: "Purifying tonic", Heal: 80,
		Cleanse: true, Shield: 15, ShieldTurns: 2,
	}

	r := s.UseConsumable(def)

	require.True(t, r.OK, r.Reason)
	assert.Equal(t, 100, s.Player.HP)
	assert.Equal(t, 4, s.Player.AP)
	assert.Equal(t, 0.0, s.Player.Effects.AmountOf(effect.KindDot, effect.AttrNone))
	assert.Equal(t, 0.0, s.Player.Effects.AmountOf(effect.KindDebuff, effect.AttrAttackPercent))
	assert.Equal(t, 15.0, s.Player.Effects.AmountOf(effect.KindShield, effect.AttrNone))
}

func TestUseConsumable_RequiresAP(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	s.Player.AP = 1

	r := s.UseConsumable(&inventory.ConsumableDef{ID: "potion", Name: "Potion", Heal: 10})

	assert.False(t, r.OK)
	assert.Equal(t, combat.ReasonItemAP, r.Reason)
}

func TestSession_JSONRoundTripThenBind(t *testing.T) {
	f := newFixture(t, maxSource{})
	s, _ := f.start(t)
	s.Distance = 1
	require.NoError(t, s.Enemy.Effects.Add(effect.Shield(10, 2)))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var restored combat.Session
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.False(t, restored.Bound())

	tmpl := wraith(t)
	restored.Bind(f.env(tmpl))
	require.True(t, restored.Bound())
	assert.Equal(t, s.State, restored.State)
	assert.Equal(t, s.EnemyStats, restored.EnemyStats)

	r := restored.Attack()
	require.True(t, r.OK, r.Reason)
	assert.Equal(t, 84, restored.Enemy.HP)
}

func TestSession_RandomPlayKeepsVitalsInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		f := newFixture(t, dice.NewSeededSource(seed))
		f.planner = ai.NewPolicy(nil, nil)
		s, _ := f.start(t)

		for i := 0; i < 80 && !s.State.Resolved(); i++ {
			if s.State == combat.StateEnemyTurn {
				s.EnemyTurn()
			} else {
				switch rapid.IntRange(0, 3).Draw(rt, "action") {
				case 0:
					if !s.Attack().OK {
						s.EndTurn()
					}
				case 1:
					s.Move(combat.Closer)
				case 2:
					s.Move(combat.Away)
				default:
					s.EndTurn()
				}
			}
			if s.Player.HP < 0 || s.Player.HP > f.block.MaxHP {
				rt.Fatalf("player HP %d out of bounds", s.Player.HP)
			}
			if s.Enemy.HP < 0 || s.Enemy.HP > s.EnemyStats.MaxHP {
				rt.Fatalf("enemy HP %d out of bounds", s.Enemy.HP)
			}
			if s.Player.AP < 0 || s.Enemy.AP < 0 {
				rt.Fatalf("negative AP: player %d enemy %d", s.Player.AP, s.Enemy.AP)
			}
			if s.Distance < combat.MinDistance || s.Distance > combat.MaxDistance {
				rt.Fatalf("distance %d out of bounds", s.Distance)
			}
		}
	})
}
