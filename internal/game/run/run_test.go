package run_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/combat"
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/loot"
	"github.com/cory-johannsen/veilrun/internal/game/npc"
	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
	"github.com/cory-johannsen/veilrun/internal/game/run"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

const contentDir = "../../../content"

// lowSource always draws zero: every chance above zero succeeds.
type lowSource struct{}

func (lowSource) Intn(int) int { return 0 }

// maxSource always draws n-1: every chance below one fails and every range
// yields its upper bound.
type maxSource struct{}

func (maxSource) Intn(n int) int { return n - 1 }

const hallYAML = `
floor:
  id: hall
  name: Hall
  depth: 1
  level: 1
  start: {x: 1, y: 1}
  exit: {x: 5, y: 1}
  map:
    - "#######"
    - "#.....#"
    - "#######"
  enemies:
    - {template: rat, x: 3, y: 1}
  chests:
    - {id: c1, x: 2, y: 1}
  nodes:
    - {id: n1, node: tree, x: 4, y: 1}
`

const vaultYAML = `
floor:
  id: vault
  name: Vault
  depth: 2
  level: 2
  start: {x: 1, y: 1}
  exit: {x: 3, y: 1}
  map:
    - "#####"
    - "#...#"
    - "#...#"
    - "#####"
  enemies:
    - {template: warden, x: 2, y: 2}
`

const pitYAML = `
floor:
  id: pit
  name: Pit
  depth: 1
  level: 1
  start: {x: 1, y: 1}
  exit: {x: 1, y: 1}
  map:
    - "####"
    - "#..#"
    - "####"
  enemies:
    - {template: rat, x: 2, y: 1}
`

const gateYAML = `
floor:
  id: gate
  name: Gate
  depth: 1
  level: 1
  start: {x: 1, y: 1}
  exit: {x: 4, y: 1}
  map:
    - "######"
    - "#....#"
    - "######"
  enemies:
    - {template: warden, x: 2, y: 1}
  portal: {x: 3, y: 1, target: crypt, reveal_chance: 1}
`

const cryptYAML = `
floor:
  id: crypt
  name: Crypt
  depth: 5
  level: 4
  secret: true
  start: {x: 1, y: 1}
  exit: {x: 2, y: 1}
  map:
    - "####"
    - "#..#"
    - "####"
`

const (
	ratYAML = `
id: rat
name: Rat
stats: {max_hp: 1, attack: 1, speed: 1}
rewards: {xp: 130, gold: 20}
`
	wardenYAML = `
id: warden
name: Warden
boss: true
stats: {max_hp: 1, attack: 1, speed: 1}
rewards: {xp: 5, gold: 10}
`
	ogreYAML = `
id: rat
name: Ogre
stats: {max_hp: 50, attack: 999, speed: 99, range_max: 9}
`
	bruteYAML = `
id: rat
name: Brute
stats: {max_hp: 500, attack: 1, speed: 1}
`
)

func newContent(t *testing.T, floors []string, templates ...string) *run.Content {
	t.Helper()
	rules, err := ruleset.Load(contentDir)
	require.NoError(t, err)
	items, err := inventory.LoadRegistry(contentDir + "/items.yaml")
	require.NoError(t, err)
	tables, err := loot.LoadTables(contentDir + "/loot.yaml")
	require.NoError(t, err)

	enemies := npc.NewRegistry()
	for _, y := range templates {
		tmpl, err := npc.LoadTemplateFromBytes([]byte(y))
		require.NoError(t, err)
		require.NoError(t, enemies.Register(tmpl))
	}
	var fs []*world.Floor
	for _, y := range floors {
		f, err := world.LoadFloorFromBytes([]byte(y))
		require.NoError(t, err)
		fs = append(fs, f)
	}
	mgr, err := world.NewManager(fs)
	require.NoError(t, err)

	c := &run.Content{Rules: rules, Items: items, Enemies: enemies, Loot: tables, Floors: mgr}
	require.NoError(t, c.Validate())
	return c
}

func deps(c *run.Content, src dice.Source) run.Deps {
	return run.Deps{Content: c, Source: src, Logger: zap.NewNop()}
}

func newRun(t *testing.T, d run.Deps, difficulty string) *run.Run {
	t.Helper()
	r, err := run.New("run-1", "Vesna", "archer", difficulty, d)
	require.NoError(t, err)
	return r
}

func hallRun(t *testing.T) *run.Run {
	t.Helper()
	c := newContent(t, []string{hallYAML, vaultYAML}, ratYAML, wardenYAML)
	return newRun(t, deps(c, maxSource{}), "normal")
}

func stackOf(t *testing.T, r *run.Run, defID string, rarity inventory.Rarity) *inventory.Stack {
	t.Helper()
	for _, s := range r.Player.Bag.Consumables {
		if s.DefID == defID && s.Rarity == rarity {
			return s
		}
	}
	t.Fatalf("no %s %s stack in bag", rarity, defID)
	return nil
}

func joined(res run.ActionResult) string {
	return strings.Join(res.Events, "\n")
}

func mustOK(t *testing.T, res run.ActionResult) run.ActionResult {
	t.Helper()
	require.True(t, res.OK, "action failed: %s", res.Reason)
	return res
}

func TestLoadContent_RealContent(t *testing.T) {
	c, err := run.LoadContent(contentDir)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Floors.FloorCount())
	assert.Equal(t, "upper_catacombs", c.Floors.First().ID)

	for _, class := range c.Rules.Classes() {
		r, err := run.New("r-"+class.ID, "Tester", class.ID, "normal", deps(c, dice.NewSeededSource(7)))
		require.NoError(t, err, class.ID)
		assert.Equal(t, r.Stats().MaxHP, r.Player.HP, class.ID)
	}
}

func TestContent_ValidateReportsDanglingReferences(t *testing.T) {
	c := newContent(t, []string{hallYAML}, ratYAML)
	c.Enemies = npc.NewRegistry()
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rat")
}

func TestNew_StartsOnFirstFloor(t *testing.T) {
	r := hallRun(t)

	assert.Equal(t, world.Point{X: 1, Y: 1}, r.Position)
	assert.Equal(t, "hall", r.CurrentFloor().ID)
	assert.Equal(t, r.Stats().MaxHP, r.Player.HP)
	assert.Equal(t, 75, r.Player.Gold)
	assert.False(t, r.InCombat())
	assert.False(t, r.Over())
	events := r.Events(0)
	require.Len(t, events, 1)
	assert.Contains(t, events[0], "enters Hall")
}

func TestNew_UnknownClassOrDifficulty(t *testing.T) {
	d := deps(newContent(t, []string{hallYAML}, ratYAML), maxSource{})

	_, err := run.New("x", "Vesna", "jester", "normal", d)
	assert.ErrorIs(t, err, ruleset.ErrUnknownClass)

	_, err = run.New("x", "Vesna", "archer", "nightmare", d)
	assert.ErrorIs(t, err, ruleset.ErrUnknownDifficulty)
}

func TestMove_WallAndChest(t *testing.T) {
	r := hallRun(t)

	res := r.Move(world.North)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "blocked")

	res = mustOK(t, r.Move(world.East))
	assert.Equal(t, world.Point{X: 2, Y: 1}, r.Position)
	assert.Contains(t, joined(res), "You open a chest")
	assert.Len(t, r.Player.Bag.Items, 1)
	assert.Equal(t, 75+75, r.Player.Gold)
	assert.Equal(t, 3, r.Player.Bag.Materials.Count("obsidian_fragment"))

	mustOK(t, r.Move(world.West))
	mustOK(t, r.Move(world.East))
	assert.Len(t, r.Player.Bag.Items, 1, "an opened chest pays out once")
}

func TestEncounter_VictoryGrantsRewardsAndLevel(t *testing.T) {
	r := hallRun(t)
	mustOK(t, r.Move(world.East))

	res := mustOK(t, r.Move(world.East))
	require.True(t, r.InCombat())
	assert.Equal(t, world.Point{X: 2, Y: 1}, r.Position, "bumping an enemy does not move")
	assert.Contains(t, joined(res), "Combat begins against Rat.")
	sess := r.CombatView()
	assert.Equal(t, combat.StatePlayerTurn, sess.State)
	assert.Equal(t, 4, sess.Distance)
	st := r.Status()
	require.NotNil(t, st.Combat)
	assert.Equal(t, "Rat", st.Combat.Enemy)
	assert.Equal(t, "unharmed", st.Combat.Condition)

	assert.Equal(t, run.ReasonInCombat, r.Move(world.East).Reason)
	assert.Equal(t, run.ReasonInCombat, r.Buy("potion").Reason)
	assert.False(t, r.Attack().OK, "a 2-3 bow cannot reach distance 4")

	res = mustOK(t, r.UseSkill("precise_shot"))
	assert.True(t, res.Ended)
	assert.False(t, r.InCombat())
	assert.Contains(t, joined(res), "Level up! You are now level 2.")
	assert.Contains(t, joined(res), "New skill unlocked: Pin.")

	assert.Equal(t, 2, r.Player.Level())
	assert.Equal(t, 10, r.Player.Progress.XP)
	assert.Equal(t, 2, r.Player.Progress.PassivePoints)
	assert.Equal(t, 150+20, r.Player.Gold)
	assert.Len(t, r.Player.Bag.Items, 2)
	assert.Equal(t, r.Stats().MaxHP, r.Player.HP)
	assert.Equal(t, 0, r.Floor.Living())

	rw, ok := r.LastRewards()
	require.True(t, ok)
	assert.Equal(t, "Rat", rw.Enemy)
	assert.Equal(t, 130, rw.XP)
	assert.Equal(t, 20, rw.Gold)
	assert.True(t, rw.LevelUp)
	assert.Len(t, rw.Items, 1)

	mustOK(t, r.Move(world.East))
	assert.Equal(t, world.Point{X: 3, Y: 1}, r.Position)
}

func TestRun_DescentThroughBossToVictory(t *testing.T) {
	r := hallRun(t)
	mustOK(t, r.Move(world.East))
	mustOK(t, r.Move(world.East))
	mustOK(t, r.UseSkill("precise_shot"))
	mustOK(t, r.Move(world.East))

	res := mustOK(t, r.Move(world.East))
	assert.Contains(t, joined(res), "tree node")
	assert.Equal(t, run.ReasonNotAtExit, r.Descend().Reason)
	mustOK(t, r.Harvest())
	assert.Equal(t, 4, r.Player.Bag.Materials.Count("wood"))
	assert.Equal(t, 2, r.Floor.Nodes[0].Charges)

	res = mustOK(t, r.Move(world.East))
	assert.Contains(t, joined(res), "Stairs lead down.")
	assert.Equal(t, run.ReasonNothingHere, r.Harvest().Reason)
	mustOK(t, r.Descend())
	assert.Equal(t, "vault", r.CurrentFloor().ID)
	assert.Equal(t, world.Point{X: 1, Y: 1}, r.Position)
	assert.Equal(t, 1, r.Counters.FloorsCleared)
	assert.False(t, r.Floor.ExitOpen, "a boss seals the exit")

	mustOK(t, r.Move(world.East))
	res = mustOK(t, r.Move(world.East))
	assert.Contains(t, joined(res), "sealed gate")
	assert.Equal(t, run.ReasonExitSealed, r.Descend().Reason)

	mustOK(t, r.Move(world.South))
	mustOK(t, r.Move(world.West))
	require.True(t, r.InCombat())
	assert.True(t, r.CombatView().Boss)
	res = mustOK(t, r.UseSkill("precise_shot"))
	assert.True(t, res.Ended)
	assert.Contains(t, joined(res), "The way down is open.")
	assert.True(t, r.Floor.ExitOpen)
	assert.Len(t, r.Player.Bag.Items, 4, "bosses drop two items")
	assert.Equal(t, 2, r.Counters.MythicFound)

	mustOK(t, r.Move(world.North))
	mustOK(t, r.Descend())
	assert.True(t, r.Over())
	assert.Equal(t, run.OutcomeVictory, r.Outcome)
	assert.Equal(t, run.ReasonRunOver, r.Move(world.West).Reason)
	assert.Zero(t, r.FleeChance())

	p := r.Progress()
	assert.Equal(t, 2, p.FloorsCleared)
	assert.Equal(t, 2, p.MythicFound)
	assert.Equal(t, 0, p.Deaths)
	assert.Equal(t, "archer", p.Class)
	assert.Equal(t, "normal", p.Difficulty)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 170+10, p.Gold)
}

func TestPortal_BossRevealsHiddenFloorAndExitReturns(t *testing.T) {
	c := newContent(t, []string{gateYAML, cryptYAML, vaultYAML}, wardenYAML)
	d := deps(c, maxSource{})
	r := newRun(t, d, "normal")

	mustOK(t, r.Move(world.East))
	require.True(t, r.InCombat())
	res := mustOK(t, r.UseSkill("precise_shot"))
	assert.Contains(t, joined(res), "A hidden passage opens at (3,1).")
	assert.True(t, r.Floor.PortalOpen)

	mustOK(t, r.Move(world.East))
	res = mustOK(t, r.Move(world.East))
	assert.Contains(t, joined(res), "You step through the hidden passage into Crypt.")
	assert.Equal(t, "crypt", r.CurrentFloor().ID)
	assert.Equal(t, world.Point{X: 1, Y: 1}, r.Position)
	require.NotNil(t, r.Return)
	assert.Equal(t, "gate", r.Return.Floor.FloorID)

	data, err := r.Snapshot()
	require.NoError(t, err)
	r, err = run.Restore(data, d)
	require.NoError(t, err)
	require.NotNil(t, r.Return)

	mustOK(t, r.Move(world.East))
	res = mustOK(t, r.Descend())
	assert.Contains(t, joined(res), "You leave Crypt and return to Gate.")
	assert.Equal(t, "gate", r.CurrentFloor().ID)
	assert.Equal(t, world.Point{X: 3, Y: 1}, r.Position)
	assert.Nil(t, r.Return)
	assert.Zero(t, r.Floor.Living(), "the gate keeps its cleared state")
	assert.Equal(t, 1, r.Counters.FloorsCleared)

	mustOK(t, r.Move(world.East))
	mustOK(t, r.Descend())
	assert.Equal(t, "vault", r.CurrentFloor().ID, "the descent skips the hidden floor")
	assert.Equal(t, 2, r.Counters.FloorsCleared)
}

func TestPortal_StaysClosedWhenRevealFails(t *testing.T) {
	gate := strings.Replace(gateYAML, "reveal_chance: 1", "reveal_chance: 0.5", 1)
	c := newContent(t, []string{gate, cryptYAML}, wardenYAML)
	r := newRun(t, deps(c, maxSource{}), "normal")

	mustOK(t, r.Move(world.East))
	res := mustOK(t, r.UseSkill("precise_shot"))
	assert.NotContains(t, joined(res), "hidden passage")

	mustOK(t, r.Move(world.East))
	mustOK(t, r.Move(world.East))
	assert.Equal(t, "gate", r.CurrentFloor().ID)
	assert.Equal(t, world.Point{X: 3, Y: 1}, r.Position)
	assert.Nil(t, r.Return)
}

func TestDefeat_RespawnsWithGoldPenalty(t *testing.T) {
	c := newContent(t, []string{pitYAML}, ogreYAML)
	r := newRun(t, deps(c, maxSource{}), "normal")

	res := mustOK(t, r.Move(world.East))
	assert.True(t, res.Ended)
	assert.False(t, r.InCombat())
	assert.False(t, r.Over())
	assert.Equal(t, 1, r.Counters.Deaths)
	assert.Equal(t, 75-15, r.Player.Gold)
	assert.Equal(t, world.Point{X: 1, Y: 1}, r.Position)
	assert.Equal(t, r.Stats().MaxHP, r.Player.HP)

	ogre, ok := r.Floor.EnemyAt(world.Point{X: 2, Y: 1})
	require.True(t, ok, "the victor stays on the floor")
	assert.Equal(t, 50, ogre.CurrentHP)
}

func TestDefeat_PermadeathEndsRun(t *testing.T) {
	c := newContent(t, []string{pitYAML}, ogreYAML)
	r := newRun(t, deps(c, maxSource{}), "hardcore")

	res := r.Move(world.East)
	assert.True(t, res.Ended)
	assert.Contains(t, joined(res), "The run is over.")
	assert.True(t, r.Over())
	assert.Equal(t, run.OutcomeDeath, r.Outcome)
	assert.Equal(t, 0, r.Player.HP)
	assert.Equal(t, run.ReasonRunOver, r.Harvest().Reason)
}

func TestFlee_LeavesEnemyInPlace(t *testing.T) {
	c := newContent(t, []string{pitYAML}, bruteYAML)
	r := newRun(t, deps(c, lowSource{}), "normal")

	mustOK(t, r.Move(world.East))
	require.True(t, r.InCombat())
	assert.Greater(t, r.FleeChance(), 0.0)

	res := mustOK(t, r.Flee())
	assert.True(t, res.Ended)
	assert.Contains(t, joined(res), "You slip away from Brute.")
	assert.False(t, r.InCombat())
	assert.Equal(t, world.Point{X: 1, Y: 1}, r.Position)

	brute, ok := r.Floor.EnemyAt(world.Point{X: 2, Y: 1})
	require.True(t, ok)
	assert.Equal(t, 500, brute.CurrentHP)
}

func TestCombatActions_RequireCombat(t *testing.T) {
	r := hallRun(t)
	assert.Equal(t, run.ReasonNoCombat, r.Attack().Reason)
	assert.Equal(t, run.ReasonNoCombat, r.Flee().Reason)
	assert.Equal(t, run.ReasonNoCombat, r.EndTurn().Reason)
	assert.Equal(t, run.ReasonNoCombat, r.EnemyTurn().Reason)
	assert.Equal(t, run.ReasonNoCombat, r.Reposition(combat.Closer).Reason)
}

func TestCombat_RepositionAndEnemyTurnGuard(t *testing.T) {
	c := newContent(t, []string{pitYAML}, bruteYAML)
	r := newRun(t, deps(c, maxSource{}), "normal")
	mustOK(t, r.Move(world.East))
	require.Equal(t, 4, r.CombatView().Distance)

	mustOK(t, r.Reposition(combat.Closer))
	assert.Equal(t, 3, r.CombatView().Distance)
	assert.Equal(t, run.ReasonNotEnemyTurn, r.EnemyTurn().Reason)

	res := mustOK(t, r.EndTurn())
	assert.False(t, res.Ended)
	assert.Equal(t, combat.StatePlayerTurn, r.CombatView().State, "the enemy turn plays out before control returns")
}

func TestShop_BuySellAndHealer(t *testing.T) {
	r := hallRun(t)

	assert.Equal(t, run.ReasonUnknownItem, r.Buy("nope").Reason)
	mustOK(t, r.Buy("potion"))
	assert.Equal(t, 30, r.Player.Gold)
	potions := stackOf(t, r, "potion", inventory.Common)
	assert.Equal(t, 3, potions.Quantity)
	assert.Equal(t, run.ReasonNotEnoughGold, r.Buy("potion").Reason)

	mustOK(t, r.Sell(potions.ID))
	assert.Equal(t, 54, r.Player.Gold)
	assert.Equal(t, 2, potions.Quantity)
	assert.Equal(t, run.ReasonUnknownItem, r.Sell("missing").Reason)

	assert.Equal(t, run.ReasonAlreadyHealthy, r.VisitHealer().Reason)
	r.Player.HP = 1
	assert.Equal(t, run.ReasonNotEnoughGold, r.VisitHealer().Reason)

	mustOK(t, r.Unequip(inventory.SlotWeapon))
	require.Len(t, r.Player.Bag.Items, 1)
	mustOK(t, r.Sell(r.Player.Bag.Items[0].ID))
	assert.Equal(t, 78, r.Player.Gold)
	assert.Empty(t, r.Player.Bag.Items)

	mustOK(t, r.VisitHealer())
	assert.Equal(t, 78-run.HealerPrice, r.Player.Gold)
	assert.Equal(t, r.Stats().MaxHP, r.Player.HP)
	assert.False(t, r.Unequip(inventory.SlotWeapon).OK)
}

func TestUseItem_OutsideCombatPreparesBuffs(t *testing.T) {
	r := hallRun(t)
	r.Player.HP = 10

	potions := stackOf(t, r, "potion", inventory.Common)
	mustOK(t, r.UseItem(potions.ID))
	assert.Equal(t, 90, r.Player.HP)
	assert.Equal(t, 1, potions.Quantity)

	elixir := stackOf(t, r, "mana_elixir", inventory.Common)
	mustOK(t, r.UseItem(elixir.ID))
	assert.Equal(t, r.Stats().MaxMana, r.Player.Mana)
	_, ok := r.Player.Bag.Consumable(elixir.ID)
	assert.False(t, ok, "an empty stack leaves the bag")
	assert.Equal(t, run.ReasonUnknownItem, r.UseItem(elixir.ID).Reason)

	mustOK(t, r.Buy("fury_draft"))
	res := mustOK(t, r.UseItem(stackOf(t, r, "fury_draft", inventory.Common).ID))
	assert.Contains(t, joined(res), "next fight")
	require.Len(t, r.Player.Prepared, 1)

	mustOK(t, r.Move(world.East))
	mustOK(t, r.Move(world.East))
	require.True(t, r.InCombat())
	assert.Empty(t, r.Player.Prepared)
	assert.Equal(t, 1, r.CombatView().Player.Effects.Len())
}

func TestUseItem_InCombatSpendsUnitOnSuccess(t *testing.T) {
	c := newContent(t, []string{pitYAML}, bruteYAML)
	r := newRun(t, deps(c, maxSource{}), "normal")
	mustOK(t, r.Move(world.East))
	potions := stackOf(t, r, "potion", inventory.Common)

	mustOK(t, r.UseItem(potions.ID))
	assert.Equal(t, 1, potions.Quantity)
	assert.Equal(t, r.CombatView().Player.HP, r.Player.HP)
}

func TestCraft_ConsumableAndEquipment(t *testing.T) {
	r := hallRun(t)
	assert.Equal(t, run.ReasonUnknownRecipe, r.Craft("nope").Reason)
	assert.Equal(t, run.ReasonMissingMats, r.Craft("recipe_major_potion").Reason)

	r.Player.Bag.Materials.Add("herb", 4)
	r.Player.Bag.Materials.Add("resin", 1)
	mustOK(t, r.Craft("recipe_major_potion"))
	crafted := stackOf(t, r, "potion", inventory.Uncommon)
	assert.Equal(t, 1, crafted.Quantity)
	assert.Equal(t, loot.CraftedConsumableValue, crafted.Value)
	assert.Zero(t, r.Player.Bag.Materials.Count("herb"))

	r.Player.Bag.Materials.Add("bone_dust", 4)
	r.Player.Bag.Materials.Add("ore", 2)
	mustOK(t, r.Craft("recipe_bone_dagger"))
	require.Len(t, r.Player.Bag.Items, 1)
	dagger := r.Player.Bag.Items[0]
	assert.Equal(t, "Bone dagger", dagger.Name)

	mustOK(t, r.Equip(dagger.ID))
	assert.Equal(t, "Bone dagger", r.Player.Equipment.Get(inventory.SlotWeapon).Name)
	require.Len(t, r.Player.Bag.Items, 1)
	assert.Equal(t, "Short bow", r.Player.Bag.Items[0].Name)
	assert.Equal(t, run.ReasonUnknownItem, r.Equip("missing").Reason)
}

func TestUnlockPassive_ReasonsAndEffect(t *testing.T) {
	r := hallRun(t)
	before := r.Stats()

	assert.Equal(t, "unknown passive", r.UnlockPassive("nope").Reason)
	assert.Equal(t, "requires falcon_eyes", r.UnlockPassive("hunter_stride").Reason)
	mustOK(t, r.UnlockPassive("falcon_eyes"))
	assert.Greater(t, r.Stats().DamagePercent, before.DamagePercent)
	assert.Equal(t, "passive already unlocked", r.UnlockPassive("falcon_eyes").Reason)
	assert.Equal(t, "no passive points", r.UnlockPassive("hunter_stride").Reason)
}

func TestAbandon(t *testing.T) {
	r := hallRun(t)
	mustOK(t, r.Abandon())
	assert.Equal(t, run.OutcomeAbandoned, r.Outcome)
	assert.Equal(t, run.ReasonRunOver, r.Abandon().Reason)
}
