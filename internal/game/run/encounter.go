package run

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/ai"
	"github.com/cory-johannsen/veilrun/internal/game/combat"
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/npc"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// combatEnv builds the session context for a fight against tmpl.
func (r *Run) combatEnv(tmpl *npc.Template) combat.Env {
	planner := r.deps.Planner
	if planner == nil {
		planner = ai.NewPolicy(nil, r.deps.Logger)
	}
	p, class := r.Player, r.class
	return combat.Env{
		Source: r.deps.Source,
		PlayerStats: func(hp, mana int) stats.Block {
			return p.StatsAt(class, hp, mana)
		},
		PlayerSkills: p.Skills(class),
		Template:     tmpl,
		Planner:      planner,
	}
}

// startCombat opens an encounter with inst. Prepared buffs move into the
// player's ledger; an enemy that wins initiative acts immediately.
func (r *Run) startCombat(inst *npc.Instance) ActionResult {
	tmpl, err := r.deps.Content.Enemies.Get(inst.TemplateID)
	if err != nil {
		r.logger.Warn("encounter skipped", zap.String("enemy", inst.ID), zap.Error(err))
		return r.fail(ReasonUnknownEnemy)
	}
	enc := combat.Encounter{
		Instance: inst,
		Template: tmpl,
		Scaling:  r.diff.Scaling(),
		StatusScale: combat.StatusScale{
			Player: r.diff.StatusMultiplier(true),
			Enemy:  r.diff.StatusMultiplier(false),
		},
		PlayerName: r.Player.Name,
		PlayerHP:   r.Player.HP,
		PlayerMana: r.Player.Mana,
		Prepared:   r.Player.Prepared,
	}
	r.Player.Prepared = nil
	sess, res := combat.Start(enc, r.combatEnv(tmpl))
	r.Combat = sess
	r.logger.Info("encounter started",
		zap.String("enemy", tmpl.ID),
		zap.Bool("boss", sess.Boss),
		zap.Int("enemyHp", sess.Enemy.HP),
		zap.String("state", string(sess.State)),
	)
	return r.settle(res)
}

// settle folds a session result into the run: vitals are copied back, a
// pending enemy turn is played out and a terminal state is resolved.
func (r *Run) settle(res combat.Result) ActionResult {
	s := r.Combat
	out := ActionResult{OK: res.OK, Reason: res.Reason, Events: res.Events}
	r.syncVitals()
	if res.OK && s.State == combat.StateEnemyTurn {
		er := s.EnemyTurn()
		out.Events = append(out.Events, er.Events...)
		r.syncVitals()
	}
	if s.State.Resolved() {
		out.Ended = true
		out.Events = append(out.Events, r.resolveCombat()...)
	}
	r.Log.Append(out.Events...)
	return out
}

func (r *Run) syncVitals() {
	r.Player.HP = r.Combat.Player.HP
	r.Player.Mana = r.Combat.Player.Mana
}

// combatAction runs act against the live session.
func (r *Run) combatAction(act func(s *combat.Session) combat.Result) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Outcome != "" {
		return r.fail(ReasonRunOver)
	}
	if r.Combat == nil {
		return r.fail(ReasonNoCombat)
	}
	return r.settle(act(r.Combat))
}

// UseSkill casts the unlocked skill id.
func (r *Run) UseSkill(id string) ActionResult {
	return r.combatAction(func(s *combat.Session) combat.Result { return s.UseSkill(id) })
}

// Attack makes a basic weapon attack.
func (r *Run) Attack() ActionResult {
	return r.combatAction(func(s *combat.Session) combat.Result { return s.Attack() })
}

// Reposition steps one unit closer to or away from the enemy.
func (r *Run) Reposition(dir combat.Direction) ActionResult {
	return r.combatAction(func(s *combat.Session) combat.Result { return s.Move(dir) })
}

// Flee attempts to escape the encounter.
func (r *Run) Flee() ActionResult {
	return r.combatAction(func(s *combat.Session) combat.Result { return s.Flee() })
}

// EndTurn passes the turn to the enemy.
func (r *Run) EndTurn() ActionResult {
	return r.combatAction(func(s *combat.Session) combat.Result { return s.EndTurn() })
}

// EnemyTurn plays out a pending enemy turn. Player actions already do this,
// so it only matters for a session restored mid-turn.
func (r *Run) EnemyTurn() ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Combat == nil {
		return r.fail(ReasonNoCombat)
	}
	if r.Combat.State != combat.StateEnemyTurn {
		return r.fail(ReasonNotEnemyTurn)
	}
	return r.settle(r.Combat.EnemyTurn())
}

// FleeChance returns the current escape chance, or 0 outside combat.
func (r *Run) FleeChance() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Combat == nil {
		return 0
	}
	return r.Combat.FleeChance()
}

// resolveCombat applies a terminal encounter to the run and drops the session.
func (r *Run) resolveCombat() []string {
	s := r.Combat
	r.Combat = nil
	inst, ok := r.Floor.Enemy(s.EnemyRef)
	if !ok {
		r.logger.Warn("resolved encounter has no floor entity", zap.String("enemy", s.EnemyRef))
	}
	r.logger.Info("encounter resolved",
		zap.String("enemy", s.TemplateID),
		zap.String("state", string(s.State)),
		zap.Int("turns", s.Turn),
	)
	switch s.State {
	case combat.StateVictory:
		return r.victory(s, inst)
	case combat.StateDefeat:
		return r.defeat(s, inst)
	case combat.StateFled:
		if inst != nil {
			inst.Persist(s.Enemy.HP, s.Enemy.Mana)
		}
		return []string{fmt.Sprintf("You slip away from %s.", s.Enemy.Name)}
	}
	return nil
}

func (r *Run) victory(s *combat.Session, inst *npc.Instance) []string {
	if inst != nil {
		inst.Kill()
	}
	tmpl, err := r.deps.Content.Enemies.Get(s.TemplateID)
	if err != nil {
		r.logger.Warn("no rewards for unknown template", zap.Error(err))
		return nil
	}
	p := r.Player
	rw := &Rewards{
		Enemy: tmpl.Name,
		XP:    stats.Floor(float64(tmpl.Rewards.XP) * r.diff.XP),
		Gold:  stats.Floor(float64(tmpl.Rewards.Gold) * r.diff.Loot),
	}
	p.Gold += rw.Gold
	events := []string{fmt.Sprintf("%s is defeated. +%d XP, +%d gold.", tmpl.Name, rw.XP, rw.Gold)}

	up := p.Progress.GrantXP(rw.XP, r.class.Catalog())
	if up.Gained() {
		rw.LevelUp = true
		p.Restore(r.class)
		events = append(events, fmt.Sprintf("Level up! You are now level %d.", up.To))
		for _, sk := range up.Skills {
			events = append(events, fmt.Sprintf("New skill unlocked: %s.", sk.Name))
		}
		r.logger.Info("level up", zap.Int("from", up.From), zap.Int("to", up.To))
	}

	for _, g := range tmpl.Drops.Roll(r.deps.Source, s.Boss) {
		p.Bag.Materials.Add(g.Material, g.Quantity)
		rw.Materials = append(rw.Materials, r.materialLine(g))
	}
	drops := 1
	if s.Boss {
		drops = bossLootDrops
	}
	for range drops {
		it := r.gen.Generate(r.lootDrop(s.Boss, tmpl.Name))
		r.gainItem(it)
		rw.Items = append(rw.Items, fmt.Sprintf("%s (%s)", it.Name, it.Rarity))
	}
	if len(rw.Items) > 0 {
		events = append(events, "Loot: "+strings.Join(rw.Items, ", ")+".")
	}
	if len(rw.Materials) > 0 {
		events = append(events, "Materials: "+strings.Join(rw.Materials, ", ")+".")
	}
	if s.Boss {
		r.Floor.ExitOpen = true
		events = append(events, "The way down is open.")
		if portal := r.floor.Portal; portal != nil && !r.Floor.PortalOpen && dice.Chance(r.deps.Source, portal.Chance()) {
			r.Floor.PortalOpen = true
			events = append(events, fmt.Sprintf("A hidden passage opens at (%d,%d).", portal.X, portal.Y))
			r.logger.Info("portal revealed", zap.String("floor", r.floor.ID), zap.String("target", portal.Target))
		}
	}
	r.Last = rw
	r.logger.Info("rewards granted",
		zap.String("enemy", tmpl.ID),
		zap.Int("xp", rw.XP),
		zap.Int("gold", rw.Gold),
		zap.Strings("items", rw.Items),
	)
	return events
}

func (r *Run) defeat(s *combat.Session, inst *npc.Instance) []string {
	if inst != nil {
		inst.Persist(s.Enemy.HP, s.Enemy.Mana)
	}
	p := r.Player
	r.Counters.Deaths++
	if r.diff.Permadeath {
		r.Outcome = OutcomeDeath
		p.HP = 0
		r.logger.Info("run lost", zap.Int("level", p.Level()), zap.String("floor", r.floor.ID))
		return []string{"You have fallen. The run is over."}
	}
	lost := stats.Floor(float64(p.Gold) * DefeatGoldPenalty)
	p.Gold -= lost
	p.Prepared = nil
	p.Restore(r.class)
	r.Position = r.floor.Start
	r.logger.Info("player defeated", zap.Int("goldLost", lost), zap.Int("deaths", r.Counters.Deaths))
	return []string{fmt.Sprintf("You wake at the entrance of %s, %d gold lighter.", r.floor.Name, lost)}
}

// gainItem bags it and tallies mythic finds.
func (r *Run) gainItem(it *inventory.Item) {
	r.Player.Bag.AddItem(it)
	if it.Rarity == inventory.Mythic {
		r.Counters.MythicFound++
	}
}

func (r *Run) materialLine(g inventory.MaterialGain) string {
	return fmt.Sprintf("%d %s", g.Quantity, r.deps.Content.Items.MaterialName(g.Material))
}
