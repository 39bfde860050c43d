package combat

import (
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/ai"
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/effect"
	"github.com/cory-johannsen/veilrun/internal/game/npc"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// State is the encounter's position in the turn state machine.
type State string

const (
	StatePlayerTurn State = "player_turn"
	StateEnemyTurn  State = "enemy_turn"
	StateVictory    State = "victory"
	StateDefeat     State = "defeat"
	StateFled       State = "fled"
)

// Resolved reports whether s is terminal.
func (s State) Resolved() bool {
	return s == StateVictory || s == StateDefeat || s == StateFled
}

// Action costs and positioning limits.
const (
	AttackAPCost     = 2
	MoveAPCost       = 2
	FleeAPCost       = 2
	ConsumableAPCost = 2
	MinDistance      = 1
	MaxDistance      = 9
	StartDistanceMin = 2
	StartDistanceMax = 4
	initiativeJitter = 6
)

// Failure reasons reported to the player.
const (
	ReasonNotYourTurn  = "not your turn"
	ReasonResolved     = "combat is over"
	ReasonUnknownSkill = "skill unavailable"
	ReasonCannotCast   = "not enough AP or mana, on cooldown, or out of range"
	ReasonAttackAP     = "not enough AP for a normal attack"
	ReasonMoveAP       = "not enough AP to move"
	ReasonFleeAP       = "not enough AP to flee"
	ReasonItemAP       = "not enough AP to use an item"
)

// Direction is a reposition step.
type Direction string

const (
	Closer Direction = "closer"
	Away   Direction = "away"
)

// StatusScale holds the difficulty multipliers on status-inflict chances.
type StatusScale struct {
	Player float64 `json:"player"`
	Enemy  float64 `json:"enemy"`
}

func (s StatusScale) forSide(side Side) float64 {
	v := s.Enemy
	if side == SidePlayer {
		v = s.Player
	}
	if v <= 0 {
		return 1
	}
	return v
}

// SkillSet looks up the skills the player may cast.
type SkillSet interface {
	Get(id string) (*skill.Skill, bool)
}

// Planner chooses the enemy's next step.
type Planner interface {
	Decide(sit *ai.Situation) ai.Decision
}

// Env is the non-serialisable context a session resolves against. It is
// bound at Start and rebound with Bind after a session is restored.
type Env struct {
	Source      dice.Source
	PlayerStats StatFunc
	// PlayerSkills holds only unlocked skills.
	PlayerSkills SkillSet
	Template     *npc.Template
	// Planner defaults to ai.NewPolicy(nil, nil).
	Planner Planner
}

// Encounter describes a fight about to begin.
type Encounter struct {
	Instance    *npc.Instance
	Template    *npc.Template
	Scaling     stats.Scaling
	StatusScale StatusScale
	PlayerName  string
	PlayerHP    int
	PlayerMana  int
	// Prepared are buffs bought before the fight; they open the player's ledger.
	Prepared []effect.Effect
}

// Result reports the outcome of one entry point.
type Result struct {
	OK     bool
	Reason string
	// Ended is true once the encounter reached a terminal state.
	Ended bool
	State State
	// Events are the log lines this call produced, oldest first.
	Events []string
	// FleeChance is set by Flee.
	FleeChance float64
}

// Session is the live encounter. Every mutation goes through its exported
// entry points.
// It is not safe for concurrent use; the caller must serialise access.
type Session struct {
	EnemyRef   string      `json:"enemyRef"`
	TemplateID string      `json:"templateId"`
	Boss       bool        `json:"boss"`
	EnemyStats stats.Block `json:"enemyStats"`
	FleeResist float64     `json:"fleeResist"`
	Status     StatusScale `json:"statusScale"`
	Player     *Combatant  `json:"player"`
	Enemy      *Combatant  `json:"enemy"`
	Distance   int         `json:"distance"`
	Turn       int         `json:"turn"`
	State      State       `json:"state"`

	env    Env
	events []string
}

// Start opens an encounter: scales the enemy, restores its persisted
// vitals, rolls distance and initiative, then runs the first start-of-turn.
//
// Precondition: enc.Instance, enc.Template, env.Source and env.PlayerStats are non-nil.
// Postcondition: the session is in PlayerTurn or EnemyTurn unless a dot
// resolved it during the first start-of-turn.
func Start(enc Encounter, env Env) (*Session, Result) {
	if enc.Instance == nil || enc.Template == nil || env.Source == nil || env.PlayerStats == nil {
		panic("combat.Start: precondition violated: instance, template, source and player stats must be non-nil")
	}
	env.Template = enc.Template
	block := enc.Template.Resolve(enc.Scaling)
	hpRatio, manaRatio := enc.Instance.Ratios(enc.Template)

	s := &Session{
		EnemyRef:   enc.Instance.ID,
		TemplateID: enc.Template.ID,
		Boss:       enc.Template.Boss || enc.Instance.Boss,
		EnemyStats: block,
		FleeResist: enc.Template.FleeResist,
		Status:     enc.StatusScale,
		Player:     newCombatant(enc.PlayerName, enc.PlayerHP, enc.PlayerMana, enc.Prepared...),
		Enemy: newCombatant(enc.Template.Name,
			max(1, stats.Floor(float64(block.MaxHP)*hpRatio)),
			stats.Floor(float64(block.MaxMana)*manaRatio)),
		Turn: 1,
	}
	s.Bind(env)

	s.Distance = dice.Between(env.Source, StartDistanceMin, StartDistanceMax)
	player := s.playerStats()
	playerRoll := player.Speed + dice.Between(env.Source, 0, initiativeJitter)
	enemyRoll := block.Speed + dice.Between(env.Source, 0, initiativeJitter)
	s.State = StateEnemyTurn
	if playerRoll >= enemyRoll {
		s.State = StatePlayerTurn
	}

	if n := s.Player.Effects.Len(); n > 0 {
		s.logf("%d prepared effects active.", n)
	}
	boss := ""
	if s.Boss {
		boss = " (boss)"
	}
	s.logf("Combat begins against %s%s.", s.Enemy.Name, boss)
	s.startTurn()
	return s, s.result(true, "")
}

// Bind attaches the runtime context. Call it after restoring a session
// from a snapshot.
func (s *Session) Bind(env Env) {
	if env.Planner == nil {
		env.Planner = ai.NewPolicy(nil, nil)
	}
	s.env = env
}

// Bound reports whether the session has a runtime context.
func (s *Session) Bound() bool { return s.env.Source != nil && s.env.Template != nil }

// Actor returns the side whose turn it is; empty once resolved.
func (s *Session) Actor() Side {
	switch s.State {
	case StatePlayerTurn:
		return SidePlayer
	case StateEnemyTurn:
		return SideEnemy
	}
	return ""
}

// PlayerStats returns the player's derived stats at current vitals.
func (s *Session) PlayerStats() stats.Block { return s.playerStats() }

func (s *Session) playerStats() stats.Block {
	return s.env.PlayerStats(s.Player.HP, s.Player.Mana)
}

func (s *Session) combatant(side Side) *Combatant {
	if side == SidePlayer {
		return s.Player
	}
	return s.Enemy
}

func (s *Session) statsOf(side Side) stats.Block {
	if side == SidePlayer {
		return s.playerStats()
	}
	return s.EnemyStats
}

func (s *Session) fighter(side Side) fighter {
	return newFighter(side, s.combatant(side), s.statsOf(side))
}

func (s *Session) logf(format string, args ...any) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

// result drains the pending events into a Result.
func (s *Session) result(ok bool, reason string) Result {
	r := Result{OK: ok, Reason: reason, Ended: s.State.Resolved(), State: s.State, Events: s.events}
	s.events = nil
	return r
}

func (s *Session) fail(reason string) Result {
	return s.result(false, reason)
}

// checkEnd resolves the encounter if either side has fallen. The enemy is
// checked first.
func (s *Session) checkEnd() bool {
	switch {
	case s.Enemy.IsDead():
		s.State = StateVictory
		s.logf("%s is defeated.", s.Enemy.Name)
	case s.Player.IsDead():
		s.State = StateDefeat
		s.logf("%s falls.", s.Player.Name)
	default:
		return false
	}
	return true
}

// startTurn refills the actor's AP, ticks cooldowns, applies AP penalties,
// dots and regeneration.
func (s *Session) startTurn() {
	side := s.Actor()
	if side == "" {
		return
	}
	c := s.combatant(side)
	block := s.statsOf(side)
	c.AP = block.AP
	c.tickCooldowns()

	if pen := effect.APPenalty(c.Effects); pen > 0 {
		c.AP = max(0, c.AP-pen)
		s.logf("%s loses %d AP this turn.", c.Name, pen)
	}

	if dot := c.Effects.DotDamage(); dot > 0 {
		hit := takeDamage(s.env.Source, newFighter(side, c, block), dot, true)
		s.logf("%s suffers %d damage over time.", c.Name, hit.Damage)
		if s.checkEnd() {
			return
		}
	}

	if side == SidePlayer {
		block = s.playerStats()
		if block.LifeRegen > 0 {
			c.heal(block.LifeRegen, block.MaxHP)
		}
		c.restoreMana(max(stats.MinManaRegen, block.ManaRegen), block.MaxMana)
		return
	}
	if block.LifeRegen > 0 {
		c.heal(block.LifeRegen, block.MaxHP)
	}
}

// endTurn decays the actor's ledger, hands the turn over and starts it.
func (s *Session) endTurn() {
	side := s.Actor()
	if side == "" {
		return
	}
	s.combatant(side).Effects.DecayTurn()
	if side == SidePlayer {
		s.State = StateEnemyTurn
	} else {
		s.State = StatePlayerTurn
	}
	s.Turn++
	s.startTurn()
}

// playerTurn reports the failure result when the player may not act.
func (s *Session) playerTurn() (Result, bool) {
	if s.State.Resolved() {
		return s.fail(ReasonResolved), false
	}
	if s.State != StatePlayerTurn {
		return s.fail(ReasonNotYourTurn), false
	}
	return Result{}, true
}

// EndTurn ends the player's turn. The enemy's turn starts immediately but
// is only played by EnemyTurn.
func (s *Session) EndTurn() Result {
	if r, ok := s.playerTurn(); !ok {
		return r
	}
	s.endTurn()
	return s.result(true, "")
}

// CanCast reports whether the player could cast sk right now.
func (s *Session) CanCast(sk *skill.Skill) bool {
	if sk == nil || s.Player.AP < sk.APCost || s.Player.Mana < sk.ManaCost {
		return false
	}
	if s.Player.Cooldown(sk.ID) > 0 {
		return false
	}
	return sk.InRange(s.Distance, s.playerStats().RangeBonus)
}

// UseSkill casts one of the player's unlocked skills.
func (s *Session) UseSkill(id string) Result {
	if r, ok := s.playerTurn(); !ok {
		return r
	}
	if s.env.PlayerSkills == nil {
		return s.fail(ReasonUnknownSkill)
	}
	sk, ok := s.env.PlayerSkills.Get(id)
	if !ok {
		return s.fail(ReasonUnknownSkill)
	}
	if !s.CanCast(sk) {
		return s.fail(ReasonCannotCast)
	}
	s.applySkill(SidePlayer, sk)
	return s.result(true, "")
}

// Attack performs the player's basic weapon attack.
func (s *Session) Attack() Result {
	if r, ok := s.playerTurn(); !ok {
		return r
	}
	if s.Player.AP < AttackAPCost {
		return s.fail(ReasonAttackAP)
	}
	block := s.playerStats()
	if !block.InRange(s.Distance) {
		return s.fail(fmt.Sprintf("out of weapon range (%d-%d)", block.RangeMin, block.RangeMax))
	}
	s.normalAttack(SidePlayer)
	return s.result(true, "")
}

// Move steps one square closer or away.
//
// Postcondition: on success MinDistance <= Distance <= MaxDistance.
func (s *Session) Move(dir Direction) Result {
	if r, ok := s.playerTurn(); !ok {
		return r
	}
	if s.Player.AP < MoveAPCost {
		return s.fail(ReasonMoveAP)
	}
	if dir == Closer {
		s.Distance = max(MinDistance, s.Distance-1)
		s.logf("%s closes in.", s.Player.Name)
	} else {
		s.Distance = min(MaxDistance, s.Distance+1)
		s.logf("%s backs away.", s.Player.Name)
	}
	s.Player.AP -= MoveAPCost
	return s.result(true, "")
}
