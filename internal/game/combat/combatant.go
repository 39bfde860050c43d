// Package combat implements the turn-based encounter state machine and the
// skill resolver that drives it.
package combat

import (
	"github.com/cory-johannsen/veilrun/internal/game/effect"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Side identifies one of the two combatants.
type Side string

const (
	SidePlayer Side = "player"
	SideEnemy  Side = "enemy"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideEnemy
	}
	return SidePlayer
}

// StatFunc derives the player's stat block from current vitals, so that
// conditional modifiers follow HP and mana as they change mid-fight.
type StatFunc func(hp, mana int) stats.Block

// Combatant holds one side's mutable encounter state.
//
// Invariant: 0 <= HP <= max HP; 0 <= Mana <= max mana; AP >= 0.
type Combatant struct {
	Name      string         `json:"name"`
	HP        int            `json:"hp"`
	Mana      int            `json:"mana"`
	AP        int            `json:"ap"`
	Effects   *effect.Ledger `json:"effects"`
	Cooldowns map[string]int `json:"cooldowns"`
}

func newCombatant(name string, hp, mana int, effects ...effect.Effect) *Combatant {
	return &Combatant{
		Name:      name,
		HP:        hp,
		Mana:      mana,
		Effects:   effect.NewLedger(effects...),
		Cooldowns: make(map[string]int),
	}
}

// IsDead reports whether HP has reached zero.
func (c *Combatant) IsDead() bool { return c.HP <= 0 }

// Cooldown returns the turns left before skill id is usable again.
func (c *Combatant) Cooldown(id string) int { return c.Cooldowns[id] }

func (c *Combatant) tickCooldowns() {
	for id, n := range c.Cooldowns {
		c.Cooldowns[id] = max(0, n-1)
	}
}

func (c *Combatant) heal(n, maxHP int) {
	c.HP = stats.ClampInt(c.HP+n, 0, maxHP)
}

func (c *Combatant) restoreMana(n, maxMana int) {
	c.Mana = stats.ClampInt(c.Mana+n, 0, maxMana)
}
