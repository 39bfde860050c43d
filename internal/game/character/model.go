// Package character defines the player model and pure creation logic.
package character

import (
	"github.com/cory-johannsen/veilrun/internal/game/effect"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/progression"
	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Player is the run's persistent character state.
//
// Invariant: 0 <= HP <= max HP; 0 <= Mana <= max mana; Gold >= 0.
type Player struct {
	Name     string             `json:"name"`
	Class    string             `json:"class"`
	Progress *progression.Track `json:"progress"`

	HP   int `json:"hp"`
	Mana int `json:"mana"`
	Gold int `json:"gold"`

	Bag       *inventory.Bag       `json:"bag"`
	Equipment *inventory.Equipment `json:"equipment"`
	// Prepared are buffs from consumables used outside combat. They move into
	// the combat ledger when the next encounter starts.
	Prepared []effect.Effect `json:"prepared"`
}

// Level returns the player's level.
func (p *Player) Level() int { return p.Progress.Level }

// Config returns the resolver input for class at the given vitals.
func (p *Player) Config(class *ruleset.Class, hp, mana int) stats.PlayerConfig {
	passives := make([]stats.Bonuses, 0, len(p.Progress.Passives))
	for _, id := range p.Progress.Passives {
		if ps, ok := class.Passive(id); ok {
			passives = append(passives, ps.Bonuses)
		}
	}
	return stats.PlayerConfig{
		Base:     class.Base,
		Level:    p.Progress.Level,
		Gear:     p.Equipment.Gear(),
		Passives: passives,
		Innate:   class.InnateBonuses(),
		HP:       hp,
		Mana:     mana,
	}
}

// StatsAt derives the player's stat block at the given vitals.
func (p *Player) StatsAt(class *ruleset.Class, hp, mana int) stats.Block {
	return stats.ResolvePlayer(p.Config(class, hp, mana))
}

// Stats derives the player's stat block at current vitals.
func (p *Player) Stats(class *ruleset.Class) stats.Block {
	return p.StatsAt(class, p.HP, p.Mana)
}

// ClampVitals re-clamps HP and mana after the maxima changed.
func (p *Player) ClampVitals(class *ruleset.Class) {
	b := p.Stats(class)
	p.HP = stats.ClampInt(p.HP, 0, b.MaxHP)
	p.Mana = stats.ClampInt(p.Mana, 0, b.MaxMana)
}

// Restore fills HP and mana to their maxima.
func (p *Player) Restore(class *ruleset.Class) {
	b := p.Stats(class)
	p.HP = b.MaxHP
	p.Mana = b.MaxMana
}

// SkillBook is the subset of a class's skills a player has unlocked.
type SkillBook struct {
	catalog *skill.Catalog
	level   int
}

// Skills returns the player's unlocked skills.
func (p *Player) Skills(class *ruleset.Class) SkillBook {
	return SkillBook{catalog: class.Catalog(), level: p.Progress.Level}
}

// Get returns the skill with id if it is unlocked.
func (b SkillBook) Get(id string) (*skill.Skill, bool) {
	if b.catalog == nil {
		return nil, false
	}
	s, ok := b.catalog.Get(id)
	if !ok || s.UnlockLevel > b.level {
		return nil, false
	}
	return s, true
}

// All returns the unlocked skills in class order.
func (b SkillBook) All() []*skill.Skill {
	if b.catalog == nil {
		return nil
	}
	return b.catalog.UnlockedAt(b.level)
}
