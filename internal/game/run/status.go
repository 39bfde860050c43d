package run

import (
	"sort"

	"github.com/cory-johannsen/veilrun/internal/game/combat"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/npc"
	"github.com/cory-johannsen/veilrun/internal/game/progression"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

// Status is a point-in-time view of a run for display and for automated
// players.
type Status struct {
	Name          string
	Class         string
	Difficulty    string
	Level         int
	XP            int
	XPNext        int
	PassivePoints int
	HP            int
	MaxHP         int
	Mana          int
	MaxMana       int
	Gold          int
	Floor         string
	Position      world.Point
	AtExit        bool
	ExitOpen      bool
	Outcome       Outcome
	// Combat is nil outside an encounter.
	Combat *CombatStatus
}

// CombatStatus describes the encounter in progress.
type CombatStatus struct {
	Enemy      string
	Boss       bool
	EnemyHP    int
	EnemyMaxHP int
	// Condition is the wound band of the enemy, e.g. "heavily wounded".
	Condition string
	Distance   int
	AP         int
	Turn       int
	State      combat.State
	FleeChance float64
	// Ready lists the IDs of the skills the player could cast right now.
	Ready []string
}

// Status snapshots the run.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.Player.Stats(r.class)
	track := r.Player.Progress
	st := Status{
		Name:          r.Player.Name,
		Class:         r.class.ID,
		Difficulty:    r.diff.ID,
		Level:         track.Level,
		XP:            track.XP,
		XPNext:        progression.XPForLevel(track.Level),
		PassivePoints: track.PassivePoints,
		HP:            r.Player.HP,
		MaxHP:         b.MaxHP,
		Mana:          r.Player.Mana,
		MaxMana:       b.MaxMana,
		Gold:          r.Player.Gold,
		Floor:         r.floor.Name,
		Position:      r.Position,
		AtExit:        r.Position == r.floor.Exit,
		ExitOpen:      r.Floor.ExitOpen,
		Outcome:       r.Outcome,
	}
	if s := r.Combat; s != nil {
		cs := &CombatStatus{
			Enemy:      s.Enemy.Name,
			Boss:       s.Boss,
			EnemyHP:    s.Enemy.HP,
			EnemyMaxHP: s.EnemyStats.MaxHP,
			Condition:  npc.HealthDescription(s.Enemy.HP, s.EnemyStats.MaxHP),
			Distance:   s.Distance,
			AP:         s.Player.AP,
			Turn:       s.Turn,
			State:      s.State,
			FleeChance: s.FleeChance(),
		}
		for _, sk := range r.Player.Skills(r.class).All() {
			if s.CanCast(sk) {
				cs.Ready = append(cs.Ready, sk.ID)
			}
		}
		st.Combat = cs
	}
	return st
}

// MaterialCount is one crafting material held in the bag.
type MaterialCount struct {
	ID    string
	Name  string
	Count int
}

// InventoryView is a copy of the player's belongings.
type InventoryView struct {
	Equipped    map[inventory.Slot]inventory.Item
	Items       []inventory.Item
	Consumables []inventory.Stack
	// Materials are ordered by ID.
	Materials []MaterialCount
}

// Inventory copies the player's equipment and bag.
func (r *Run) Inventory() InventoryView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := InventoryView{Equipped: make(map[inventory.Slot]inventory.Item)}
	for _, slot := range inventory.Slots {
		if it := r.Player.Equipment.Get(slot); it != nil {
			v.Equipped[slot] = *it
		}
	}
	for _, it := range r.Player.Bag.Items {
		v.Items = append(v.Items, *it)
	}
	for _, st := range r.Player.Bag.Consumables {
		v.Consumables = append(v.Consumables, *st)
	}
	for id, n := range r.Player.Bag.Materials {
		if n > 0 {
			v.Materials = append(v.Materials, MaterialCount{ID: id, Name: r.deps.Content.Items.MaterialName(id), Count: n})
		}
	}
	sort.Slice(v.Materials, func(i, j int) bool { return v.Materials[i].ID < v.Materials[j].ID })
	return v
}
