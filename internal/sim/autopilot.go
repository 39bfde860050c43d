// Package sim plays runs headlessly, either with a rule-based autopilot or
// from a script of command lines.
package sim

import (
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/run"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

// Thresholds steering the autopilot.
const (
	// PotionBelow is the HP ratio under which the pilot drinks in combat.
	PotionBelow = 0.35
	// HealerBelow is the HP ratio under which the pilot pays the healer.
	HealerBelow = 0.6
)

// Candidates returns the command lines the autopilot would try next, best
// first. The caller executes them in order until one succeeds. An empty
// result means the run is over.
func Candidates(r *run.Run) []string {
	st := r.Status()
	if st.Outcome != "" {
		return nil
	}
	inv := r.Inventory()
	hpRatio := float64(st.HP) / float64(max(st.MaxHP, 1))

	if c := st.Combat; c != nil {
		var lines []string
		if hpRatio < PotionBelow {
			for _, s := range inv.Consumables {
				lines = append(lines, "use "+s.ID)
			}
		}
		for _, id := range c.Ready {
			lines = append(lines, "cast "+id)
		}
		return append(lines, "attack", "closer", "end")
	}

	var lines []string
	for _, it := range inv.Items {
		if _, worn := inv.Equipped[it.Slot]; !worn {
			lines = append(lines, "equip "+it.ID)
		}
	}
	if st.PassivePoints > 0 {
		for _, p := range r.Class().Passives {
			lines = append(lines, "learn "+p.ID)
		}
	}
	if hpRatio < HealerBelow {
		lines = append(lines, "heal")
	}
	floor := r.CurrentFloor()
	if _, ok := r.Floor.NodeAt(st.Position); ok {
		lines = append(lines, "harvest")
	}
	if st.AtExit && st.ExitOpen {
		lines = append(lines, "descend")
	}
	if dir, ok := NextStep(floor, r.Floor, st.Position); ok {
		lines = append(lines, string(dir))
	}
	return append(lines, "abandon")
}

// NextStep returns the first move on a shortest walkable path from pos to
// the exit when it is open, otherwise to the nearest living enemy. Moving
// onto an enemy starts the fight.
//
// Precondition: f and s must be non-nil.
func NextStep(f *world.Floor, s *world.State, pos world.Point) (world.Direction, bool) {
	if f == nil || s == nil {
		panic("sim.NextStep: precondition violated: floor and state must be non-nil")
	}
	goal := func(p world.Point) bool {
		if s.ExitOpen && p == f.Exit {
			return true
		}
		_, ok := s.EnemyAt(p)
		return ok
	}

	type step struct {
		p     world.Point
		first world.Direction
	}
	seen := map[world.Point]bool{pos: true}
	queue := []step{{p: pos}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range world.StandardDirections {
			next := cur.p.Step(d)
			if seen[next] || !f.Walkable(next) {
				continue
			}
			seen[next] = true
			first := cur.first
			if first == "" {
				first = d
			}
			if goal(next) {
				return first, true
			}
			// Enemies block the path beyond them.
			if _, ok := s.EnemyAt(next); ok {
				continue
			}
			queue = append(queue, step{p: next, first: first})
		}
	}
	return "", false
}

// Describe formats a one-line summary of a status.
func Describe(st run.Status) string {
	outcome := string(st.Outcome)
	if outcome == "" {
		outcome = "in progress"
	}
	return fmt.Sprintf("%s the %s (%s): level %d, floor %s, %d gold, %s",
		st.Name, st.Class, st.Difficulty, st.Level, st.Floor, st.Gold, outcome)
}
