// Package world provides the floor model the run explores: a walkable grid
// with enemy, chest and harvest-node placements and an exit gate.
package world

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
)

// Direction is a single grid step.
type Direction string

// Grid directions.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// StandardDirections contains every direction in display order.
var StandardDirections = []Direction{North, South, East, West}

// IsStandard reports whether d is one of the four grid directions.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Opposite returns the reverse direction, or "" for an unknown one.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return ""
	}
}

// Delta returns the grid offset of one step in d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

// Point is a grid coordinate. Y grows southwards.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Step returns the neighbouring point in d.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Wall is the only impassable tile.
const Wall = '#'

// EnemySpawn places one enemy instance.
type EnemySpawn struct {
	Template string `yaml:"template"`
	Point    `yaml:",inline"`
}

// ChestSpawn places one chest. Bias shifts its loot roll toward a rarity;
// a secret chest sits in a hidden alcove.
type ChestSpawn struct {
	ID     string           `yaml:"id"`
	Point  `yaml:",inline"`
	Bias   inventory.Rarity `yaml:"bias"`
	Secret bool             `yaml:"secret"`
}

// NodeSpawn places one harvest node.
type NodeSpawn struct {
	ID    string `yaml:"id"`
	Node  string `yaml:"node"`
	Point `yaml:",inline"`
}

// Portal is a hidden passage to a floor off the descent. It opens only when
// the floor's boss falls and the reveal roll succeeds.
type Portal struct {
	Point  `yaml:",inline"`
	Target string `yaml:"target"`
	// RevealChance is the chance a boss kill opens the portal; unset means certain.
	RevealChance float64 `yaml:"reveal_chance"`
}

// Chance returns the reveal probability.
func (p *Portal) Chance() float64 {
	if p.RevealChance <= 0 {
		return 1
	}
	return p.RevealChance
}

// Floor is one static level of the run.
type Floor struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Depth orders floors; the run descends in ascending depth.
	Depth int `yaml:"depth"`
	// Level drives loot scaling on this floor.
	Level int `yaml:"level"`
	// Secret floors drop an extra chest item.
	Secret  bool         `yaml:"secret"`
	Start   Point        `yaml:"start"`
	Exit    Point        `yaml:"exit"`
	Map     []string     `yaml:"map"`
	Enemies []EnemySpawn `yaml:"enemies"`
	Chests  []ChestSpawn `yaml:"chests"`
	Nodes   []NodeSpawn  `yaml:"nodes"`
	Portal  *Portal      `yaml:"portal"`
}

// Width returns the width of the widest row.
func (f *Floor) Width() int {
	w := 0
	for _, row := range f.Map {
		w = max(w, len(row))
	}
	return w
}

// Height returns the number of rows.
func (f *Floor) Height() int { return len(f.Map) }

// Walkable reports whether p is inside the map and not a wall.
func (f *Floor) Walkable(p Point) bool {
	if p.Y < 0 || p.Y >= len(f.Map) {
		return false
	}
	row := f.Map[p.Y]
	if p.X < 0 || p.X >= len(row) {
		return false
	}
	return row[p.X] != Wall && row[p.X] != ' '
}

// Validate checks floor invariants and reports every violation.
//
// Postcondition: Returns nil if valid.
func (f *Floor) Validate() error {
	if f.ID == "" {
		return errors.New("floor ID must not be empty")
	}
	var errs []error
	if f.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if f.Depth < 1 || f.Level < 1 {
		errs = append(errs, errors.New("depth and level must be >= 1"))
	}
	if len(f.Map) == 0 {
		errs = append(errs, errors.New("map must not be empty"))
	}
	check := func(what string, p Point) {
		if !f.Walkable(p) {
			errs = append(errs, fmt.Errorf("%s at (%d,%d) is not walkable", what, p.X, p.Y))
		}
	}
	check("start", f.Start)
	check("exit", f.Exit)
	for _, e := range f.Enemies {
		if e.Template == "" {
			errs = append(errs, errors.New("enemy spawn without template"))
		}
		check("enemy "+e.Template, e.Point)
	}
	ids := make(map[string]bool)
	for _, c := range f.Chests {
		if c.ID == "" || ids[c.ID] {
			errs = append(errs, fmt.Errorf("chest id %q is empty or duplicated", c.ID))
		}
		ids[c.ID] = true
		if c.Bias != "" && !c.Bias.Valid() {
			errs = append(errs, fmt.Errorf("chest %q: unknown bias %q", c.ID, c.Bias))
		}
		check("chest "+c.ID, c.Point)
	}
	for _, n := range f.Nodes {
		if n.ID == "" || ids[n.ID] {
			errs = append(errs, fmt.Errorf("node id %q is empty or duplicated", n.ID))
		}
		ids[n.ID] = true
		if n.Node == "" {
			errs = append(errs, fmt.Errorf("node %q: kind must not be empty", n.ID))
		}
		check("node "+n.ID, n.Point)
	}
	if p := f.Portal; p != nil {
		if p.Target == "" || p.Target == f.ID {
			errs = append(errs, fmt.Errorf("portal target %q must name another floor", p.Target))
		}
		if p.RevealChance < 0 || p.RevealChance > 1 {
			errs = append(errs, fmt.Errorf("portal reveal chance %g not in [0,1]", p.RevealChance))
		}
		check("portal", p.Point)
	}
	if len(errs) > 0 {
		return fmt.Errorf("floor %q: %w", f.ID, errors.Join(errs...))
	}
	return nil
}
