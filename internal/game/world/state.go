package world

import (
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/npc"
)

// Chest is a placed chest and whether it has been opened.
type Chest struct {
	ID     string           `json:"id"`
	Point  Point            `json:"point"`
	Bias   inventory.Rarity `json:"bias,omitempty"`
	Secret bool             `json:"secret,omitempty"`
	Opened bool             `json:"opened"`
}

// Node is a placed harvest node with its remaining charges.
type Node struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Point   Point  `json:"point"`
	Charges int    `json:"charges"`
}

// TemplateSource resolves enemy templates by ID.
type TemplateSource interface {
	Get(id string) (*npc.Template, error)
}

// ChargeSource returns a harvest node's starting charges.
type ChargeSource func(kind string) (int, bool)

// State is the mutable, serialisable view of one floor during a run.
type State struct {
	FloorID    string          `json:"floorId"`
	Enemies    []*npc.Instance `json:"enemies"`
	Chests     []*Chest        `json:"chests"`
	Nodes      []*Node         `json:"nodes"`
	ExitOpen   bool            `json:"exitOpen"`
	PortalOpen bool            `json:"portalOpen,omitempty"`
}

// Spawn instantiates f's placements. The exit starts closed when a boss
// guards the floor.
//
// Precondition: f passed Validate; templates is non-nil.
// Postcondition: every enemy template and node kind resolved, or an error.
func Spawn(f *Floor, templates TemplateSource, charges ChargeSource) (*State, error) {
	s := &State{FloorID: f.ID, ExitOpen: true}
	for _, e := range f.Enemies {
		tmpl, err := templates.Get(e.Template)
		if err != nil {
			return nil, fmt.Errorf("floor %q: %w", f.ID, err)
		}
		inst := npc.NewInstance(tmpl, e.X, e.Y)
		if inst.Boss {
			s.ExitOpen = false
		}
		s.Enemies = append(s.Enemies, inst)
	}
	for _, c := range f.Chests {
		s.Chests = append(s.Chests, &Chest{ID: c.ID, Point: c.Point, Bias: c.Bias, Secret: c.Secret})
	}
	for _, n := range f.Nodes {
		count := 0
		if charges != nil {
			var ok bool
			if count, ok = charges(n.Node); !ok {
				return nil, fmt.Errorf("floor %q: unknown harvest node %q", f.ID, n.Node)
			}
		}
		s.Nodes = append(s.Nodes, &Node{ID: n.ID, Kind: n.Node, Point: n.Point, Charges: count})
	}
	return s, nil
}

// EnemyAt returns the living enemy standing on p.
func (s *State) EnemyAt(p Point) (*npc.Instance, bool) {
	for _, e := range s.Enemies {
		if !e.IsDead() && e.X == p.X && e.Y == p.Y {
			return e, true
		}
	}
	return nil, false
}

// Enemy returns the instance with id, alive or not.
func (s *State) Enemy(id string) (*npc.Instance, bool) {
	for _, e := range s.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// ChestAt returns the unopened chest on p.
func (s *State) ChestAt(p Point) (*Chest, bool) {
	for _, c := range s.Chests {
		if !c.Opened && c.Point == p {
			return c, true
		}
	}
	return nil, false
}

// NodeAt returns the node on p that still has charges.
func (s *State) NodeAt(p Point) (*Node, bool) {
	for _, n := range s.Nodes {
		if n.Charges > 0 && n.Point == p {
			return n, true
		}
	}
	return nil, false
}

// Living returns the number of enemies still alive.
func (s *State) Living() int {
	n := 0
	for _, e := range s.Enemies {
		if !e.IsDead() {
			n++
		}
	}
	return n
}
