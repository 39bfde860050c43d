package world

import (
	"fmt"
	"sort"
	"sync"
)

// Manager provides thread-safe access to the loaded floors, ordered by depth.
// Floors a portal leads to are off the descent: Next never returns them.
type Manager struct {
	mu     sync.RWMutex
	floors map[string]*Floor
	order  []string
	hidden map[string]bool
}

// NewManager creates a Manager from the given floors.
//
// Precondition: floors must contain at least one floor.
// Postcondition: Returns a Manager with floors sorted by depth, or an error
// on duplicate IDs or depths, a dangling portal, or a portal into the
// shallowest floor.
func NewManager(floors []*Floor) (*Manager, error) {
	if len(floors) == 0 {
		return nil, fmt.Errorf("world: at least one floor is required")
	}
	m := &Manager{floors: make(map[string]*Floor, len(floors)), hidden: make(map[string]bool)}
	depths := make(map[int]string, len(floors))
	for _, f := range floors {
		if _, exists := m.floors[f.ID]; exists {
			return nil, fmt.Errorf("duplicate floor ID: %q", f.ID)
		}
		if other, exists := depths[f.Depth]; exists {
			return nil, fmt.Errorf("floors %q and %q share depth %d", other, f.ID, f.Depth)
		}
		depths[f.Depth] = f.ID
		m.floors[f.ID] = f
		m.order = append(m.order, f.ID)
	}
	sort.Slice(m.order, func(i, j int) bool {
		return m.floors[m.order[i]].Depth < m.floors[m.order[j]].Depth
	})
	for _, f := range floors {
		if f.Portal == nil {
			continue
		}
		if _, ok := m.floors[f.Portal.Target]; !ok {
			return nil, fmt.Errorf("floor %q: portal target %q not found", f.ID, f.Portal.Target)
		}
		m.hidden[f.Portal.Target] = true
	}
	if m.hidden[m.order[0]] {
		return nil, fmt.Errorf("floor %q is a portal target and cannot start the descent", m.order[0])
	}
	return m, nil
}

// Floor returns the floor with the given ID.
//
// Postcondition: Returns (floor, true) if found, or (nil, false) otherwise.
func (m *Manager) Floor(id string) (*Floor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.floors[id]
	return f, ok
}

// First returns the shallowest floor.
func (m *Manager) First() *Floor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.floors[m.order[0]]
}

// Next returns the first floor on the descent below id, or (nil, false)
// when none is left.
func (m *Manager) Next(id string) (*Floor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, fid := range m.order {
		if fid != id {
			continue
		}
		for _, next := range m.order[i+1:] {
			if !m.hidden[next] {
				return m.floors[next], true
			}
		}
		return nil, false
	}
	return nil, false
}

// Hidden reports whether id is reachable only through a portal.
func (m *Manager) Hidden(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hidden[id]
}

// Navigate resolves one step from p on floor id.
//
// Postcondition: Returns the destination, or an error if the floor is
// unknown or the destination is not walkable.
func (m *Manager) Navigate(id string, p Point, dir Direction) (Point, error) {
	f, ok := m.Floor(id)
	if !ok {
		return p, fmt.Errorf("floor %q not found", id)
	}
	if !dir.IsStandard() {
		return p, fmt.Errorf("unknown direction %q", dir)
	}
	to := p.Step(dir)
	if !f.Walkable(to) {
		return p, fmt.Errorf("the way %s is blocked", dir)
	}
	return to, nil
}

// FloorCount returns the number of loaded floors.
func (m *Manager) FloorCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.floors)
}

// AllFloors returns every floor in depth order.
//
// Postcondition: Returns a non-nil slice.
func (m *Manager) AllFloors() []*Floor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Floor, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.floors[id])
	}
	return out
}
