package skill

import "fmt"

// Catalog indexes skills by ID, preserving registration order.
type Catalog struct {
	byID  map[string]*Skill
	order []string
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]*Skill)}
}

// Register normalizes, validates and adds s.
//
// Precondition: s must not be nil.
// Postcondition: Get(s.ID) returns s; returns error on duplicate ID or invalid descriptor.
func (c *Catalog) Register(s *Skill) error {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	if _, exists := c.byID[s.ID]; exists {
		return fmt.Errorf("skill: Catalog.Register: skill ID %q already registered", s.ID)
	}
	c.byID[s.ID] = s
	c.order = append(c.order, s.ID)
	return nil
}

// Get returns the skill for id, or (nil, false) if not found.
func (c *Catalog) Get(id string) (*Skill, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// All returns the skills in registration order.
func (c *Catalog) All() []*Skill {
	out := make([]*Skill, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// UnlockedAt returns, in registration order, the skills whose unlock level is
// at most level.
func (c *Catalog) UnlockedAt(level int) []*Skill {
	var out []*Skill
	for _, s := range c.All() {
		if s.UnlockLevel <= level {
			out = append(out, s)
		}
	}
	return out
}

// UnlockedExactly returns the skills that unlock at exactly level.
func (c *Catalog) UnlockedExactly(level int) []*Skill {
	var out []*Skill
	for _, s := range c.All() {
		if s.UnlockLevel == level {
			out = append(out, s)
		}
	}
	return out
}
