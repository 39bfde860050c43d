package ruleset

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrUnknownClass is returned when a class ID is not in the ruleset.
var ErrUnknownClass = errors.New("unknown class")

// ErrUnknownDifficulty is returned when a difficulty ID is not in the ruleset.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Ruleset indexes classes and difficulty profiles and carries the rarity
// table.
type Ruleset struct {
	classes      map[string]*Class
	classOrder   []string
	difficulties map[string]*Difficulty
	diffOrder    []string
	rarity       *RarityTable
}

// New assembles a Ruleset.
//
// Precondition: every class has been built; rarity is non-nil.
// Postcondition: returns an error on duplicate IDs or when classes or
// difficulties are empty.
func New(classes []*Class, difficulties []*Difficulty, rarity *RarityTable) (*Ruleset, error) {
	if rarity == nil {
		panic("ruleset.New: precondition violated: rarity must be non-nil")
	}
	if len(classes) == 0 || len(difficulties) == 0 {
		return nil, errors.New("ruleset: at least one class and one difficulty are required")
	}
	r := &Ruleset{
		classes:      make(map[string]*Class, len(classes)),
		difficulties: make(map[string]*Difficulty, len(difficulties)),
		rarity:       rarity,
	}
	for _, c := range classes {
		if _, dup := r.classes[c.ID]; dup {
			return nil, fmt.Errorf("ruleset: class %q defined twice", c.ID)
		}
		r.classes[c.ID] = c
		r.classOrder = append(r.classOrder, c.ID)
	}
	for _, d := range difficulties {
		if _, dup := r.difficulties[d.ID]; dup {
			return nil, fmt.Errorf("ruleset: difficulty %q defined twice", d.ID)
		}
		r.difficulties[d.ID] = d
		r.diffOrder = append(r.diffOrder, d.ID)
	}
	return r, nil
}

// Load reads a ruleset laid out as:
//
//	dir/passives.yaml    shared passives
//	dir/classes/*.yaml   one class per file
//	dir/difficulty.yaml  difficulty profiles
//	dir/rarity.yaml      rarity tiers
func Load(dir string) (*Ruleset, error) {
	shared, err := LoadSharedPassives(filepath.Join(dir, "passives.yaml"))
	if err != nil {
		return nil, err
	}
	classes, err := LoadClasses(filepath.Join(dir, "classes"), shared)
	if err != nil {
		return nil, err
	}
	diffs, err := LoadDifficulties(filepath.Join(dir, "difficulty.yaml"))
	if err != nil {
		return nil, err
	}
	table, err := LoadRarityTable(filepath.Join(dir, "rarity.yaml"))
	if err != nil {
		return nil, err
	}
	return New(classes, diffs, table)
}

// Class returns the class with id.
func (r *Ruleset) Class(id string) (*Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, id)
	}
	return c, nil
}

// Classes returns every class in load order.
func (r *Ruleset) Classes() []*Class {
	out := make([]*Class, 0, len(r.classOrder))
	for _, id := range r.classOrder {
		out = append(out, r.classes[id])
	}
	return out
}

// Difficulty returns the profile with id.
func (r *Ruleset) Difficulty(id string) (*Difficulty, error) {
	d, ok := r.difficulties[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, id)
	}
	return d, nil
}

// Difficulties returns every profile in load order.
func (r *Ruleset) Difficulties() []*Difficulty {
	out := make([]*Difficulty, 0, len(r.diffOrder))
	for _, id := range r.diffOrder {
		out = append(out, r.difficulties[id])
	}
	return out
}

// Rarity returns the rarity table.
func (r *Ruleset) Rarity() *RarityTable { return r.rarity }
