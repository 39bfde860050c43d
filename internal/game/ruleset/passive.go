package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Passive is one permanent bonus a player can unlock, or a class's innate
// trait. Requires names the passive that must be unlocked first.
//
// An entry in a class file may set Ref instead of the full definition to
// reuse a shared passive; a non-empty Requires on such an entry overrides the
// shared prerequisite.
type Passive struct {
	ID          string        `yaml:"id" json:"id"`
	Ref         string        `yaml:"ref" json:"-"`
	Tier        int           `yaml:"tier" json:"tier"`
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description,omitempty"`
	Requires    string        `yaml:"requires" json:"requires,omitempty"`
	Bonuses     stats.Bonuses `yaml:"bonuses" json:"bonuses"`
}

// Validate checks a fully resolved passive.
func (p *Passive) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if p.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if len(p.Bonuses) == 0 {
		errs = append(errs, errors.New("bonuses must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("passive %q: %w", p.ID, errors.Join(errs...))
	}
	return nil
}

type sharedFile struct {
	Passives []*Passive `yaml:"passives"`
}

// LoadSharedPassives reads the passives several classes reuse.
//
// Precondition: path names a readable YAML file with a `passives` list.
// Postcondition: returns the passives indexed by ID or a non-nil error.
func LoadSharedPassives(path string) (map[string]*Passive, error) {
	var f sharedFile
	if err := readStrict(path, &f); err != nil {
		return nil, err
	}
	return indexShared(f.Passives)
}

func indexShared(list []*Passive) (map[string]*Passive, error) {
	out := make(map[string]*Passive, len(list))
	for _, p := range list {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := out[p.ID]; dup {
			return nil, fmt.Errorf("shared passive %q defined twice", p.ID)
		}
		out[p.ID] = p
	}
	return out, nil
}

// resolvePassives expands Ref entries against shared and validates the tree:
// unique IDs, known prerequisites, and no prerequisite cycles.
func resolvePassives(entries []*Passive, shared map[string]*Passive) ([]*Passive, error) {
	out := make([]*Passive, 0, len(entries))
	byID := make(map[string]*Passive, len(entries))
	for _, e := range entries {
		p := e
		if e.Ref != "" {
			base, ok := shared[e.Ref]
			if !ok {
				return nil, fmt.Errorf("passive ref %q is not a shared passive", e.Ref)
			}
			cp := *base
			cp.Bonuses = stats.Merge(base.Bonuses)
			if e.Requires != "" {
				cp.Requires = e.Requires
			}
			p = &cp
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("passive %q appears twice in the tree", p.ID)
		}
		byID[p.ID] = p
		out = append(out, p)
	}
	for _, p := range out {
		if p.Requires == "" {
			continue
		}
		if _, ok := byID[p.Requires]; !ok {
			return nil, fmt.Errorf("passive %q requires unknown passive %q", p.ID, p.Requires)
		}
		seen := map[string]bool{p.ID: true}
		for cur := byID[p.Requires]; cur != nil; cur = byID[cur.Requires] {
			if seen[cur.ID] {
				return nil, fmt.Errorf("passive %q has a prerequisite cycle", p.ID)
			}
			seen[cur.ID] = true
		}
	}
	return out, nil
}
