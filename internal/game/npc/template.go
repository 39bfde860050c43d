// Package npc provides enemy template definitions, their material drop
// tables, and the enemy instances placed on floors.
package npc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/veilrun/internal/game/skill"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Defaults applied when a template leaves a field unset.
const (
	DefaultFleeResist = 0.2
	DefaultXPReward   = 50
	DefaultGoldReward = 20
)

// Rewards is what a victory over the template pays before difficulty scaling.
type Rewards struct {
	XP   int `yaml:"xp"`
	Gold int `yaml:"gold"`
}

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	// Boss templates guard a floor exit and roll better loot.
	Boss  bool            `yaml:"boss"`
	Stats stats.EnemyBase `yaml:"stats"`
	// FleeResist is subtracted from the player's flee chance.
	FleeResist float64        `yaml:"flee_resist"`
	Rewards    Rewards        `yaml:"rewards"`
	Drops      DropTable      `yaml:"drops"`
	Skills     []*skill.Skill `yaml:"skills"`

	catalog *skill.Catalog
}

// Normalize fills defaults for unset fields.
func (t *Template) Normalize() {
	if t.Level < 1 {
		t.Level = 1
	}
	if t.FleeResist == 0 {
		t.FleeResist = DefaultFleeResist
	}
	if t.Rewards.XP == 0 {
		t.Rewards.XP = DefaultXPReward
	}
	if t.Rewards.Gold == 0 {
		t.Rewards.Gold = DefaultGoldReward
	}
	if t.Boss && t.Drops.BossShardChance == 0 {
		t.Drops.BossShardChance = DefaultBossShardChance
	}
	if t.Stats.RangeMin == 0 {
		t.Stats.RangeMin = 1
	}
	if t.Stats.RangeMax < t.Stats.RangeMin {
		t.Stats.RangeMax = t.Stats.RangeMin
	}
}

// Build normalizes the template, registers its skills and validates it.
//
// Precondition: t must not be nil.
// Postcondition: on success Catalog() is usable; every violation is reported.
func (t *Template) Build() error {
	t.Normalize()
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if t.Stats.MaxHP < 1 || t.Stats.Attack < 1 || t.Stats.Speed < 1 {
		errs = append(errs, errors.New("stats max_hp, attack and speed must be >= 1"))
	}
	if t.Stats.MaxMana < 0 || t.Stats.Defense < 0 {
		errs = append(errs, errors.New("stats max_mana and defense must be >= 0"))
	}
	if t.FleeResist < 0 || t.FleeResist > 1 {
		errs = append(errs, fmt.Errorf("flee_resist %g must be in [0,1]", t.FleeResist))
	}
	if t.Rewards.XP < 0 || t.Rewards.Gold < 0 {
		errs = append(errs, errors.New("rewards must be >= 0"))
	}
	if err := t.Drops.Validate(); err != nil {
		errs = append(errs, err)
	}
	t.catalog = skill.NewCatalog()
	for _, s := range t.Skills {
		if err := t.catalog.Register(s); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("npc template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// Catalog returns the template's skills.
//
// Precondition: Build succeeded.
func (t *Template) Catalog() *skill.Catalog { return t.catalog }

// Resolve derives the encounter stat block under s.
func (t *Template) Resolve(s stats.Scaling) stats.Block {
	return stats.ResolveEnemy(t.Stats, s)
}

// PreferredBand returns the distance window the enemy tries to fight from:
// the union of its weapon range and every range-limited skill.
func (t *Template) PreferredBand() (lo, hi int) {
	lo, hi = t.Stats.RangeMin, t.Stats.RangeMax
	for _, s := range t.Skills {
		if s.Unrestricted() {
			continue
		}
		lo = min(lo, s.RangeMin)
		hi = max(hi, s.RangeMax)
	}
	return lo, hi
}

// LoadTemplateFromBytes parses and builds a single template from YAML.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a built *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Build(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir, in file name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	templates := make([]*Template, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
