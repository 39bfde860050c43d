package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// StarterWeapon is the common weapon a new character of a class wields.
type StarterWeapon struct {
	Name       string               `yaml:"name"`
	WeaponType inventory.WeaponType `yaml:"weapon_type"`
	RangeMin   int                  `yaml:"range_min"`
	RangeMax   int                  `yaml:"range_max"`
	Attack     int                  `yaml:"attack"`
	Defense    int                  `yaml:"defense"`
	Value      int                  `yaml:"value"`
}

// Item creates a fresh inventory item from the starter definition.
//
// Postcondition: the item is a common weapon with a new ID.
func (w StarterWeapon) Item() *inventory.Item {
	it := &inventory.Item{
		ID:         inventory.NewItemID(),
		Slot:       inventory.SlotWeapon,
		Name:       w.Name,
		Rarity:     inventory.Common,
		Attack:     w.Attack,
		Defense:    w.Defense,
		Value:      w.Value,
		WeaponType: w.WeaponType,
		RangeMin:   w.RangeMin,
		RangeMax:   w.RangeMax,
	}
	if it.WeaponType == "" {
		it.WeaponType = inventory.WeaponMelee
	}
	if it.RangeMin == 0 {
		it.RangeMin, it.RangeMax = it.WeaponType.DefaultRange()
	}
	return it
}

// Class defines a playable class: level-1 stats, the innate trait, the
// skills it unlocks by level, and its passive tree.
//
// Precondition: ID and Name must be non-empty after loading.
type Class struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Base        stats.Base     `yaml:"base"`
	Innate      *Passive       `yaml:"innate"`
	Starter     StarterWeapon  `yaml:"starter_weapon"`
	Skills      []*skill.Skill `yaml:"skills"`
	Passives    []*Passive     `yaml:"passives"`

	catalog  *skill.Catalog
	passives map[string]*Passive
}

// Build resolves shared passive references, registers the skills, and
// validates the class.
//
// Postcondition: on success Catalog() and Passive() are usable.
func (c *Class) Build(shared map[string]*Passive) error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.Base.MaxHP <= 0 || c.Base.Attack <= 0 || c.Base.Speed <= 0 {
		errs = append(errs, errors.New("base max_hp, attack and speed must be > 0"))
	}
	if c.Starter.Name == "" {
		errs = append(errs, errors.New("starter_weapon name must not be empty"))
	}
	if c.Innate != nil {
		if err := c.Innate.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	c.catalog = skill.NewCatalog()
	for _, s := range c.Skills {
		if err := c.catalog.Register(s); err != nil {
			errs = append(errs, err)
		}
	}
	if len(c.Skills) > 0 && len(c.catalog.UnlockedAt(1)) == 0 {
		errs = append(errs, errors.New("no skill unlocks at level 1"))
	}

	resolved, err := resolvePassives(c.Passives, shared)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.Passives = resolved
		c.passives = make(map[string]*Passive, len(resolved))
		for _, p := range resolved {
			c.passives[p.ID] = p
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("class %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// Catalog returns the class's skills.
//
// Precondition: Build succeeded.
func (c *Class) Catalog() *skill.Catalog { return c.catalog }

// Skill returns the skill with id.
func (c *Class) Skill(id string) (*skill.Skill, bool) {
	if c.catalog == nil {
		return nil, false
	}
	return c.catalog.Get(id)
}

// Passive returns the passive with id from the class tree.
func (c *Class) Passive(id string) (*Passive, bool) {
	p, ok := c.passives[id]
	return p, ok
}

// InnateBonuses returns the innate trait's bonuses, or nil.
func (c *Class) InnateBonuses() stats.Bonuses {
	if c.Innate == nil {
		return nil
	}
	return c.Innate.Bonuses
}

// LoadClassFromBytes parses and builds a class from YAML.
func LoadClassFromBytes(data []byte, shared map[string]*Passive) (*Class, error) {
	var c Class
	if err := decodeStrict(data, &c); err != nil {
		return nil, fmt.Errorf("parsing class: %w", err)
	}
	if err := c.Build(shared); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all classes in file name order or a non-nil error.
func LoadClasses(dir string, shared map[string]*Passive) ([]*Class, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(files))
	for _, path := range files {
		var c Class
		if err := readStrict(path, &c); err != nil {
			return nil, err
		}
		if err := c.Build(shared); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		classes = append(classes, &c)
	}
	return classes, nil
}
