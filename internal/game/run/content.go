// Package run drives one player's descent: exploration of the floor grid,
// encounters through the combat state machine, rewards, the shop and
// crafting, and the serialisable snapshot handed to storage.
package run

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/loot"
	"github.com/cory-johannsen/veilrun/internal/game/npc"
	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

// Content bundles every read-only table a run resolves against.
type Content struct {
	Rules   *ruleset.Ruleset
	Items   *inventory.Registry
	Enemies *npc.Registry
	Loot    *loot.Tables
	Floors  *world.Manager
}

// LoadContent loads the content directory:
//
//	dir/passives.yaml, dir/classes/, dir/difficulty.yaml, dir/rarity.yaml
//	dir/items.yaml       consumables and materials
//	dir/enemies/*.yaml   enemy templates
//	dir/loot.yaml        bases, affixes, chest rules, nodes, recipes
//	dir/floors/*.yaml    floor maps
//
// Postcondition: Returns cross-checked content, or every dangling reference
// joined into one error.
func LoadContent(dir string) (*Content, error) {
	rules, err := ruleset.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading ruleset: %w", err)
	}
	items, err := inventory.LoadRegistry(filepath.Join(dir, "items.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	enemies, err := npc.LoadRegistry(filepath.Join(dir, "enemies"))
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	tables, err := loot.LoadTables(filepath.Join(dir, "loot.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading loot tables: %w", err)
	}
	floors, err := world.LoadFloorsFromDir(filepath.Join(dir, "floors"))
	if err != nil {
		return nil, fmt.Errorf("loading floors: %w", err)
	}
	mgr, err := world.NewManager(floors)
	if err != nil {
		return nil, fmt.Errorf("indexing floors: %w", err)
	}
	c := &Content{Rules: rules, Items: items, Enemies: enemies, Loot: tables, Floors: mgr}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks references between tables: floor placements against
// templates and node kinds, recipe outputs against the item registry.
func (c *Content) Validate() error {
	var errs []error
	for _, f := range c.Floors.AllFloors() {
		for _, e := range f.Enemies {
			if _, err := c.Enemies.Get(e.Template); err != nil {
				errs = append(errs, fmt.Errorf("floor %q: %w", f.ID, err))
			}
		}
		for _, n := range f.Nodes {
			if _, ok := c.Loot.Node(n.Node); !ok {
				errs = append(errs, fmt.Errorf("floor %q: unknown harvest node %q", f.ID, n.Node))
			}
		}
	}
	for _, r := range c.Loot.Recipes {
		if r.Consumable == nil {
			continue
		}
		if _, ok := c.Items.Consumable(r.Consumable.ID); !ok {
			errs = append(errs, fmt.Errorf("recipe %q: unknown consumable %q", r.ID, r.Consumable.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("content: %w", errors.Join(errs...))
	}
	return nil
}

// nodeCharges adapts the loot tables to world.Spawn.
func (c *Content) nodeCharges(kind string) (int, bool) {
	n, ok := c.Loot.Node(kind)
	if !ok {
		return 0, false
	}
	return n.Charges, true
}
