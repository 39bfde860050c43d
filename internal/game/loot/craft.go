package loot

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// CraftedConsumableValue is the shop value of a crafted consumable.
const CraftedConsumableValue = 30

const craftLevelScale = 0.03

// ErrMissingMaterials is returned when the materials do not cover a recipe.
var ErrMissingMaterials = errors.New("missing materials")

// Crafted is what a recipe produced. Exactly one of Item and Consumable is set.
type Crafted struct {
	Item       *inventory.Item
	Consumable *ConsumableResult
	Rarity     inventory.Rarity
	Value      int
}

// Craft spends the recipe's materials from mats and builds its result.
// Equipment scales with the tier's power and the crafter's level and rolls
// affixes like dropped loot.
//
// Precondition: r and mats must be non-nil.
// Postcondition: on error mats is unchanged.
func (g *Generator) Craft(r *Recipe, mats inventory.Materials, level int) (Crafted, error) {
	if !mats.Has(r.Materials) {
		return Crafted{}, fmt.Errorf("%w for %s", ErrMissingMaterials, r.ID)
	}
	if err := mats.Spend(r.Materials); err != nil {
		return Crafted{}, fmt.Errorf("%w: %v", ErrMissingMaterials, err)
	}
	if r.Consumable != nil {
		res := *r.Consumable
		return Crafted{Consumable: &res, Rarity: r.Rarity, Value: CraftedConsumableValue}, nil
	}

	tier := g.rarity.Tier(r.Rarity)
	scale := tier.Power * (1 + float64(level)*craftLevelScale)
	it := r.Equipment.item(r.Equipment.Slot, r.Rarity)
	it.Attack = stats.Floor(float64(r.Equipment.Attack) * scale)
	it.Defense = stats.Floor(float64(r.Equipment.Defense) * scale)
	it.Value = stats.Floor(float64(r.Equipment.Value) * tier.Value)
	g.applyAffixes(it, level)
	return Crafted{Item: it, Rarity: r.Rarity, Value: it.Value}, nil
}
