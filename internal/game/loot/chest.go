package loot

import (
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
)

// ChestLoot is everything an opened chest pays out.
type ChestLoot struct {
	Items    []*inventory.Item
	Gold     int
	Material inventory.MaterialGain
}

// OpenChest rolls count items with the drop's bias, then gold and one
// random material stack.
//
// Precondition: count >= 1.
func (g *Generator) OpenChest(d Drop, count int) ChestLoot {
	out := ChestLoot{Items: make([]*inventory.Item, 0, count)}
	for range max(1, count) {
		out.Items = append(out.Items, g.Generate(d))
	}
	rules := g.tables.Chest
	out.Gold = rules.Gold.Roll(g.src)
	material := rules.Materials[dice.Between(g.src, 0, len(rules.Materials)-1)]
	out.Material = inventory.MaterialGain{Material: material, Quantity: rules.Quantity.Roll(g.src)}
	return out
}
