package loot

import (
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Harvest rolls one gathering pass over node. Each drop passing its chance
// yields a quantity plus gatherBonus times a second quantity roll.
//
// Precondition: node must be non-nil; gatherBonus >= 0.
// Postcondition: every quantity is at least its drop's minimum.
func (g *Generator) Harvest(node *Node, gatherBonus float64) []inventory.MaterialGain {
	var out []inventory.MaterialGain
	for _, d := range node.Drops {
		if !dice.Chance(g.src, d.Chance) {
			continue
		}
		qty := d.Quantity.Roll(g.src)
		qty += stats.Floor(float64(d.Quantity.Roll(g.src)) * gatherBonus)
		out = append(out, inventory.MaterialGain{Material: d.Material, Quantity: qty})
	}
	return out
}
