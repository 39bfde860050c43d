package npc

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
)

// BossShardMaterial is the material a boss may drop on top of its table.
const BossShardMaterial = "boss_shard"

// DefaultBossShardChance applies to boss templates that do not set one.
const DefaultBossShardChance = 0.5

// MaterialDrop is one material entry in a drop table.
type MaterialDrop struct {
	Material string     `yaml:"material"`
	Chance   float64    `yaml:"chance"`
	Quantity dice.Range `yaml:"quantity"`
}

// DropTable defines the materials an enemy may leave behind.
type DropTable struct {
	Materials       []MaterialDrop `yaml:"materials"`
	BossShardChance float64        `yaml:"boss_shard_chance"`
}

// Validate checks that the drop table satisfies its invariants.
//
// Postcondition: Returns nil iff every entry names a material, has a chance
// in (0, 1] and a quantity of at least 1; an empty table is valid.
func (dt *DropTable) Validate() error {
	var errs []error
	for i, d := range dt.Materials {
		if d.Material == "" {
			errs = append(errs, fmt.Errorf("drop[%d] must name a material", i))
		}
		if d.Chance <= 0 || d.Chance > 1 {
			errs = append(errs, fmt.Errorf("drop[%d] chance must be in (0, 1], got %g", i, d.Chance))
		}
		if d.Quantity.Min < 1 {
			errs = append(errs, fmt.Errorf("drop[%d] quantity must be >= 1, got %s", i, d.Quantity))
		}
	}
	if dt.BossShardChance < 0 || dt.BossShardChance > 1 {
		errs = append(errs, fmt.Errorf("boss_shard_chance must be in [0, 1], got %g", dt.BossShardChance))
	}
	return errors.Join(errs...)
}

// Roll draws the table once. Each entry passes its chance roll independently;
// bosses then roll for a single shard.
//
// Precondition: dt passed Validate; src must be non-nil.
// Postcondition: every returned quantity lies in its entry's range.
func (dt *DropTable) Roll(src dice.Source, boss bool) []inventory.MaterialGain {
	var out []inventory.MaterialGain
	for _, d := range dt.Materials {
		if !dice.Chance(src, d.Chance) {
			continue
		}
		out = append(out, inventory.MaterialGain{Material: d.Material, Quantity: d.Quantity.Roll(src)})
	}
	if boss && dice.Chance(src, dt.BossShardChance) {
		out = append(out, inventory.MaterialGain{Material: BossShardMaterial, Quantity: 1})
	}
	return out
}
