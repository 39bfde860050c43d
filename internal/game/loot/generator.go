package loot

import (
	"math"
	"sort"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Balancing constants for generated equipment.
const (
	levelScalePerLevel = 0.045
	affixLevelScale    = 0.02
	affixValueBonus    = 24
	bossBiasBonus      = 4
	biasBonus          = 2
	biasPenalty        = 3
	mythicRelicPrefix  = "Mythic relic: "
	mythicRelicStats   = 5
	mythicRelicValue   = 420
	defaultRelicSource = "Relic"
)

// Drop is the context of one generated piece of equipment.
type Drop struct {
	Level int
	// LootMultiplier comes from the difficulty profile; 0 means 1.
	LootMultiplier float64
	Boss           bool
	// Bias shifts the rarity roll toward and above a tier; empty means none.
	Bias inventory.Rarity
	// Source names the enemy or container for mythic relic names.
	Source string
}

// Generator rolls equipment from the loot tables.
// It is not safe for concurrent use; the caller must serialise access.
type Generator struct {
	tables *Tables
	rarity *ruleset.RarityTable
	src    dice.Source
}

// NewGenerator creates a Generator.
//
// Precondition: tables, rarity and src must be non-nil; tables passed Validate.
func NewGenerator(tables *Tables, rarity *ruleset.RarityTable, src dice.Source) *Generator {
	if tables == nil || rarity == nil || src == nil {
		panic("loot.NewGenerator: precondition violated: tables, rarity and src must be non-nil")
	}
	return &Generator{tables: tables, rarity: rarity, src: src}
}

// Tables returns the generator's content tables.
func (g *Generator) Tables() *Tables { return g.tables }

// RollRarity draws a tier from the rarity ladder.
//
// With a bias, tiers at or above it gain weight (more in boss fights) and
// tiers more than one below it lose weight. Mythic only drops from bosses;
// a mythic roll elsewhere degrades to legendary.
func (g *Generator) RollRarity(boss bool, bias inventory.Rarity) inventory.Rarity {
	weights := g.rarity.Weights(boss)
	if idx := bias.Rank(); idx >= 0 {
		bonus := biasBonus
		if boss {
			bonus = bossBiasBonus
		}
		for i := range weights {
			if i >= idx {
				weights[i] += bonus
			}
			if i < idx-1 {
				weights[i] = max(0, weights[i]-biasPenalty)
			}
		}
	}
	i := dice.Weighted(g.src, weights)
	if i < 0 {
		return inventory.Common
	}
	r := inventory.Rarities[i]
	if !boss && r == inventory.Mythic {
		return inventory.Legendary
	}
	return r
}

// RollSlot draws an equipment slot by the slot weights.
func (g *Generator) RollSlot() inventory.Slot {
	weights := make([]int, len(inventory.Slots))
	for i, s := range inventory.Slots {
		weights[i] = g.tables.SlotWeights[s]
	}
	i := dice.Weighted(g.src, weights)
	if i < 0 {
		return inventory.SlotWeapon
	}
	return inventory.Slots[i]
}

// PickArchetype sorts the slot's archetypes by Score and draws uniformly
// from the contiguous band the rarity maps to.
//
// Postcondition: returns false only when the slot has no archetypes.
func (g *Generator) PickArchetype(slot inventory.Slot, rarity inventory.Rarity) (Base, bool) {
	bases := g.tables.Bases[slot]
	if len(bases) == 0 {
		return Base{}, false
	}
	sorted := make([]Base, len(bases))
	copy(sorted, bases)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score() < sorted[j].Score() })

	start, end := bandIndices(len(sorted)-1, g.rarity.Tier(rarity).Band)
	return sorted[dice.Between(g.src, start, end)], true
}

// bandIndices maps a [lo, hi] fraction band onto indices 0..maxIdx.
func bandIndices(maxIdx int, band [2]float64) (start, end int) {
	start = min(maxIdx, stats.Floor(float64(maxIdx)*band[0]))
	end = max(start, min(maxIdx, int(math.Ceil(float64(maxIdx)*band[1]-1e-9))))
	return start, end
}

// AffixCount draws how many affixes an item of rarity carries: the tier
// minimum plus one per extra slot that passes the tier's extra chance.
func (g *Generator) AffixCount(rarity inventory.Rarity) int {
	tier := g.rarity.Tier(rarity)
	n := tier.AffixMin
	for range tier.AffixMax - tier.AffixMin {
		if dice.Chance(g.src, tier.ExtraChance) {
			n++
		}
	}
	return n
}

// RollAffixes draws affixes without replacement from the weighted pool.
// Fractional affixes are scaled by the tier and rounded to three decimals;
// flat affixes also grow with level and are at least 1.
//
// Postcondition: no key appears twice; len(result) <= len(pool).
func (g *Generator) RollAffixes(rarity inventory.Rarity, level int) []inventory.Affix {
	count := g.AffixCount(rarity)
	if count <= 0 {
		return nil
	}
	scale := g.rarity.Tier(rarity).AffixScale
	pool := make([]AffixDef, len(g.tables.Affixes))
	copy(pool, g.tables.Affixes)

	out := make([]inventory.Affix, 0, count)
	for range count {
		if len(pool) == 0 {
			break
		}
		weights := make([]int, len(pool))
		for i, a := range pool {
			weights[i] = a.Weight
		}
		i := dice.Weighted(g.src, weights)
		if i < 0 {
			break
		}
		picked := pool[i]
		pool = append(pool[:i], pool[i+1:]...)

		rolled := dice.FloatBetween(g.src, picked.Min, picked.Max)
		var value float64
		if picked.Key.IsFraction() {
			value = math.Round(rolled*scale*1000) / 1000
		} else {
			value = math.Max(1, math.Round(rolled*scale*(1+float64(level)*affixLevelScale)))
		}
		out = append(out, inventory.Affix{Key: picked.Key, Label: picked.Label, Value: value})
	}
	return out
}

// applyAffixes rolls affixes onto it and raises its value accordingly.
func (g *Generator) applyAffixes(it *inventory.Item, level int) {
	it.Affixes = g.RollAffixes(it.Rarity, level)
	it.Value += len(it.Affixes) * affixValueBonus
}

// Generate rolls one piece of equipment.
//
// Postcondition: the item passes Validate; attack, defense >= 0; value >= 1.
func (g *Generator) Generate(d Drop) *inventory.Item {
	slot := g.RollSlot()
	rarity := g.RollRarity(d.Boss, d.Bias)
	base, ok := g.PickArchetype(slot, rarity)
	if !ok {
		base = Base{Name: string(slot), Value: 1}
	}
	tier := g.rarity.Tier(rarity)
	lootMult := d.LootMultiplier
	if lootMult <= 0 {
		lootMult = 1
	}
	scale := 1 + float64(d.Level)*levelScalePerLevel
	mult := tier.Power * scale * lootMult

	it := base.item(slot, rarity)
	it.Attack = max(0, stats.Floor(float64(base.Attack)*mult))
	it.Defense = max(0, stats.Floor(float64(base.Defense)*mult))
	it.Value = max(1, stats.Floor(float64(base.Value)*tier.Value*scale))

	if d.Boss && rarity == inventory.Mythic {
		source := d.Source
		if source == "" {
			source = defaultRelicSource
		}
		it.Name = mythicRelicPrefix + source
		it.Attack += mythicRelicStats
		it.Defense += mythicRelicStats
		it.Value += mythicRelicValue
	}
	g.applyAffixes(it, d.Level)
	return it
}
