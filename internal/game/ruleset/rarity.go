package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
)

// DefaultExtraAffixChance is the chance of each affix slot above the minimum
// when a tier does not set one.
const DefaultExtraAffixChance = 0.5

// RarityTier holds everything loot generation needs to know about one tier.
type RarityTier struct {
	Rarity inventory.Rarity `yaml:"id"`
	Label  string           `yaml:"label"`
	// Power multiplies an archetype's attack and defense.
	Power float64 `yaml:"power"`
	// Value multiplies an archetype's gold value.
	Value      float64 `yaml:"value"`
	Weight     int     `yaml:"weight"`
	BossWeight int     `yaml:"boss_weight"`
	// Band is the [lo, hi] fraction of the power-sorted archetype list the
	// tier draws from.
	Band        [2]float64 `yaml:"band"`
	AffixMin    int        `yaml:"affix_min"`
	AffixMax    int        `yaml:"affix_max"`
	ExtraChance float64    `yaml:"extra_chance"`
	// AffixScale multiplies every rolled affix value.
	AffixScale float64 `yaml:"affix_scale"`
}

func (t *RarityTier) normalize() {
	if t.AffixScale == 0 {
		t.AffixScale = 1
	}
	if t.AffixMax > t.AffixMin && t.ExtraChance == 0 {
		t.ExtraChance = DefaultExtraAffixChance
	}
}

func (t *RarityTier) validate() error {
	var errs []error
	if t.Power <= 0 || t.Value <= 0 {
		errs = append(errs, errors.New("power and value must be > 0"))
	}
	if t.Weight < 0 || t.BossWeight < 0 {
		errs = append(errs, errors.New("weights must be >= 0"))
	}
	if t.Band[0] < 0 || t.Band[0] > t.Band[1] || t.Band[1] > 1 {
		errs = append(errs, fmt.Errorf("band %v must satisfy 0 <= lo <= hi <= 1", t.Band))
	}
	if t.AffixMin < 0 || t.AffixMax < t.AffixMin {
		errs = append(errs, errors.New("affix counts must satisfy 0 <= min <= max"))
	}
	if t.ExtraChance < 0 || t.ExtraChance > 1 {
		errs = append(errs, errors.New("extra_chance must be in [0,1]"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("rarity %q: %w", t.Rarity, errors.Join(errs...))
	}
	return nil
}

// RarityTable holds one tier per rung of the rarity ladder, in ladder order.
type RarityTable struct {
	tiers []RarityTier
}

// NewRarityTable orders and validates tiers.
//
// Postcondition: on success the table has exactly one tier per rarity.
func NewRarityTable(tiers []RarityTier) (*RarityTable, error) {
	ordered := make([]RarityTier, len(inventory.Rarities))
	seen := make([]bool, len(inventory.Rarities))
	for _, t := range tiers {
		rank := t.Rarity.Rank()
		if rank < 0 {
			return nil, fmt.Errorf("rarity table: unknown rarity %q", t.Rarity)
		}
		if seen[rank] {
			return nil, fmt.Errorf("rarity table: %q defined twice", t.Rarity)
		}
		t.normalize()
		if err := t.validate(); err != nil {
			return nil, err
		}
		ordered[rank] = t
		seen[rank] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rarity table: missing %q", inventory.Rarities[i])
		}
	}
	return &RarityTable{tiers: ordered}, nil
}

// Tier returns the tier for r. Unknown rarities fall back to the lowest tier.
func (t *RarityTable) Tier(r inventory.Rarity) RarityTier {
	rank := r.Rank()
	if rank < 0 {
		rank = 0
	}
	return t.tiers[rank]
}

// Tiers returns a copy of every tier in ladder order.
func (t *RarityTable) Tiers() []RarityTier {
	out := make([]RarityTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Weights returns the base drop weights in ladder order.
func (t *RarityTable) Weights(boss bool) []int {
	out := make([]int, len(t.tiers))
	for i, tier := range t.tiers {
		if boss {
			out[i] = tier.BossWeight
		} else {
			out[i] = tier.Weight
		}
	}
	return out
}

type rarityFile struct {
	Rarities []RarityTier `yaml:"rarities"`
}

// LoadRarityTable reads the rarity tiers from path.
func LoadRarityTable(path string) (*RarityTable, error) {
	var f rarityFile
	if err := readStrict(path, &f); err != nil {
		return nil, err
	}
	return NewRarityTable(f.Rarities)
}
