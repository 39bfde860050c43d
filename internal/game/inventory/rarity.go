// Package inventory models what a player carries: generated equipment,
// consumable stacks, crafting materials, and the three equipment slots.
package inventory

import "fmt"

// Rarity is a quality tier. The tiers form a fixed ladder.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
	Mythic    Rarity = "mythic"
)

// Rarities lists the ladder from lowest to highest.
var Rarities = []Rarity{Common, Uncommon, Rare, Epic, Legendary, Mythic}

// Rank returns the position of r on the ladder, or -1 for an unknown tier.
func (r Rarity) Rank() int {
	for i, v := range Rarities {
		if v == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is on the ladder.
func (r Rarity) Valid() bool { return r.Rank() >= 0 }

// AtLeast reports whether r ranks at or above other.
func (r Rarity) AtLeast(other Rarity) bool { return r.Rank() >= other.Rank() }

// ParseRarity returns the tier named s.
func ParseRarity(s string) (Rarity, error) {
	r := Rarity(s)
	if !r.Valid() {
		return "", fmt.Errorf("inventory: unknown rarity %q", s)
	}
	return r, nil
}
