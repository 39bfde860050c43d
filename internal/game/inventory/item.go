package inventory

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Slot is an equipment slot.
type Slot string

const (
	SlotWeapon  Slot = "weapon"
	SlotArmor   Slot = "armor"
	SlotTrinket Slot = "trinket"
)

// Slots lists every equipment slot in display order.
var Slots = []Slot{SlotWeapon, SlotArmor, SlotTrinket}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	switch s {
	case SlotWeapon, SlotArmor, SlotTrinket:
		return true
	}
	return false
}

// WeaponType distinguishes melee weapons from ranged ones.
type WeaponType string

const (
	WeaponMelee WeaponType = "melee"
	WeaponBow   WeaponType = "bow"
	WeaponStaff WeaponType = "staff"
)

// Ranged reports whether w attacks from a distance.
func (w WeaponType) Ranged() bool { return w != "" && w != WeaponMelee }

// DefaultRange returns the range window a weapon of type w uses when its
// definition omits one.
func (w WeaponType) DefaultRange() (lo, hi int) {
	if w.Ranged() {
		return 2, 3
	}
	return 1, 1
}

// Affix is one rolled bonus on a generated item.
type Affix struct {
	Key   stats.Key `json:"key"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

// String renders the affix the way the item tooltip shows it.
func (a Affix) String() string {
	if a.Key.IsFraction() {
		return fmt.Sprintf("+%d%% %s", int(math.Round(a.Value*100)), a.Label)
	}
	return fmt.Sprintf("+%g %s", a.Value, a.Label)
}

// Item is a concrete piece of equipment owned by a run.
type Item struct {
	ID         string     `json:"id"`
	Slot       Slot       `json:"slot"`
	Name       string     `json:"name"`
	Rarity     Rarity     `json:"rarity"`
	Attack     int        `json:"attack"`
	Defense    int        `json:"defense"`
	Value      int        `json:"value"`
	WeaponType WeaponType `json:"weaponType,omitempty"`
	RangeMin   int        `json:"rangeMin,omitempty"`
	RangeMax   int        `json:"rangeMax,omitempty"`
	Affixes    []Affix    `json:"affixes,omitempty"`
}

// fallbackValue prices items that were never given a value.
const fallbackValue = 12

// sellRatio is the share of an item's value a merchant pays.
const sellRatio = 0.55

// NewItemID returns a fresh unique item identifier.
func NewItemID() string { return uuid.NewString() }

// Bonuses returns the sum of the item's affixes.
func (it *Item) Bonuses() stats.Bonuses {
	out := make(stats.Bonuses, len(it.Affixes))
	for _, a := range it.Affixes {
		out[a.Key] += a.Value
	}
	return out
}

// Gear converts the item into the resolver's view of it.
func (it *Item) Gear() stats.Gear {
	g := stats.Gear{
		Attack:  it.Attack,
		Defense: it.Defense,
		Bonuses: it.Bonuses(),
	}
	if it.Slot == SlotWeapon {
		g.Weapon = true
		g.RangeMin, g.RangeMax = it.Range()
	}
	return g
}

// Range returns the weapon's range window, falling back to the weapon
// type's default when unset.
func (it *Item) Range() (lo, hi int) {
	if it.RangeMin > 0 && it.RangeMax >= it.RangeMin {
		return it.RangeMin, it.RangeMax
	}
	return it.WeaponType.DefaultRange()
}

// SellPrice returns the gold a merchant pays for the item.
//
// Postcondition: result >= 1.
func (it *Item) SellPrice() int {
	v := it.Value
	if v <= 0 {
		v = fallbackValue
	}
	return max(1, stats.Floor(float64(v)*sellRatio))
}

// Validate checks the item's invariants.
func (it *Item) Validate() error {
	switch {
	case it.ID == "":
		return fmt.Errorf("inventory: item has no id")
	case !it.Slot.Valid():
		return fmt.Errorf("inventory: item %q has unknown slot %q", it.ID, it.Slot)
	case !it.Rarity.Valid():
		return fmt.Errorf("inventory: item %q has unknown rarity %q", it.ID, it.Rarity)
	case it.Attack < 0 || it.Defense < 0:
		return fmt.Errorf("inventory: item %q has negative stats", it.ID)
	}
	return nil
}
