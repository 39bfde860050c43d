package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/progression"
	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
)

// Starting kit.
const (
	StartingGold          = 75
	StartingPassivePoints = 1
	starterPotions        = 2
	starterPotionValue    = 24
	starterElixirs        = 1
	starterElixirValue    = 22
	potionID              = "potion"
	manaElixirID          = "mana_elixir"
)

// Build constructs a level-1 player of class: the starter weapon equipped,
// two potions and a mana elixir in the bag, full HP and mana.
// Starter consumables missing from items are skipped.
//
// Precondition: name must be non-empty; class and items must be non-nil.
// Postcondition: Returns a Player ready for a new run, or a non-nil error.
func Build(name string, class *ruleset.Class, items *inventory.Registry) (*Player, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}
	if items == nil {
		return nil, errors.New("item registry must not be nil")
	}

	p := &Player{
		Name:      name,
		Class:     class.ID,
		Progress:  progression.NewTrack(StartingPassivePoints),
		Gold:      StartingGold,
		Bag:       inventory.NewBag(),
		Equipment: inventory.NewEquipment(),
	}
	p.Equipment.Equip(class.Starter.Item())
	if def, ok := items.Consumable(potionID); ok {
		p.Bag.AddConsumable(def, inventory.Common, starterPotions, starterPotionValue)
	}
	if def, ok := items.Consumable(manaElixirID); ok {
		p.Bag.AddConsumable(def, inventory.Common, starterElixirs, starterElixirValue)
	}
	p.Restore(class)
	return p, nil
}

// Equip moves the bag item id into its slot. A displaced item returns to the
// bag and vitals are re-clamped to the new maxima.
//
// Postcondition: on success the item is equipped and absent from the bag.
func (p *Player) Equip(class *ruleset.Class, id string) (*inventory.Item, error) {
	it, err := p.Bag.RemoveItem(id)
	if err != nil {
		return nil, err
	}
	if prev := p.Equipment.Equip(it); prev != nil {
		p.Bag.AddItem(prev)
	}
	p.ClampVitals(class)
	return it, nil
}

// Unequip moves the item in slot back to the bag.
func (p *Player) Unequip(class *ruleset.Class, slot inventory.Slot) (*inventory.Item, error) {
	it := p.Equipment.Unequip(slot)
	if it == nil {
		return nil, fmt.Errorf("nothing equipped in %s", slot)
	}
	p.Bag.AddItem(it)
	p.ClampVitals(class)
	return it, nil
}
