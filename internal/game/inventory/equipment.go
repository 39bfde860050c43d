package inventory

import "github.com/cory-johannsen/veilrun/internal/game/stats"

// Equipment holds at most one item per slot.
type Equipment struct {
	Slots map[Slot]*Item `json:"slots"`
}

// NewEquipment returns an Equipment with every slot empty.
//
// Postcondition: Slots is a non-nil, empty map.
func NewEquipment() *Equipment {
	return &Equipment{Slots: make(map[Slot]*Item)}
}

// Get returns the item in slot, or nil.
func (e *Equipment) Get(slot Slot) *Item {
	return e.Slots[slot]
}

// Equip places it in its slot and returns the item it displaced, if any.
//
// Precondition: it must be non-nil with a valid slot.
// Postcondition: Get(it.Slot) == it.
func (e *Equipment) Equip(it *Item) *Item {
	if e.Slots == nil {
		e.Slots = make(map[Slot]*Item)
	}
	prev := e.Slots[it.Slot]
	e.Slots[it.Slot] = it
	return prev
}

// Unequip empties slot and returns the item that was there, or nil.
func (e *Equipment) Unequip(slot Slot) *Item {
	it := e.Slots[slot]
	delete(e.Slots, slot)
	return it
}

// Items returns the equipped items in slot order.
func (e *Equipment) Items() []*Item {
	var out []*Item
	for _, s := range Slots {
		if it := e.Slots[s]; it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Gear returns the resolver inputs for every equipped item.
func (e *Equipment) Gear() []stats.Gear {
	items := e.Items()
	out := make([]stats.Gear, 0, len(items))
	for _, it := range items {
		out = append(out, it.Gear())
	}
	return out
}
