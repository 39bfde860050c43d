package inventory

import "fmt"

// Bag is a run's unequipped belongings. Equipment and consumable stacks keep
// insertion order.
type Bag struct {
	Items       []*Item   `json:"items"`
	Consumables []*Stack  `json:"consumables"`
	Materials   Materials `json:"materials"`
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{Materials: make(Materials)}
}

// AddItem appends it to the bag.
//
// Precondition: it is non-nil.
func (b *Bag) AddItem(it *Item) {
	b.Items = append(b.Items, it)
}

// Item returns the equipment with the given id.
func (b *Bag) Item(id string) (*Item, bool) {
	for _, it := range b.Items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// RemoveItem takes the equipment with the given id out of the bag.
//
// Postcondition: on success the item is absent and the remaining order is kept.
func (b *Bag) RemoveItem(id string) (*Item, error) {
	for i, it := range b.Items {
		if it.ID == id {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			return it, nil
		}
	}
	return nil, fmt.Errorf("bag: item %q not found", id)
}

// AddConsumable merges qty units into the stack with the same definition and
// rarity, creating a new stack when none exists.
//
// Precondition: def is non-nil and qty > 0.
// Postcondition: returns the stack holding the added units.
func (b *Bag) AddConsumable(def *ConsumableDef, rarity Rarity, qty, value int) *Stack {
	for _, s := range b.Consumables {
		if s.DefID == def.ID && s.Rarity == rarity {
			s.Quantity += qty
			return s
		}
	}
	s := NewStack(def, rarity, qty, value)
	b.Consumables = append(b.Consumables, s)
	return s
}

// Consumable returns the stack with the given id.
func (b *Bag) Consumable(id string) (*Stack, bool) {
	for _, s := range b.Consumables {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// TakeConsumable removes one unit from the stack with the given id and drops
// the stack once empty.
//
// Postcondition: on success the returned copy has Quantity == 1.
func (b *Bag) TakeConsumable(id string) (Stack, error) {
	for i, s := range b.Consumables {
		if s.ID != id {
			continue
		}
		s.Quantity--
		if s.Quantity <= 0 {
			b.Consumables = append(b.Consumables[:i], b.Consumables[i+1:]...)
		}
		one := *s
		one.Quantity = 1
		return one, nil
	}
	return Stack{}, fmt.Errorf("bag: consumable %q not found", id)
}
