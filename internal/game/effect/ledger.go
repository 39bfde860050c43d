package effect

import (
	"encoding/json"
	"math"
)

// Ledger tracks the timed effects on one combatant in insertion order.
// Insertion order decides which shield absorbs damage first.
// It is not safe for concurrent use; the caller must serialise access.
type Ledger struct {
	effects []Effect
}

// NewLedger creates a Ledger holding the given effects. Invalid effects are
// dropped.
func NewLedger(effects ...Effect) *Ledger {
	l := &Ledger{}
	for _, e := range effects {
		_ = l.Add(e)
	}
	return l
}

// Add appends e to the ledger.
//
// Postcondition: on success e is the last entry; on error the ledger is unchanged.
func (l *Ledger) Add(e Effect) error {
	if err := e.Validate(); err != nil {
		return err
	}
	l.effects = append(l.effects, e)
	return nil
}

// AmountOf sums the magnitudes of active effects of kind. For buffs and
// debuffs only entries on attr are counted; for other kinds attr is ignored.
func (l *Ledger) AmountOf(kind Kind, attr Attribute) float64 {
	total := 0.0
	for _, e := range l.effects {
		if e.Kind != kind {
			continue
		}
		if (kind == KindBuff || kind == KindDebuff) && e.Attribute != attr {
			continue
		}
		total += e.Magnitude
	}
	return total
}

// DotDamage returns the total damage the active dots deal this turn.
func (l *Ledger) DotDamage() int {
	return int(math.Floor(l.AmountOf(KindDot, AttrNone)))
}

// DecayTurn decrements every effect's remaining turns by one and prunes
// effects that expired and shields that were fully depleted.
//
// Postcondition: every remaining effect has Turns >= 1; relative order is
// preserved; the pruned effects are returned in their original order.
func (l *Ledger) DecayTurn() []Effect {
	kept := l.effects[:0]
	var removed []Effect
	for _, e := range l.effects {
		e.Turns--
		if e.Turns <= 0 || (e.Kind == KindShield && e.Magnitude <= 0) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	l.effects = kept
	return removed
}

// ConsumeGuaranteedDodge removes the oldest guaranteed dodge, if any.
//
// Postcondition: returns true iff one guaranteed dodge was present and has
// been removed.
func (l *Ledger) ConsumeGuaranteedDodge() bool {
	for i, e := range l.effects {
		if e.Kind == KindDodge && e.Magnitude > 0 {
			l.effects = append(l.effects[:i], l.effects[i+1:]...)
			return true
		}
	}
	return false
}

// AbsorbShields lets shields soak damage oldest first.
//
// Postcondition: returns the damage left after absorption, in [0, damage];
// depleted shields stay in the ledger at magnitude 0 until the next decay.
func (l *Ledger) AbsorbShields(damage int) int {
	for i := range l.effects {
		if damage <= 0 {
			break
		}
		e := &l.effects[i]
		if e.Kind != KindShield || e.Magnitude <= 0 {
			continue
		}
		blocked := min(int(e.Magnitude), damage)
		e.Magnitude -= float64(blocked)
		damage -= blocked
	}
	return max(damage, 0)
}

// Cleanse removes every effect whose kind is listed and returns how many
// were removed.
func (l *Ledger) Cleanse(kinds ...Kind) int {
	drop := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		drop[k] = true
	}
	kept := l.effects[:0]
	n := 0
	for _, e := range l.effects {
		if drop[e.Kind] {
			n++
			continue
		}
		kept = append(kept, e)
	}
	l.effects = kept
	return n
}

// Len returns the number of active effects.
func (l *Ledger) Len() int { return len(l.effects) }

// All returns a copy of the active effects in insertion order.
func (l *Ledger) All() []Effect {
	out := make([]Effect, len(l.effects))
	copy(out, l.effects)
	return out
}

// MarshalJSON encodes the active effects in insertion order.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.All())
}

// UnmarshalJSON replaces the ledger's contents. Invalid entries are rejected.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var effects []Effect
	if err := json.Unmarshal(data, &effects); err != nil {
		return err
	}
	l.effects = nil
	for _, e := range effects {
		if err := l.Add(e); err != nil {
			return err
		}
	}
	return nil
}
