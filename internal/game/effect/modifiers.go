package effect

import "math"

// minStatMultiplier floors the combined buff/debuff multiplier.
const minStatMultiplier = 0.2

// StatMultiplier returns max(0.2, 1 + buffs - debuffs) for attr.
func StatMultiplier(l *Ledger, attr Attribute) float64 {
	return math.Max(minStatMultiplier, 1+l.AmountOf(KindBuff, attr)-l.AmountOf(KindDebuff, attr))
}

// NetBonus returns buffs minus debuffs on attr.
func NetBonus(l *Ledger, attr Attribute) float64 {
	return l.AmountOf(KindBuff, attr) - l.AmountOf(KindDebuff, attr)
}

// APPenalty returns the whole number of action points removed at turn start.
//
// Postcondition: Returns >= 0.
func APPenalty(l *Ledger) int {
	return max(0, int(math.Floor(l.AmountOf(KindDebuff, AttrAPPenalty))))
}
