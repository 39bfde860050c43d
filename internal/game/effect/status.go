package effect

import (
	"fmt"
	"math"
)

// Status is a secondary ailment a skill may attach to its primary hit.
type Status string

const (
	StatusDisorient Status = "disorient"
	StatusTopple    Status = "topple"
	StatusWeaken    Status = "weaken"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDisorient, StatusTopple, StatusWeaken:
		return true
	}
	return false
}

// Label returns the log label of s.
func (s Status) Label() string {
	switch s {
	case StatusDisorient:
		return "disoriented"
	case StatusTopple:
		return "toppled"
	case StatusWeaken:
		return "weakened"
	}
	return "afflicted"
}

// Debuff converts a landed status into the debuff placed on the target.
// Disorient and topple cost at least one action point next turn; weaken
// lowers defense by value.
func (s Status) Debuff(value float64, turns int) (Effect, error) {
	switch s {
	case StatusDisorient, StatusTopple:
		return Debuff(AttrAPPenalty, math.Max(1, math.Floor(value)), turns), nil
	case StatusWeaken:
		return Debuff(AttrDefensePercent, value, turns), nil
	}
	return Effect{}, fmt.Errorf("effect: unknown status %q", s)
}
