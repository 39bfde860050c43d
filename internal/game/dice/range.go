package dice

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive integer interval used by content tables for
// quantities and rewards, written in YAML as "2-4" or as a bare integer.
type Range struct {
	Min int
	Max int
}

// ParseRange parses "N" or "A-B".
//
// Postcondition: on success 0 <= Min <= Max.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("dice: empty range")
	}
	lo, hi, found := strings.Cut(s, "-")
	minV, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Range{}, fmt.Errorf("dice: invalid range %q: %w", s, err)
	}
	maxV := minV
	if found {
		maxV, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return Range{}, fmt.Errorf("dice: invalid range %q: %w", s, err)
		}
	}
	if minV < 0 || maxV < minV {
		return Range{}, fmt.Errorf("dice: range %q must satisfy 0 <= min <= max", s)
	}
	return Range{Min: minV, Max: maxV}, nil
}

// UnmarshalYAML accepts either an integer or an "A-B" string.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseRange(node.Value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML writes the compact form.
func (r Range) MarshalYAML() (any, error) {
	return r.String(), nil
}

// String returns "N" for a degenerate range and "A-B" otherwise.
func (r Range) String() string {
	if r.Min == r.Max {
		return strconv.Itoa(r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Roll draws a uniform value from the range.
//
// Postcondition: Min <= result <= Max.
func (r Range) Roll(src Source) int {
	return Between(src, r.Min, r.Max)
}
