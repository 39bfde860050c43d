package dice

import "math"

// floatResolution is the number of buckets used to turn Intn into a
// probability draw.
const floatResolution = 1 << 30

// Between returns a uniform int in the closed interval [lo, hi].
// When hi < lo the bounds are swapped.
//
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Float returns a uniform float64 in [0, 1).
func Float(src Source) float64 {
	return float64(src.Intn(floatResolution)) / floatResolution
}

// FloatBetween returns a uniform float64 in [lo, hi).
func FloatBetween(src Source, lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + Float(src)*(hi-lo)
}

// Chance reports whether an event with probability p happened.
// p <= 0 never succeeds and consumes no draw; p >= 1 always succeeds and
// consumes no draw.
func Chance(src Source, p float64) bool {
	if p <= 0 || math.IsNaN(p) {
		return false
	}
	if p >= 1 {
		return true
	}
	return Float(src) < p
}

// Weighted draws an index from weights with probability proportional to each
// weight. Non-positive weights are never drawn.
//
// Postcondition: returns -1 iff the sum of positive weights is zero.
func Weighted(src Source, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	roll := src.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}
