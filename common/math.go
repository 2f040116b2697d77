package common

import "math"

const (
	BaseWidth  = 1280
	BaseHeight = 720
)

// Clamp limits v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite reports whether every value is neither NaN nor ±Inf.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func NonNegative(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	return v
}
