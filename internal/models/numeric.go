package models

import "math"

// ClampScore limits v to [0,100]. NaN maps to 0.
func ClampScore(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Clamp limits v to [lo,hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round rounds v half away from zero to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
