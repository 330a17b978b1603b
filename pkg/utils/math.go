package utils

import "math"

// Percent converts a ratio in [0,1] to a percentage rounded to two decimals.
// Values outside [0,1] are clamped.
func Percent(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio <= 0 {
		return 0
	}
	if ratio >= 1 {
		return 100
	}
	return math.Round(ratio*10000) / 100
}
