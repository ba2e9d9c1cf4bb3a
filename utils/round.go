package utils

import "math"

// Round2 rounds to 2 decimal places, the precision every price and PnL
// figure is reported at. Stop-loss comparisons go through this too so a
// zero distance never fires on float noise.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
