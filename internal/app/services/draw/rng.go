package draw

import "math/rand"

// Decide runs a single Bernoulli trial against the configured win rate.
// Values at or below 0 never win and values at or above 100 always win.
// Each trial is independent: outcomes never depend on prior draws.
func Decide(winRatePercent float64) bool {
	return rand.Float64()*100 < winRatePercent
}
