package domain

import (
	"math"
	"time"
)

// Decay parameters. Members get two full days of grace; past that the
// penalty grows exponentially with the total days-inactive count.
// Computed in Go rather than SQL: modernc.org/sqlite has no pow().
const (
	DecayGraceDays = 2

	decayBase  = 1.5
	decayScale = 100
)

// DaysInactive returns the number of whole days elapsed since last activity.
func DaysInactive(now, lastActive time.Time) int {
	d := now.Sub(lastActive)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// DecayLoss returns the score penalty for a member inactive the given number
// of whole days: floor(100 * 1.5^(days-1)).
func DecayLoss(daysInactive int) float64 {
	return math.Floor(decayScale * math.Pow(decayBase, float64(daysInactive-1)))
}

// ApplyDecayLoss subtracts loss from score, flooring at zero.
func ApplyDecayLoss(score, loss float64) float64 {
	if s := score - loss; s > 0 {
		return s
	}
	return 0
}
