package domain

import "math"

// Weighting factors for the composite priority score
const (
	platformFactor = 3
	urgencyFactor  = 2
	valueFactor    = 1

	// valueUnit converts an order value (VND) into score points
	valueUnit = 1_000_000
	// valueCap limits how much order value can contribute
	valueCap = 3
)

// urgencyScore buckets remaining time into score points. +Inf (unknown
// policy) lands in the lowest bucket.
func urgencyScore(timeRemainingHours float64) float64 {
	switch {
	case timeRemainingHours < 1:
		return 10
	case timeRemainingHours < 4:
		return 5
	default:
		return 1
	}
}

// PriorityScore blends platform importance, time urgency and order
// value into a single ranking number; higher means more urgent.
// Recomputed on every refresh tick, never cached across ticks.
func PriorityScore(platform Platform, orderValue, timeRemainingHours float64) float64 {
	return platform.Weight()*platformFactor +
		urgencyScore(timeRemainingHours)*urgencyFactor +
		math.Min(orderValue/valueUnit, valueCap)*valueFactor
}
