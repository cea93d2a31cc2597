package domain

import (
	"math"
	"time"
)

// warningFraction of the confirm deadline after which an order moves
// from safe to warning
const warningFraction = 0.8

// EvaluateSLA classifies an order against its confirm deadline at the
// given instant. Pure: identical inputs always yield identical results.
//
// Boundary convention (strict greater-than, matching the rest of the
// engine): an order exactly at 80% of its deadline is still safe, and
// an order exactly at its deadline is still warning.
//
// When the policy matrix has no entry for the order's (platform,
// carrier) pair, the order is classified unknown with +Inf remaining
// time, so it never blocks and sorts after every finite deadline.
func EvaluateSLA(order *Order, matrix *PolicyMatrix, now time.Time) (SLAStatus, float64) {
	entry, ok := matrix.Lookup(order.Platform, order.SuggestedCarrier)
	if !ok {
		return SLAStatus{Level: SLALevelUnknown, Urgency: UrgencyUnknown}, math.Inf(1)
	}

	deadline := entry.ConfirmDeadlineHours
	hoursSinceOrder := now.Sub(order.OrderTime).Hours()

	switch {
	case hoursSinceOrder > deadline:
		return SLAStatus{Level: SLALevelExpired, Urgency: UrgencyCritical}, 0
	case hoursSinceOrder > warningFraction*deadline:
		return SLAStatus{Level: SLALevelWarning, Urgency: UrgencyMedium}, remaining(order.OrderTime, deadline, now)
	default:
		return SLAStatus{Level: SLALevelSafe, Urgency: UrgencyLow}, remaining(order.OrderTime, deadline, now)
	}
}

// remaining computes hours until the confirm deadline, clamped at zero
func remaining(orderTime time.Time, deadlineHours float64, now time.Time) float64 {
	deadlineInstant := orderTime.Add(time.Duration(deadlineHours * float64(time.Hour)))
	left := deadlineInstant.Sub(now).Hours()
	if left < 0 {
		return 0
	}
	return left
}

// DeriveOrderState recomputes all derived order fields as one unit.
// SLA status, remaining time and priority must never be updated
// independently; every recomputation path goes through here.
func DeriveOrderState(order *Order, matrix *PolicyMatrix, now time.Time) DerivedState {
	status, timeRemaining := EvaluateSLA(order, matrix, now)
	return DerivedState{
		SLA:                status,
		TimeRemainingHours: timeRemaining,
		Priority:           PriorityScore(order.Platform, order.OrderValue, timeRemaining),
	}
}
