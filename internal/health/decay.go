package health

import "math"

// Penalty points for a late payment that happened this month, per tier.
var tierPenalty = map[SeverityTier]float64{
	TierLate1To30:   20,
	TierLate31To60:  35,
	TierLate61To90:  50,
	TierLate91To120: 70,
	TierLate120Plus: 90,
	TierMissed:      110,
}

// Worse tiers fade more slowly.
var tierHalfLifeMonths = map[SeverityTier]float64{
	TierLate1To30:   3,
	TierLate31To60:  6,
	TierLate61To90:  9,
	TierLate91To120: 12,
	TierLate120Plus: 18,
	TierMissed:      24,
}

// Decay returns the fraction of a tier's penalty still applied after
// monthsAgo months. It halves every half-life and drops to zero once the
// event leaves the window. Non-increasing in monthsAgo.
func Decay(tier SeverityTier, monthsAgo, windowMonths int) float64 {
	halfLife, ok := tierHalfLifeMonths[tier]
	if !ok {
		return 0
	}
	if monthsAgo < 0 {
		monthsAgo = 0
	}
	if monthsAgo >= windowMonths {
		return 0
	}
	return math.Pow(0.5, float64(monthsAgo)/halfLife)
}

// LatePenalty is the decayed penalty for one event.
func LatePenalty(e LatePaymentEvent, p Policy) float64 {
	return tierPenalty[e.Tier] * Decay(e.Tier, e.MonthsAgo, p.LatePaymentWindowMonths)
}
