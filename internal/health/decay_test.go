package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecay_MonotonicInMonthsAgo(t *testing.T) {
	window := DefaultPolicy().LatePaymentWindowMonths
	for tier := TierLate1To30; tier <= TierMissed; tier++ {
		t.Run(tier.String(), func(t *testing.T) {
			prev := Decay(tier, 0, window)
			assert.InDelta(t, 1.0, prev, 0.0001)
			for months := 1; months <= window+6; months++ {
				cur := Decay(tier, months, window)
				assert.LessOrEqual(t, cur, prev, "decay rose at %d months", months)
				prev = cur
			}
			assert.Zero(t, Decay(tier, window, window))
		})
	}
}

func TestDecay_HalfLife(t *testing.T) {
	assert.InDelta(t, 0.5, Decay(TierLate1To30, 3, 24), 0.0001)
	assert.InDelta(t, 0.5, Decay(TierMissed, 24, 36), 0.0001)
	assert.InDelta(t, 1.0, Decay(TierLate31To60, -2, 24), 0.0001)
	assert.Zero(t, Decay(SeverityTier(42), 0, 24))
}

func TestLatePenalty_SeverityOrdering(t *testing.T) {
	p := DefaultPolicy()
	for months := 0; months < p.LatePaymentWindowMonths; months++ {
		prev := 0.0
		for tier := TierLate1To30; tier <= TierMissed; tier++ {
			cur := LatePenalty(LatePaymentEvent{Tier: tier, MonthsAgo: months}, p)
			assert.GreaterOrEqual(t, cur, prev, "tier %s at %d months", tier, months)
			prev = cur
		}
	}
}

func TestLatePenalty_RecentWeighsMore(t *testing.T) {
	p := DefaultPolicy()
	recent := LatePenalty(LatePaymentEvent{Tier: TierLate31To60, MonthsAgo: 2}, p)
	old := LatePenalty(LatePaymentEvent{Tier: TierLate31To60, MonthsAgo: 14}, p)
	assert.Greater(t, recent, old)
}
