package health

import (
	"errors"
	"fmt"

	"github.com/Veraticus/spice-health/internal/model"
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid scoring policy")

// Policy holds the tunable constants of the score. The zero value is not
// usable; start from DefaultPolicy.
type Policy struct {
	// Budgets above AntiGamingThreshold times actual spend cap budget
	// discipline at AntiGamingCap of its maximum. Above the severe
	// threshold the severe cap applies instead.
	AntiGamingThreshold       float64
	AntiGamingCap             float64
	AntiGamingSevereThreshold float64
	AntiGamingSevereCap       float64

	// Late payments older than this many months no longer count.
	LatePaymentWindowMonths int

	// Floors used when income or expenses are unknown.
	IncomeFloor  float64
	ExpenseFloor float64

	// Emergency buffer target when the household type is unknown.
	DefaultBufferMonths float64

	// Sub-factors below this percentage get a tip.
	TipThresholdPct float64
}

// DefaultPolicy returns the shipped scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		AntiGamingThreshold:       1.5,
		AntiGamingCap:             0.70,
		AntiGamingSevereThreshold: 2.5,
		AntiGamingSevereCap:       0.50,
		LatePaymentWindowMonths:   24,
		IncomeFloor:               2500,
		ExpenseFloor:              2000,
		DefaultBufferMonths:       6,
		TipThresholdPct:           70,
	}
}

// Validate checks that the policy can produce bounded scores.
func (p Policy) Validate() error {
	switch {
	case p.AntiGamingThreshold <= 1:
		return fmt.Errorf("%w: anti-gaming threshold must be above 1, got %v", ErrInvalidPolicy, p.AntiGamingThreshold)
	case p.AntiGamingSevereThreshold < p.AntiGamingThreshold:
		return fmt.Errorf("%w: severe anti-gaming threshold %v is below threshold %v", ErrInvalidPolicy, p.AntiGamingSevereThreshold, p.AntiGamingThreshold)
	case p.AntiGamingCap <= 0 || p.AntiGamingCap > 1:
		return fmt.Errorf("%w: anti-gaming cap must be in (0, 1], got %v", ErrInvalidPolicy, p.AntiGamingCap)
	case p.AntiGamingSevereCap <= 0 || p.AntiGamingSevereCap > p.AntiGamingCap:
		return fmt.Errorf("%w: severe anti-gaming cap must be in (0, %v], got %v", ErrInvalidPolicy, p.AntiGamingCap, p.AntiGamingSevereCap)
	case p.LatePaymentWindowMonths <= 0:
		return fmt.Errorf("%w: late payment window must be positive", ErrInvalidPolicy)
	case p.IncomeFloor <= 0:
		return fmt.Errorf("%w: income floor must be positive", ErrInvalidPolicy)
	case p.ExpenseFloor <= 0:
		return fmt.Errorf("%w: expense floor must be positive", ErrInvalidPolicy)
	case p.DefaultBufferMonths <= 0:
		return fmt.Errorf("%w: default buffer months must be positive", ErrInvalidPolicy)
	case p.TipThresholdPct < 0 || p.TipThresholdPct > 100:
		return fmt.Errorf("%w: tip threshold must be a percentage", ErrInvalidPolicy)
	}
	return nil
}

// bufferTargetMonths is how many months of expenses each household should keep.
var bufferTargetMonths = map[model.HouseholdType]float64{
	model.HouseholdDualIncome:   3,
	model.HouseholdSingle:       5,
	model.HouseholdSingleIncome: 6,
	model.HouseholdRetired:      6,
	model.HouseholdSelfEmployed: 9,
}

// BufferTargetMonths returns the emergency buffer target for a household.
func (p Policy) BufferTargetMonths(h model.HouseholdType) float64 {
	if months, ok := bufferTargetMonths[h]; ok {
		return months
	}
	return p.DefaultBufferMonths
}
