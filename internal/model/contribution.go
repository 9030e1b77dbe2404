package model

import "time"

// ContributionKind is the destination of a wealth-building contribution.
type ContributionKind string

// Contribution kinds. Extra debt principal is derived from debt payments and
// has no kind of its own.
const (
	ContributionCashSavings ContributionKind = "cash_savings"
	Contribution401k        ContributionKind = "retirement_401k"
	ContributionIRA         ContributionKind = "ira"
	ContributionInvestments ContributionKind = "investments"
	ContributionHSA         ContributionKind = "hsa"
)

// IsValid reports whether k is a known contribution kind.
func (k ContributionKind) IsValid() bool {
	switch k {
	case ContributionCashSavings, Contribution401k, ContributionIRA,
		ContributionInvestments, ContributionHSA:
		return true
	}
	return false
}

// Contribution is money moved toward savings, retirement or investments.
type Contribution struct {
	Date   time.Time
	ID     string
	UserID string
	Kind   ContributionKind
	Amount float64
}
