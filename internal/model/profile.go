package model

// HouseholdType shapes how large an emergency buffer should be.
type HouseholdType string

// Household types. The zero value means the user never said.
const (
	HouseholdSingle       HouseholdType = "single"
	HouseholdDualIncome   HouseholdType = "dual_income"
	HouseholdSingleIncome HouseholdType = "single_income"
	HouseholdSelfEmployed HouseholdType = "self_employed"
	HouseholdRetired      HouseholdType = "retired"
)

// IsValid reports whether h is a known household type or empty.
func (h HouseholdType) IsValid() bool {
	switch h {
	case "", HouseholdSingle, HouseholdDualIncome, HouseholdSingleIncome,
		HouseholdSelfEmployed, HouseholdRetired:
		return true
	}
	return false
}

// UserProfile holds what the user told us about themselves.
type UserProfile struct {
	MonthlyIncome   *float64
	UserID          string
	Name            string
	HouseholdType   HouseholdType
	NoDebtConfirmed bool
}
