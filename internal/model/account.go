package model

import "time"

// AccountType is the kind of bank account.
type AccountType string

// Account types. Only checking and savings count as liquid.
const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	AccountOther      AccountType = "other"
)

// IsLiquid reports whether balances of this type count toward liquid savings.
func (t AccountType) IsLiquid() bool {
	return t == AccountChecking || t == AccountSavings
}

// Account is a bank account with its latest known balance.
type Account struct {
	UpdatedAt   time.Time
	ID          string
	UserID      string
	Name        string
	Institution string
	Type        AccountType
	Balance     float64
}
