package model

import "time"

// DebtType is the stored category of a debt instrument.
type DebtType string

// Debt types as stored by the application.
const (
	DebtMortgage           DebtType = "mortgage"
	DebtHELOC              DebtType = "heloc"
	DebtStudentLoan        DebtType = "student_loan"
	DebtAutoLoan           DebtType = "auto_loan"
	DebtPersonalLoan       DebtType = "personal_loan"
	DebtMedical            DebtType = "medical"
	DebtCreditCard         DebtType = "credit_card"
	DebtCreditCardPaidFull DebtType = "credit_card_paid_in_full"
	DebtBNPL               DebtType = "bnpl"
	DebtPayday             DebtType = "payday"
	DebtBusiness           DebtType = "business"
	DebtOther              DebtType = "other"
)

// DebtTypes lists every known debt type in display order.
var DebtTypes = []DebtType{
	DebtMortgage, DebtHELOC, DebtStudentLoan, DebtAutoLoan, DebtPersonalLoan,
	DebtMedical, DebtCreditCard, DebtCreditCardPaidFull, DebtBNPL, DebtPayday,
	DebtBusiness, DebtOther,
}

// IsValid reports whether t is a known debt type.
func (t DebtType) IsValid() bool {
	for _, known := range DebtTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Debt is a stored debt record. MonthlyPayment and MinimumPayment are nil when
// the user never entered them.
type Debt struct {
	CreatedAt             time.Time
	MonthlyPayment        *float64
	MinimumPayment        *float64
	OriginationTermMonths *int
	ID                    string
	UserID                string
	Name                  string
	Type                  DebtType
	CurrentBalance        float64
	APR                   float64
	InCollections         bool
}

// DebtPayment records money paid toward a debt.
type DebtPayment struct {
	PaidAt time.Time
	ID     string
	DebtID string
	UserID string
	Amount float64
}
