package health

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-health/internal/model"
)

// defaultTermMonths estimates a payoff term when the origination term is unknown.
var defaultTermMonths = map[model.DebtType]int{
	model.DebtMortgage:           360,
	model.DebtHELOC:              240,
	model.DebtStudentLoan:        120,
	model.DebtAutoLoan:           72,
	model.DebtPersonalLoan:       48,
	model.DebtMedical:            60,
	model.DebtCreditCard:         36,
	model.DebtCreditCardPaidFull: 36,
	model.DebtBNPL:               12,
	model.DebtPayday:             3,
	model.DebtBusiness:           60,
	model.DebtOther:              60,
}

const fallbackTermMonths = 60

// velocityWeights scale how much reducing a balance of each type counts.
// A card paid in full every month carries no revolving risk.
var velocityWeights = map[model.DebtType]float64{
	model.DebtPayday:             2.0,
	model.DebtCreditCard:         1.5,
	model.DebtBNPL:               1.3,
	model.DebtPersonalLoan:       1.2,
	model.DebtMedical:            1.0,
	model.DebtBusiness:           1.0,
	model.DebtOther:              1.0,
	model.DebtAutoLoan:           0.9,
	model.DebtStudentLoan:        0.8,
	model.DebtHELOC:              0.7,
	model.DebtMortgage:           0.5,
	model.DebtCreditCardPaidFull: 0.0,
}

// VelocityWeight returns the debt-velocity risk weight for a scoring type.
func VelocityWeight(t model.DebtType) float64 {
	if w, ok := velocityWeights[t]; ok {
		return w
	}
	return 1.0
}

// TermMonths returns the stored origination term or the type default.
func TermMonths(d model.Debt) int {
	if d.OriginationTermMonths != nil && *d.OriginationTermMonths > 0 {
		return *d.OriginationTermMonths
	}
	if term, ok := defaultTermMonths[d.Type]; ok {
		return term
	}
	return fallbackTermMonths
}

// scoringType returns the type a debt is scored as. A "paid in full" card that
// still carries a balance is revolving debt.
func scoringType(d model.Debt) (model.DebtType, bool) {
	switch {
	case d.Type == model.DebtCreditCardPaidFull && d.CurrentBalance > 0:
		return model.DebtCreditCard, true
	case !d.Type.IsValid():
		return model.DebtOther, false
	}
	return d.Type, false
}

// resolvePayment walks the payment fallback chain. Non-positive stored
// amounts count as missing.
func resolvePayment(d model.Debt, balance float64) (float64, PaymentSource) {
	payment, source := resolve([]fallback{
		{
			name:    string(PaymentActual),
			applies: func() bool { return d.MonthlyPayment != nil && nonNegative(*d.MonthlyPayment) > 0 },
			value:   func() float64 { return *d.MonthlyPayment },
		},
		{
			name:    string(PaymentMinimum),
			applies: func() bool { return d.MinimumPayment != nil && nonNegative(*d.MinimumPayment) > 0 },
			value:   func() float64 { return *d.MinimumPayment },
		},
		{
			name:    string(PaymentEstimated),
			applies: always,
			value:   func() float64 { return safeDiv(balance, float64(TermMonths(d)), 0) },
		},
	})
	return payment, PaymentSource(source)
}

func normalizeAt(d model.Debt, balance float64) NormalizedDebt {
	typ, reclassified := scoringType(d)
	payment, source := resolvePayment(d, balance)
	return NormalizedDebt{
		Type:           typ,
		StoredType:     d.Type,
		PaymentSource:  source,
		Name:           d.Name,
		Balance:        balance,
		MonthlyPayment: payment,
		APR:            nonNegative(d.APR),
		InCollections:  d.InCollections,
		Reclassified:   reclassified,
	}
}

// Normalize converts a stored debt into its scoring form. The stored record
// is not modified.
func Normalize(d model.Debt) NormalizedDebt {
	return normalizeAt(d, nonNegative(d.CurrentBalance))
}

// NormalizeHistorical approximates the debt as it stood three months before
// now by adding back every payment made against it since then.
func NormalizeHistorical(d model.Debt, payments []model.DebtPayment, now time.Time) NormalizedDebt {
	since := now.AddDate(0, -3, 0)
	balance := decimal.NewFromFloat(nonNegative(d.CurrentBalance))
	for _, p := range payments {
		if p.DebtID != d.ID || p.PaidAt.Before(since) || p.PaidAt.After(now) {
			continue
		}
		balance = balance.Add(decimal.NewFromFloat(nonNegative(p.Amount)))
	}
	historical, _ := balance.Float64()
	return normalizeAt(d, historical)
}

// NormalizeAll normalizes each debt in order.
func NormalizeAll(debts []model.Debt) []NormalizedDebt {
	out := make([]NormalizedDebt, 0, len(debts))
	for _, d := range debts {
		out = append(out, Normalize(d))
	}
	return out
}

// NormalizeAllHistorical builds the three-months-ago snapshot for each debt.
func NormalizeAllHistorical(debts []model.Debt, payments []model.DebtPayment, now time.Time) []NormalizedDebt {
	out := make([]NormalizedDebt, 0, len(debts))
	for _, d := range debts {
		out = append(out, NormalizeHistorical(d, payments, now))
	}
	return out
}
