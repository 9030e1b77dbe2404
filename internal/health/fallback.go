package health

// fallback is one step of an ordered resolution chain. Chains are evaluated
// top-down and the first step that applies wins.
type fallback struct {
	applies func() bool
	value   func() float64
	name    string
}

func always() bool { return true }

func resolve(chain []fallback) (float64, string) {
	for _, step := range chain {
		if step.applies() {
			return step.value(), step.name
		}
	}
	return 0, ""
}

// Income sources reported by EffectiveIncome.
const (
	IncomeConfirmed        = "confirmed_income"
	IncomeExpensesEstimate = "expenses_estimate"
	IncomeFloor            = "income_floor"
)

// EffectiveIncome is the monthly income used as a denominator. Unconfirmed
// income is ignored; 110% of expenses stands in for it, then a fixed floor.
func EffectiveIncome(in Input, p Policy) (float64, string) {
	return resolve([]fallback{
		{
			name:    IncomeConfirmed,
			applies: func() bool { return in.HasConfirmedIncome && nonNegative(in.MonthlyIncome) > 0 },
			value:   func() float64 { return in.MonthlyIncome },
		},
		{
			name:    IncomeExpensesEstimate,
			applies: func() bool { return nonNegative(in.MonthlyExpenses) > 0 },
			value:   func() float64 { return in.MonthlyExpenses * 1.1 },
		},
		{
			name:    IncomeFloor,
			applies: always,
			value:   func() float64 { return p.IncomeFloor },
		},
	})
}

// Expense sources reported by EffectiveExpenses.
const (
	ExpensesActual         = "actual_expenses"
	ExpensesIncomeEstimate = "income_estimate"
	ExpensesFloor          = "expense_floor"
)

// EffectiveExpenses is the monthly spend the emergency buffer is measured in.
func EffectiveExpenses(in Input, p Policy) (float64, string) {
	return resolve([]fallback{
		{
			name:    ExpensesActual,
			applies: func() bool { return nonNegative(in.MonthlyExpenses) > 0 },
			value:   func() float64 { return in.MonthlyExpenses },
		},
		{
			name:    ExpensesIncomeEstimate,
			applies: func() bool { return in.HasConfirmedIncome && nonNegative(in.MonthlyIncome) > 0 },
			value:   func() float64 { return in.MonthlyIncome * 0.75 },
		},
		{
			name:    ExpensesFloor,
			applies: always,
			value:   func() float64 { return p.ExpenseFloor },
		},
	})
}
