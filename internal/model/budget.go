package model

import "time"

// BudgetMonthLayout is the month key budgets are stored under.
const BudgetMonthLayout = "2006-01"

// Budget is the amount a user planned to spend in a category for one month.
// Spent is filled in from transactions when budgets are loaded.
type Budget struct {
	UserID   string
	Category string
	Month    string // YYYY-MM
	Budgeted float64
	Spent    float64
}

// BudgetMonth is the budget month containing t. Transactions are stored in
// UTC, so the month is taken in UTC too.
func BudgetMonth(t time.Time) string {
	return t.UTC().Format(BudgetMonthLayout)
}
