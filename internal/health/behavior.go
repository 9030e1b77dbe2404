package health

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-health/internal/model"
)

const daysPerMonth = 30.44

// History is the aggregated payment and budgeting history for one user.
type History struct {
	BudgetToSpendingRatio *float64
	LatePaymentHistory    []LatePaymentEvent
	BillsOnTime           int
	BillsLate             int
	BudgetsOnTrack        int
	BudgetsTotal          int
	AvgOverspendPct       float64
}

// TierForStatus maps a bill status to a severity tier. On-time and unknown
// statuses report false.
func TierForStatus(s model.BillStatus) (SeverityTier, bool) {
	switch s {
	case model.BillLate1To30:
		return TierLate1To30, true
	case model.BillLate31To60:
		return TierLate31To60, true
	case model.BillLate61To90, model.BillLateSixtyOnePlus:
		return TierLate61To90, true
	case model.BillLate91To120:
		return TierLate91To120, true
	case model.BillLate120Plus:
		return TierLate120Plus, true
	case model.BillMissed:
		return TierMissed, true
	}
	return 0, false
}

// MonthsAgo is the whole number of average-length months between due and now,
// rounded to nearest and never negative.
func MonthsAgo(now, due time.Time) int {
	months := math.Round(now.Sub(due).Hours() / 24 / daysPerMonth)
	if months < 0 || math.IsNaN(months) {
		return 0
	}
	return int(months)
}

// Aggregate builds the history the Behavior pillar scores.
// Budgets must carry Spent for their month. Transactions feed the
// anti-gaming ratio and only expenses from the three months before now count.
func Aggregate(now time.Time, bills []model.BillPayment, budgets []model.Budget, transactions []model.Transaction) History {
	var b History

	if len(bills) > 0 {
		b.LatePaymentHistory = make([]LatePaymentEvent, 0)
	}
	for _, bill := range bills {
		if bill.Status == model.BillOnTime {
			b.BillsOnTime++
			continue
		}
		tier, ok := TierForStatus(bill.Status)
		if !ok {
			continue
		}
		b.BillsLate++
		b.LatePaymentHistory = append(b.LatePaymentHistory, LatePaymentEvent{
			Tier:      tier,
			MonthsAgo: MonthsAgo(now, bill.DueDate),
		})
	}

	aggregateBudgets(&b, budgets)
	b.BudgetToSpendingRatio = budgetToSpendingRatio(now, budgets, transactions)
	return b
}

func aggregateBudgets(b *History, budgets []model.Budget) {
	overspendSum := 0.0
	overCount := 0
	for _, budget := range budgets {
		b.BudgetsTotal++
		budgeted := nonNegative(budget.Budgeted)
		spent := nonNegative(budget.Spent)
		if spent <= budgeted {
			b.BudgetsOnTrack++
			continue
		}
		overCount++
		overspendSum += safeDiv(spent-budgeted, budgeted, 1) * 100
	}
	if overCount > 0 {
		b.AvgOverspendPct = overspendSum / float64(overCount)
	}
}

// budgetToSpendingRatio compares what was budgeted with the trailing
// three-month average spend in the same categories. Nil when there are no
// budgets or no expenses at all in the window. Budgeted categories with no
// spend while other expenses exist report +Inf.
func budgetToSpendingRatio(now time.Time, budgets []model.Budget, transactions []model.Transaction) *float64 {
	categories := make(map[string]bool, len(budgets))
	budgeted := decimal.Zero
	for _, budget := range budgets {
		categories[normalizeCategory(budget.Category)] = true
		budgeted = budgeted.Add(decimal.NewFromFloat(nonNegative(budget.Budgeted)))
	}
	if len(categories) == 0 || !budgeted.IsPositive() {
		return nil
	}

	since := now.AddDate(0, -3, 0)
	spent := decimal.Zero
	anyExpense := false
	for _, txn := range transactions {
		if txn.Direction != model.DirectionExpense {
			continue
		}
		if txn.Date.Before(since) || txn.Date.After(now) {
			continue
		}
		anyExpense = true
		if !categories[normalizeCategory(txn.Category)] {
			continue
		}
		spent = spent.Add(decimal.NewFromFloat(nonNegative(txn.Amount)))
	}
	if !anyExpense {
		return nil
	}

	avg := spent.Div(decimal.NewFromInt(3))
	if !avg.IsPositive() {
		ratio := math.Inf(1)
		return &ratio
	}
	ratio, _ := budgeted.Div(avg).Float64()
	return &ratio
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

// Apply copies the aggregated history into an Input.
func (b History) Apply(in *Input) {
	in.LatePaymentHistory = b.LatePaymentHistory
	in.BillsOnTime = b.BillsOnTime
	in.BillsLate = b.BillsLate
	in.BudgetsOnTrack = b.BudgetsOnTrack
	in.BudgetsTotal = b.BudgetsTotal
	in.AvgOverspendPct = b.AvgOverspendPct
	in.BudgetToSpendingRatio = b.BudgetToSpendingRatio
}
