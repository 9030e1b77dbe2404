package health

import (
	"fmt"
	"math"
)

// On-time share of bills when no dated late history is available.
var onTimeCurve = curve{
	{0, 0},
	{0.80, 60},
	{0.90, 130},
	{0.95, 165},
	{1.0, 200},
}

// Emergency savings as a share of the household's target.
var bufferCurve = curve{
	{0, 0},
	{0.25, 35},
	{0.50, 70},
	{0.75, 105},
	{1.0, 140},
	{1.5, 150},
}

// Monthly debt payments over effective income.
var dtiCurve = curve{
	{0, 150},
	{0.10, 140},
	{0.20, 118},
	{0.28, 98},
	{0.36, 72},
	{0.43, 48},
	{0.50, 24},
	{0.60, 0},
}

// Shares of the ceiling used when a sub-factor has no data.
const (
	noBillHistoryShare = 0.75
	noBudgetShare      = 0.60
)

const (
	collectionsPenalty    = 25
	maxCollectionsPenalty = 50
)

// Behavior scores how reliably bills are paid and budgets kept.
func Behavior(in Input, p Policy) Pillar {
	return newPillar(PillarBehavior, BehaviorMax,
		PaymentConsistency(in, p),
		BudgetDiscipline(in, p),
	)
}

// Position scores the current cushion: emergency savings and debt load.
func Position(in Input, p Policy) Pillar {
	return newPillar(PillarPosition, PositionMax,
		EmergencyBuffer(in, p),
		DebtToIncome(in, p),
	)
}

// PaymentConsistency scores the decayed late-payment history. Without dated
// history it falls back to the on-time ratio, and without any bills to a
// neutral baseline.
//
// The decayed penalty is weighted by the share of recent bills that were
// late, so one miss among many on-time cycles costs less than a miss on a
// lone bill. A history with late events never scores above the baseline plus
// the on-time share of the remaining headroom, so a first late bill can never
// beat having no bills at all.
func PaymentConsistency(in Input, p Policy) SubFactor {
	total := in.BillsOnTime + in.BillsLate
	baseline := noBillHistoryShare * PaymentConsistencyMax

	if in.LatePaymentHistory != nil {
		penalty := 0.0
		active := 0
		mostRecent := math.MaxInt
		for _, e := range in.LatePaymentHistory {
			if lp := LatePenalty(e, p); lp > 0 {
				penalty += lp
				active++
			}
			if e.MonthsAgo < mostRecent {
				mostRecent = e.MonthsAgo
			}
		}
		var detail string
		switch n := len(in.LatePaymentHistory); {
		case n == 0:
			detail = fmt.Sprintf("No late payments across %d bill cycles", total)
		case n == 1:
			detail = fmt.Sprintf("1 late payment, %d months ago", mostRecent)
		default:
			detail = fmt.Sprintf("%d late payments, most recent %d months ago", n, mostRecent)
		}

		counted := in.BillsOnTime + active
		if counted == 0 {
			return newSubFactor(FactorPaymentConsistency, PaymentConsistencyMax, baseline, detail)
		}
		lateShare := float64(active) / float64(counted)
		score := PaymentConsistencyMax - penalty*(0.5+0.5*lateShare)
		if active > 0 {
			ceiling := baseline + (PaymentConsistencyMax-baseline)*(1-lateShare)
			score = math.Min(score, ceiling)
		}
		return newSubFactor(FactorPaymentConsistency, PaymentConsistencyMax, score, detail)
	}

	if total > 0 {
		ratio := float64(in.BillsOnTime) / float64(total)
		return newSubFactor(FactorPaymentConsistency, PaymentConsistencyMax,
			onTimeCurve.at(ratio),
			fmt.Sprintf("%d of %d bills paid on time", in.BillsOnTime, total))
	}

	return newSubFactor(FactorPaymentConsistency, PaymentConsistencyMax,
		baseline,
		"No bill payment history yet")
}

// BudgetDiscipline scores budget adherence and how far over budget the
// overspent categories went. Budgets set far above real spending are capped.
func BudgetDiscipline(in Input, p Policy) SubFactor {
	if in.BudgetsTotal <= 0 {
		return newSubFactor(FactorBudgetDiscipline, BudgetDisciplineMax,
			noBudgetShare*BudgetDisciplineMax,
			"No budgets set up yet")
	}

	adherence := clamp(safeDiv(float64(in.BudgetsOnTrack), float64(in.BudgetsTotal), 0), 0, 1)
	overspend := clamp(nonNegative(in.AvgOverspendPct)/50, 0, 1)
	score := 100*adherence + 50*(1-overspend)
	detail := fmt.Sprintf("%d of %d budget categories on track", in.BudgetsOnTrack, in.BudgetsTotal)
	if in.AvgOverspendPct > 0 {
		detail += fmt.Sprintf(", overspent categories averaged %.0f%% over", in.AvgOverspendPct)
	}

	if ratio := in.BudgetToSpendingRatio; ratio != nil && !math.IsNaN(*ratio) {
		ceiling := float64(BudgetDisciplineMax)
		switch {
		case *ratio > p.AntiGamingSevereThreshold:
			ceiling *= p.AntiGamingSevereCap
		case *ratio > p.AntiGamingThreshold:
			ceiling *= p.AntiGamingCap
		}
		if score > ceiling {
			score = ceiling
			if math.IsInf(*ratio, 1) {
				detail += "; capped because budgeted categories show no spending"
			} else {
				detail += fmt.Sprintf("; capped because budgets are %.1fx actual spending", *ratio)
			}
		}
	}

	return newSubFactor(FactorBudgetDiscipline, BudgetDisciplineMax, score, detail)
}

// EmergencyBuffer scores liquid savings in months of expenses against the
// household's target.
func EmergencyBuffer(in Input, p Policy) SubFactor {
	expenses, source := EffectiveExpenses(in, p)
	target := p.BufferTargetMonths(in.HouseholdType)
	months := safeDiv(nonNegative(in.LiquidSavings), expenses, 0)
	coverage := safeDiv(months, target, 0)

	household := string(in.HouseholdType)
	if household == "" {
		household = "unspecified"
	}
	detail := fmt.Sprintf("%.1f months of expenses saved (target %.0f months for %s households)",
		months, target, household)
	if source != ExpensesActual {
		detail += " (expenses estimated)"
	}
	return newSubFactor(FactorEmergencyBuffer, EmergencyBufferMax, bufferCurve.at(coverage), detail)
}

// DebtToIncome scores total monthly debt payments against effective income.
// Each debt in collections costs extra points.
func DebtToIncome(in Input, p Policy) SubFactor {
	payments := 0.0
	collections := 0
	for _, d := range in.Debts {
		payments += nonNegative(d.MonthlyPayment)
		if d.InCollections {
			collections++
		}
	}
	income, source := EffectiveIncome(in, p)
	dti := safeDiv(payments, income, 0)

	score := dtiCurve.at(dti)
	detail := fmt.Sprintf("Debt payments take %.0f%% of monthly income", dti*100)
	if source != IncomeConfirmed {
		detail += " (income estimated)"
	}
	if collections > 0 {
		score -= math.Min(float64(collections*collectionsPenalty), maxCollectionsPenalty)
		detail += fmt.Sprintf("; %d in collections", collections)
	}
	return newSubFactor(FactorDebtToIncome, DebtToIncomeMax, score, detail)
}
