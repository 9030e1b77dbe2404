package health

import "fmt"

// Share of effective income contributed each month.
var wealthCurve = curve{
	{0, 0},
	{0.05, 50},
	{0.10, 95},
	{0.15, 130},
	{0.20, 155},
	{0.30, 175},
}

// Weighted three-month balance reduction. Growth scores toward zero.
var velocityCurve = curve{
	{-0.10, 0},
	{0, 60},
	{0.03, 100},
	{0.06, 135},
	{0.10, 160},
	{0.15, 175},
}

const (
	unconfirmedNoDebtShare = 0.80
	newDebtShare           = 0.20
)

func newSubFactor(name FactorName, ceiling int, raw float64, detail string) SubFactor {
	score := points(raw, ceiling)
	return SubFactor{
		Name:       name,
		Score:      score,
		Max:        ceiling,
		Percentage: float64(score) / float64(ceiling) * 100,
		Detail:     detail,
	}
}

func newPillar(name PillarName, ceiling int, factors ...SubFactor) Pillar {
	total := 0
	for _, f := range factors {
		total += f.Score
	}
	if total > ceiling {
		total = ceiling
	}
	return Pillar{Name: name, Score: total, Max: ceiling, SubFactors: factors}
}

// Trajectory scores where the user is heading: how much they put toward
// wealth each month and how fast risky debt is shrinking.
func Trajectory(in Input, p Policy) Pillar {
	return newPillar(PillarTrajectory, TrajectoryMax,
		WealthBuildingRate(in, p),
		DebtVelocity(in),
	)
}

// WealthBuildingRate scores monthly contributions against effective income.
func WealthBuildingRate(in Input, p Policy) SubFactor {
	income, source := EffectiveIncome(in, p)
	contributions := in.Contributions.Total()
	rate := clamp(safeDiv(contributions, income, 0), 0, 10)

	detail := fmt.Sprintf("Putting %.1f%% of income toward savings, retirement and extra debt principal", rate*100)
	if source != IncomeConfirmed {
		detail += " (income estimated)"
	}
	return newSubFactor(FactorWealthBuilding, WealthBuildingMax, wealthCurve.at(rate), detail)
}

func weightedBalance(debts []NormalizedDebt) float64 {
	total := 0.0
	for _, d := range debts {
		total += nonNegative(d.Balance) * VelocityWeight(d.Type)
	}
	return total
}

// DebtVelocity scores the risk-weighted drop in balances between the
// three-months-ago snapshot and today.
func DebtVelocity(in Input) SubFactor {
	now := weightedBalance(in.Debts)
	before := weightedBalance(in.DebtsThreeMonthsAgo)

	switch {
	case now == 0 && before == 0 && len(in.Debts) == 0 && !in.NoDebtConfirmed:
		return newSubFactor(FactorDebtVelocity, DebtVelocityMax,
			unconfirmedNoDebtShare*DebtVelocityMax,
			"No debts on file; confirm you are debt-free for full credit")
	case now == 0 && before == 0:
		return newSubFactor(FactorDebtVelocity, DebtVelocityMax, DebtVelocityMax,
			"No revolving or interest-bearing balances to pay down")
	case before == 0:
		return newSubFactor(FactorDebtVelocity, DebtVelocityMax,
			newDebtShare*DebtVelocityMax,
			"New debt taken on in the last three months")
	}

	reduction := clamp(safeDiv(before-now, before, 0), -1, 1)
	var detail string
	if reduction >= 0 {
		detail = fmt.Sprintf("Risk-weighted debt down %.1f%% over three months", reduction*100)
	} else {
		detail = fmt.Sprintf("Risk-weighted debt up %.1f%% over three months", -reduction*100)
	}
	return newSubFactor(FactorDebtVelocity, DebtVelocityMax, velocityCurve.at(reduction), detail)
}
