package health

import "sort"

type cannedTip struct {
	title   string
	message string
}

var tips = map[FactorName]cannedTip{
	FactorWealthBuilding: {
		title:   "Pay yourself first",
		message: "Automate a transfer to savings or retirement on payday. Working toward 15-20% of income makes the biggest long-term difference.",
	},
	FactorDebtVelocity: {
		title:   "Speed up high-interest payoff",
		message: "Put any extra dollars toward the highest-APR balance first. Payday loans and credit cards cost the most to carry.",
	},
	FactorPaymentConsistency: {
		title:   "Never miss a due date",
		message: "Set up autopay for at least the minimum on every bill. Recent late payments weigh the most and fade over time.",
	},
	FactorBudgetDiscipline: {
		title:   "Make your budget realistic",
		message: "Base each category on what you actually spent over the last three months, then trim one category at a time.",
	},
	FactorEmergencyBuffer: {
		title:   "Build your emergency fund",
		message: "Keep a few months of expenses in a separate savings account. Start with one month, then grow toward your household's target.",
	},
	FactorDebtToIncome: {
		title:   "Lower your monthly debt load",
		message: "Aim to keep debt payments under 36% of income. Refinancing or consolidating can lower required payments.",
	},
}

// RankTips returns a tip for every sub-factor below thresholdPct, biggest
// opportunity first. Ties keep sub-factor order.
func RankTips(factors []SubFactor, thresholdPct float64) []Tip {
	out := make([]Tip, 0, len(factors))
	for _, f := range factors {
		if f.Percentage >= thresholdPct {
			continue
		}
		canned, ok := tips[f.Name]
		if !ok {
			continue
		}
		out = append(out, Tip{
			Factor:      f.Name,
			Title:       canned.title,
			Message:     canned.message,
			Opportunity: f.Max - f.Score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Opportunity > out[j].Opportunity
	})
	return out
}
