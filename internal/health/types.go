package health

import (
	"fmt"

	"github.com/Veraticus/spice-health/internal/model"
)

// Score ceilings.
const (
	MaxScore = 1000

	TrajectoryMax = 350
	BehaviorMax   = 350
	PositionMax   = 300

	WealthBuildingMax     = 175
	DebtVelocityMax       = 175
	PaymentConsistencyMax = 200
	BudgetDisciplineMax   = 150
	EmergencyBufferMax    = 150
	DebtToIncomeMax       = 150
)

// PillarName identifies one of the three top-level groupings.
type PillarName string

// Pillars.
const (
	PillarTrajectory PillarName = "trajectory"
	PillarBehavior   PillarName = "behavior"
	PillarPosition   PillarName = "position"
)

// FactorName identifies one of the six sub-factors.
type FactorName string

// Sub-factors, two per pillar.
const (
	FactorWealthBuilding     FactorName = "wealth_building_rate"
	FactorDebtVelocity       FactorName = "debt_velocity"
	FactorPaymentConsistency FactorName = "payment_consistency"
	FactorBudgetDiscipline   FactorName = "budget_discipline"
	FactorEmergencyBuffer    FactorName = "emergency_buffer"
	FactorDebtToIncome       FactorName = "debt_to_income"
)

// Label returns a human-readable name for the factor.
func (f FactorName) Label() string {
	switch f {
	case FactorWealthBuilding:
		return "Wealth Building Rate"
	case FactorDebtVelocity:
		return "Debt Velocity"
	case FactorPaymentConsistency:
		return "Payment Consistency"
	case FactorBudgetDiscipline:
		return "Budget Discipline"
	case FactorEmergencyBuffer:
		return "Emergency Buffer"
	case FactorDebtToIncome:
		return "Debt-to-Income"
	}
	return string(f)
}

// SeverityTier orders how late a bill was paid. Higher is worse.
type SeverityTier int

// Severity tiers from mildest to worst.
const (
	TierLate1To30 SeverityTier = iota + 1
	TierLate31To60
	TierLate61To90
	TierLate91To120
	TierLate120Plus
	TierMissed
)

func (t SeverityTier) String() string {
	switch t {
	case TierLate1To30:
		return "1-30 days late"
	case TierLate31To60:
		return "31-60 days late"
	case TierLate61To90:
		return "61-90 days late"
	case TierLate91To120:
		return "91-120 days late"
	case TierLate120Plus:
		return "120+ days late"
	case TierMissed:
		return "missed"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// LatePaymentEvent is one late or missed bill and how long ago it was due.
type LatePaymentEvent struct {
	Tier      SeverityTier
	MonthsAgo int
}

// WealthContribution holds monthly dollar rates moved toward building wealth.
type WealthContribution struct {
	CashSavings       float64
	Retirement401k    float64
	IRA               float64
	Investments       float64
	HSA               float64
	ExtraDebtPayments float64
}

// Total sums all contributions. Negative rates count as zero.
func (w WealthContribution) Total() float64 {
	total := 0.0
	for _, v := range []float64{w.CashSavings, w.Retirement401k, w.IRA, w.Investments, w.HSA, w.ExtraDebtPayments} {
		if finite(v) && v > 0 {
			total += v
		}
	}
	return total
}

// PaymentSource records which step of the payment fallback chain produced a
// debt's monthly payment.
type PaymentSource string

// Payment sources in fallback order.
const (
	PaymentActual    PaymentSource = "actual"
	PaymentMinimum   PaymentSource = "minimum"
	PaymentEstimated PaymentSource = "estimated"
)

// NormalizedDebt is a debt in the shape the pillar math expects.
type NormalizedDebt struct {
	Type           model.DebtType // type used for scoring
	StoredType     model.DebtType
	PaymentSource  PaymentSource
	Name           string
	Balance        float64
	MonthlyPayment float64
	APR            float64
	InCollections  bool
	Reclassified   bool
}

// Completeness flags optional inputs that were absent. It is informational
// and never changes the score.
type Completeness struct {
	NoDebts         bool `json:"no_debts"`
	NoBudgets       bool `json:"no_budgets"`
	NoSavingsGoals  bool `json:"no_savings_goals"`
	NoBillHistory   bool `json:"no_bill_history"`
	NoHouseholdType bool `json:"no_household_type"`
}

// Missing lists the absent inputs in a stable order.
func (c Completeness) Missing() []string {
	var missing []string
	if c.NoDebts {
		missing = append(missing, "debts")
	}
	if c.NoBudgets {
		missing = append(missing, "budgets")
	}
	if c.NoSavingsGoals {
		missing = append(missing, "savings goals")
	}
	if c.NoBillHistory {
		missing = append(missing, "bill payment history")
	}
	if c.NoHouseholdType {
		missing = append(missing, "household type")
	}
	return missing
}

// Input is the immutable snapshot one scoring run works from.
type Input struct {
	BudgetToSpendingRatio *float64 // nil disables the anti-gaming cap
	HouseholdType         model.HouseholdType
	Debts                 []NormalizedDebt
	DebtsThreeMonthsAgo   []NormalizedDebt
	LatePaymentHistory    []LatePaymentEvent // nil when no history is available
	Contributions         WealthContribution
	MonthlyIncome         float64
	LiquidSavings         float64
	MonthlyExpenses       float64
	AvgOverspendPct       float64 // percent, e.g. 12.5
	BillsOnTime           int
	BillsLate             int
	BudgetsOnTrack        int
	BudgetsTotal          int
	Completeness          Completeness
	NoDebtConfirmed       bool
	HasConfirmedIncome    bool
}

// SubFactor is one scored component.
type SubFactor struct {
	Name       FactorName `json:"name"`
	Detail     string     `json:"detail"`
	Score      int        `json:"score"`
	Max        int        `json:"max"`
	Percentage float64    `json:"percentage"` // 0-100
}

// Pillar groups two sub-factors.
type Pillar struct {
	Name       PillarName  `json:"name"`
	SubFactors []SubFactor `json:"sub_factors"`
	Score      int         `json:"score"`
	Max        int         `json:"max"`
}

// Tip is a canned suggestion attached to a weak sub-factor.
type Tip struct {
	Factor      FactorName `json:"factor"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Opportunity int        `json:"opportunity"` // points left on the table
}

// Result is the output of one scoring run.
type Result struct {
	PreviousScore *int         `json:"previous_score,omitempty"`
	LevelTitle    string       `json:"level_title"`
	Tips          []Tip        `json:"tips"`
	Trajectory    Pillar       `json:"trajectory"`
	Behavior      Pillar       `json:"behavior"`
	Position      Pillar       `json:"position"`
	Total         int          `json:"total"`
	Level         int          `json:"level"`
	Completeness  Completeness `json:"data_completeness"`
}

// Pillars returns the three pillars in display order.
func (r Result) Pillars() []Pillar {
	return []Pillar{r.Trajectory, r.Behavior, r.Position}
}

// SubFactors returns all six sub-factors in display order.
func (r Result) SubFactors() []SubFactor {
	factors := make([]SubFactor, 0, 6)
	for _, p := range r.Pillars() {
		factors = append(factors, p.SubFactors...)
	}
	return factors
}

// SubFactor looks up a sub-factor by name.
func (r Result) SubFactor(name FactorName) (SubFactor, bool) {
	for _, f := range r.SubFactors() {
		if f.Name == name {
			return f, true
		}
	}
	return SubFactor{}, false
}

// Delta is the change since the previous score, or nil when there is none.
func (r Result) Delta() *int {
	if r.PreviousScore == nil {
		return nil
	}
	d := r.Total - *r.PreviousScore
	return &d
}
