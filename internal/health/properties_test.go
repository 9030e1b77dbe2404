package health

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-health/internal/model"
)

var testNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

var households = []model.HouseholdType{
	"", model.HouseholdSingle, model.HouseholdDualIncome,
	model.HouseholdSingleIncome, model.HouseholdSelfEmployed, model.HouseholdRetired,
}

// randomInput builds a plausible but arbitrary input, including zeros and
// missing optional fields.
func randomInput(rng *rand.Rand) Input {
	money := func(max float64) float64 {
		if rng.Intn(5) == 0 {
			return 0
		}
		return rng.Float64() * max
	}

	debts := make([]model.Debt, rng.Intn(4))
	payments := make([]model.DebtPayment, 0)
	for i := range debts {
		debts[i] = model.Debt{
			ID:             string(rune('a' + i)),
			Type:           model.DebtTypes[rng.Intn(len(model.DebtTypes))],
			CurrentBalance: money(50000),
			APR:            rng.Float64() * 30,
			InCollections:  rng.Intn(8) == 0,
		}
		if rng.Intn(2) == 0 {
			debts[i].MonthlyPayment = ptr(money(1500))
		}
		payments = append(payments, model.DebtPayment{
			DebtID: debts[i].ID,
			Amount: money(2000),
			PaidAt: testNow.AddDate(0, -rng.Intn(4), 0),
		})
	}

	in := Input{
		MonthlyIncome:       money(15000),
		HasConfirmedIncome:  rng.Intn(3) != 0,
		LiquidSavings:       money(60000),
		MonthlyExpenses:     money(9000),
		Debts:               NormalizeAll(debts),
		DebtsThreeMonthsAgo: NormalizeAllHistorical(debts, payments, testNow),
		Contributions: WealthContribution{
			CashSavings:       money(800),
			Retirement401k:    money(1500),
			IRA:               money(500),
			Investments:       money(1000),
			HSA:               money(300),
			ExtraDebtPayments: money(600),
		},
		BillsOnTime:     rng.Intn(24),
		BudgetsTotal:    rng.Intn(8),
		AvgOverspendPct: money(150),
		HouseholdType:   households[rng.Intn(len(households))],
		NoDebtConfirmed: rng.Intn(2) == 0,
	}
	if in.BudgetsTotal > 0 {
		in.BudgetsOnTrack = rng.Intn(in.BudgetsTotal + 1)
	}
	switch rng.Intn(6) {
	case 0, 1, 2:
		ratio := rng.Float64() * 5
		in.BudgetToSpendingRatio = &ratio
	case 3:
		ratio := math.Inf(1)
		in.BudgetToSpendingRatio = &ratio
	}
	if rng.Intn(3) != 0 {
		in.LatePaymentHistory = []LatePaymentEvent{}
		for i := rng.Intn(4); i > 0; i-- {
			in.LatePaymentHistory = append(in.LatePaymentHistory, LatePaymentEvent{
				Tier:      SeverityTier(1 + rng.Intn(6)),
				MonthsAgo: rng.Intn(30),
			})
		}
		in.BillsLate = len(in.LatePaymentHistory)
	}
	return in
}

func TestProperty_Bounds(t *testing.T) {
	p := DefaultPolicy()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		r := Compute(randomInput(rng), p)
		assert.GreaterOrEqual(t, r.Total, 0)
		assert.LessOrEqual(t, r.Total, MaxScore)
		for _, pillar := range r.Pillars() {
			assert.GreaterOrEqual(t, pillar.Score, 0)
			assert.LessOrEqual(t, pillar.Score, pillar.Max)
		}
		for _, f := range r.SubFactors() {
			assert.GreaterOrEqual(t, f.Score, 0)
			assert.LessOrEqual(t, f.Score, f.Max)
		}
	}
}

func TestProperty_ContributionsNeverLowerTrajectory(t *testing.T) {
	p := DefaultPolicy()
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		in := randomInput(rng)
		before := Trajectory(in, p).Score

		more := in
		switch rng.Intn(6) {
		case 0:
			more.Contributions.CashSavings += rng.Float64() * 500
		case 1:
			more.Contributions.Retirement401k += rng.Float64() * 500
		case 2:
			more.Contributions.IRA += rng.Float64() * 500
		case 3:
			more.Contributions.Investments += rng.Float64() * 500
		case 4:
			more.Contributions.HSA += rng.Float64() * 500
		default:
			more.Contributions.ExtraDebtPayments += rng.Float64() * 500
		}
		assert.GreaterOrEqual(t, Trajectory(more, p).Score, before)
	}
}

func TestProperty_LatePaymentsNeverRaiseBehavior(t *testing.T) {
	p := DefaultPolicy()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		in := randomInput(rng)
		before := Behavior(in, p).Score

		event := LatePaymentEvent{Tier: SeverityTier(1 + rng.Intn(6)), MonthsAgo: rng.Intn(30)}
		worse := in
		switch {
		case in.LatePaymentHistory != nil:
			worse.LatePaymentHistory = append(append([]LatePaymentEvent{}, in.LatePaymentHistory...), event)
		case in.BillsOnTime+in.BillsLate == 0:
			// The first bill ever recorded arrives with its dated history.
			worse.LatePaymentHistory = []LatePaymentEvent{event}
		}
		worse.BillsLate++
		assert.LessOrEqual(t, Behavior(worse, p).Score, before)
	}
}

func TestProperty_OnTimeBillsNeverLowerBehavior(t *testing.T) {
	p := DefaultPolicy()
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		in := randomInput(rng)
		before := PaymentConsistency(in, p).Score

		better := in
		better.BillsOnTime += 1 + rng.Intn(24)
		assert.GreaterOrEqual(t, PaymentConsistency(better, p).Score, before)
	}
}

func TestProperty_LiquidSavingsNeverLowerPosition(t *testing.T) {
	p := DefaultPolicy()
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 500; i++ {
		in := randomInput(rng)
		before := Position(in, p).Score

		richer := in
		richer.LiquidSavings += rng.Float64() * 10000
		assert.GreaterOrEqual(t, Position(richer, p).Score, before)
	}
}

func TestProperty_DecayedEventsWeighLess(t *testing.T) {
	p := DefaultPolicy()
	for tier := TierLate1To30; tier <= TierMissed; tier++ {
		for months := 0; months < 30; months++ {
			recent := PaymentConsistency(Input{LatePaymentHistory: []LatePaymentEvent{{Tier: tier, MonthsAgo: months}}}, p)
			older := PaymentConsistency(Input{LatePaymentHistory: []LatePaymentEvent{{Tier: tier, MonthsAgo: months + 1}}}, p)
			assert.LessOrEqual(t, recent.Score, older.Score, "tier %s at %d months", tier, months)
		}
	}
}
