package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/model"
	"github.com/Veraticus/spice-health/internal/service"
)

// averagingMonths is the trailing window for income, expense and
// contribution averages.
const averagingMonths = 3

// Records is everything stored for one user that feeds a score.
type Records struct {
	Profile       *model.UserProfile
	Accounts      []model.Account
	Debts         []model.Debt
	DebtPayments  []model.DebtPayment
	Bills         []model.BillPayment
	Budgets       []model.Budget
	Transactions  []model.Transaction
	Goals         []model.SavingsGoal
	Contributions []model.Contribution
}

// Empty reports whether nothing at all is on record for the user.
func (r *Records) Empty() bool {
	return r.Profile == nil && len(r.Accounts) == 0 && len(r.Debts) == 0 &&
		len(r.Bills) == 0 && len(r.Budgets) == 0 && len(r.Transactions) == 0 &&
		len(r.Goals) == 0 && len(r.Contributions) == 0
}

// Assembler loads a user's records and shapes them into a health.Input.
type Assembler struct {
	store             service.RecordStore
	billHistoryMonths int
}

// NewAssembler creates an assembler that reads bill history going back
// billHistoryMonths months.
func NewAssembler(store service.RecordStore, billHistoryMonths int) *Assembler {
	if billHistoryMonths <= 0 {
		billHistoryMonths = health.DefaultPolicy().LatePaymentWindowMonths
	}
	return &Assembler{store: store, billHistoryMonths: billHistoryMonths}
}

// Load reads every record type for userID in parallel. It returns
// common.ErrUnknownUser when nothing is on record.
func (a *Assembler) Load(ctx context.Context, userID string, now time.Time) (*Records, error) {
	since := now.AddDate(0, -averagingMonths, 0)
	end := now.Add(time.Nanosecond)
	records := &Records{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := a.store.GetProfile(gctx, userID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		records.Profile = profile
		return nil
	})
	g.Go(func() (err error) {
		records.Accounts, err = a.store.GetAccounts(gctx, userID)
		return wrap(err, "accounts")
	})
	g.Go(func() (err error) {
		records.Debts, err = a.store.GetDebts(gctx, userID)
		return wrap(err, "debts")
	})
	g.Go(func() (err error) {
		records.DebtPayments, err = a.store.GetDebtPayments(gctx, userID, since)
		return wrap(err, "debt payments")
	})
	g.Go(func() (err error) {
		records.Bills, err = a.store.GetBillPayments(gctx, userID, now.AddDate(0, -a.billHistoryMonths, 0))
		return wrap(err, "bill payments")
	})
	g.Go(func() (err error) {
		records.Budgets, err = a.store.GetBudgets(gctx, userID, model.BudgetMonth(now))
		return wrap(err, "budgets")
	})
	g.Go(func() (err error) {
		records.Transactions, err = a.store.GetTransactions(gctx, userID, since, end)
		return wrap(err, "transactions")
	})
	g.Go(func() (err error) {
		records.Goals, err = a.store.GetSavingsGoals(gctx, userID)
		return wrap(err, "savings goals")
	})
	g.Go(func() (err error) {
		records.Contributions, err = a.store.GetContributions(gctx, userID, since)
		return wrap(err, "contributions")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if records.Empty() {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownUser, userID)
	}
	return records, nil
}

func wrap(err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

// Assemble loads userID's records and builds the scoring input.
func (a *Assembler) Assemble(ctx context.Context, userID string, now time.Time) (health.Input, error) {
	records, err := a.Load(ctx, userID, now)
	if err != nil {
		return health.Input{}, err
	}
	return BuildInput(records, now), nil
}

// BuildInput turns loaded records into a health.Input as of now.
func BuildInput(r *Records, now time.Time) health.Input {
	profile := r.Profile
	if profile == nil {
		profile = &model.UserProfile{}
	}

	in := health.Input{
		HouseholdType:       profile.HouseholdType,
		NoDebtConfirmed:     profile.NoDebtConfirmed,
		Debts:               health.NormalizeAll(r.Debts),
		DebtsThreeMonthsAgo: health.NormalizeAllHistorical(r.Debts, r.DebtPayments, now),
		LiquidSavings:       liquidSavings(r.Accounts, r.Goals),
		MonthlyExpenses:     trailingAverage(r.Transactions, model.DirectionExpense, now),
		Contributions:       contributionRates(r.Contributions, r.Debts, r.DebtPayments, now),
		Completeness: health.Completeness{
			NoDebts:         len(r.Debts) == 0,
			NoBudgets:       len(r.Budgets) == 0,
			NoSavingsGoals:  len(r.Goals) == 0,
			NoBillHistory:   len(r.Bills) == 0,
			NoHouseholdType: profile.HouseholdType == "",
		},
	}

	in.MonthlyIncome, in.HasConfirmedIncome = monthlyIncome(r.Transactions, profile, now)
	health.Aggregate(now, r.Bills, r.Budgets, r.Transactions).Apply(&in)
	return in
}

// monthlyIncome walks the income chain: income received so far this month,
// then the trailing three-month average, then the income on the profile.
func monthlyIncome(transactions []model.Transaction, profile *model.UserProfile, now time.Time) (float64, bool) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	thisMonth := decimal.Zero
	for _, txn := range transactions {
		if txn.Direction == model.DirectionIncome && !txn.Date.Before(monthStart) && !txn.Date.After(now) {
			thisMonth = thisMonth.Add(decimal.NewFromFloat(txn.Amount))
		}
	}
	if thisMonth.IsPositive() {
		return thisMonth.InexactFloat64(), true
	}

	if avg := trailingAverage(transactions, model.DirectionIncome, now); avg > 0 {
		return avg, true
	}

	if profile.MonthlyIncome != nil && *profile.MonthlyIncome > 0 {
		return *profile.MonthlyIncome, true
	}
	return 0, false
}

// trailingAverage is the monthly average of transactions in direction over
// the trailing three months.
func trailingAverage(transactions []model.Transaction, direction model.TransactionDirection, now time.Time) float64 {
	since := now.AddDate(0, -averagingMonths, 0)
	sum := decimal.Zero
	for _, txn := range transactions {
		if txn.Direction != direction || txn.Amount <= 0 {
			continue
		}
		if txn.Date.Before(since) || txn.Date.After(now) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(txn.Amount))
	}
	return sum.Div(decimal.NewFromInt(averagingMonths)).InexactFloat64()
}

// liquidSavings adds positive checking and savings balances to money held in
// liquid savings goals.
func liquidSavings(accounts []model.Account, goals []model.SavingsGoal) float64 {
	total := decimal.Zero
	for _, account := range accounts {
		if account.Type.IsLiquid() && account.Balance > 0 {
			total = total.Add(decimal.NewFromFloat(account.Balance))
		}
	}
	for _, goal := range goals {
		if goal.Type.IsLiquid() && goal.CurrentAmount > 0 {
			total = total.Add(decimal.NewFromFloat(goal.CurrentAmount))
		}
	}
	return total.InexactFloat64()
}

// contributionRates averages contributions by kind over the trailing three
// months. Debt payments above a debt's required monthly payment count as
// extra principal.
func contributionRates(contributions []model.Contribution, debts []model.Debt, payments []model.DebtPayment, now time.Time) health.WealthContribution {
	since := now.AddDate(0, -averagingMonths, 0)
	months := decimal.NewFromInt(averagingMonths)

	sums := make(map[model.ContributionKind]decimal.Decimal)
	for _, c := range contributions {
		if c.Amount <= 0 || c.Date.Before(since) || c.Date.After(now) {
			continue
		}
		sums[c.Kind] = sums[c.Kind].Add(decimal.NewFromFloat(c.Amount))
	}
	rate := func(kind model.ContributionKind) float64 {
		return sums[kind].Div(months).InexactFloat64()
	}

	paid := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if p.Amount <= 0 || p.PaidAt.Before(since) || p.PaidAt.After(now) {
			continue
		}
		paid[p.DebtID] = paid[p.DebtID].Add(decimal.NewFromFloat(p.Amount))
	}
	extra := decimal.Zero
	for _, d := range debts {
		total, ok := paid[d.ID]
		if !ok {
			continue
		}
		required := decimal.NewFromFloat(health.Normalize(d).MonthlyPayment)
		over := total.Div(months).Sub(required)
		if over.IsPositive() {
			extra = extra.Add(over)
		}
	}

	return health.WealthContribution{
		CashSavings:       rate(model.ContributionCashSavings),
		Retirement401k:    rate(model.Contribution401k),
		IRA:               rate(model.ContributionIRA),
		Investments:       rate(model.ContributionInvestments),
		HSA:               rate(model.ContributionHSA),
		ExtraDebtPayments: extra.InexactFloat64(),
	}
}
