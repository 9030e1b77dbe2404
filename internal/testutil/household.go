package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
	"github.com/Veraticus/spice-health/internal/service"
)

// Household seeds one user's financial records through a fluent API.
//
// Example:
//
//	testutil.NewHousehold(t, "user-1").
//		WithIncome(6000).
//		WithDebt(model.DebtCreditCard, 4000, 150).
//		WithAccount(model.AccountSavings, 9000).
//		Seed(db.Storage)
type Household struct {
	now          time.Time
	t            *testing.T
	profile      *model.UserProfile
	userID       string
	accounts     []model.Account
	debts        []model.Debt
	payments     []model.DebtPayment
	bills        []model.BillPayment
	budgets      []model.Budget
	transactions []model.Transaction
	goals        []model.SavingsGoal
	contribs     []model.Contribution
	seq          int
}

// NewHousehold starts a builder for userID anchored at the current time.
func NewHousehold(t *testing.T, userID string) *Household {
	t.Helper()
	return &Household{
		t:       t,
		userID:  userID,
		now:     time.Now().UTC(),
		profile: &model.UserProfile{UserID: userID, Name: userID},
	}
}

// At anchors relative dates (bills, transactions) to now.
func (h *Household) At(now time.Time) *Household {
	h.now = now.UTC()
	return h
}

func (h *Household) nextID(prefix string) string {
	h.seq++
	return fmt.Sprintf("%s-%s-%d", h.userID, prefix, h.seq)
}

// WithIncome records a stated monthly income on the profile.
func (h *Household) WithIncome(amount float64) *Household {
	h.profile.MonthlyIncome = &amount
	return h
}

// WithHousehold sets the household type.
func (h *Household) WithHousehold(kind model.HouseholdType) *Household {
	h.profile.HouseholdType = kind
	return h
}

// WithNoDebtConfirmed marks the user as having confirmed they carry no debt.
func (h *Household) WithNoDebtConfirmed() *Household {
	h.profile.NoDebtConfirmed = true
	return h
}

// WithAccount adds an account with the given balance.
func (h *Household) WithAccount(kind model.AccountType, balance float64) *Household {
	h.accounts = append(h.accounts, model.Account{
		ID:      h.nextID("acct"),
		UserID:  h.userID,
		Name:    string(kind),
		Type:    kind,
		Balance: balance,
	})
	return h
}

// WithDebt adds a debt with an entered monthly payment.
func (h *Household) WithDebt(kind model.DebtType, balance, payment float64) *Household {
	h.debts = append(h.debts, model.Debt{
		ID:             h.nextID("debt"),
		UserID:         h.userID,
		Name:           string(kind),
		Type:           kind,
		CurrentBalance: balance,
		MonthlyPayment: &payment,
		CreatedAt:      h.now.AddDate(-1, 0, 0),
	})
	return h
}

// WithDebtPayment records a payment against the most recently added debt.
func (h *Household) WithDebtPayment(amount float64, daysAgo int) *Household {
	h.t.Helper()
	if len(h.debts) == 0 {
		h.t.Fatal("WithDebtPayment requires a debt")
	}
	h.payments = append(h.payments, model.DebtPayment{
		ID:     h.nextID("pay"),
		DebtID: h.debts[len(h.debts)-1].ID,
		UserID: h.userID,
		Amount: amount,
		PaidAt: h.now.AddDate(0, 0, -daysAgo),
	})
	return h
}

// WithBill adds a bill due monthsAgo months before now.
func (h *Household) WithBill(status model.BillStatus, monthsAgo int) *Household {
	h.bills = append(h.bills, model.BillPayment{
		ID:      h.nextID("bill"),
		UserID:  h.userID,
		Name:    "Bill",
		Status:  status,
		Amount:  100,
		DueDate: h.now.AddDate(0, -monthsAgo, 0),
	})
	return h
}

// WithBudget sets this month's budget for category.
func (h *Household) WithBudget(category string, budgeted float64) *Household {
	h.budgets = append(h.budgets, model.Budget{
		UserID:   h.userID,
		Category: category,
		Month:    model.BudgetMonth(h.now),
		Budgeted: budgeted,
	})
	return h
}

// WithTransaction adds a transaction dated daysAgo days before now.
func (h *Household) WithTransaction(direction model.TransactionDirection, category string, amount float64, daysAgo int) *Household {
	txn := model.Transaction{
		ID:           h.nextID("txn"),
		UserID:       h.userID,
		Date:         h.now.AddDate(0, 0, -daysAgo),
		Name:         category,
		MerchantName: category,
		Category:     category,
		Direction:    direction,
		Amount:       amount,
	}
	txn.AccountID = txn.ID
	txn.Hash = txn.GenerateHash()
	h.transactions = append(h.transactions, txn)
	return h
}

// WithGoal adds a savings goal holding current.
func (h *Household) WithGoal(kind model.GoalType, current float64) *Household {
	h.goals = append(h.goals, model.SavingsGoal{
		ID:            h.nextID("goal"),
		UserID:        h.userID,
		Name:          string(kind),
		Type:          kind,
		TargetAmount:  current * 2,
		CurrentAmount: current,
	})
	return h
}

// WithContribution adds a contribution dated daysAgo days before now.
func (h *Household) WithContribution(kind model.ContributionKind, amount float64, daysAgo int) *Household {
	h.contribs = append(h.contribs, model.Contribution{
		ID:     h.nextID("contrib"),
		UserID: h.userID,
		Kind:   kind,
		Amount: amount,
		Date:   h.now.AddDate(0, 0, -daysAgo),
	})
	return h
}

// Seed writes every record to store, failing the test on the first error.
func (h *Household) Seed(store service.RecordStore) {
	h.t.Helper()
	ctx := context.Background()

	must := func(what string, err error) {
		h.t.Helper()
		if err != nil {
			h.t.Fatalf("failed to seed %s for %s: %v", what, h.userID, err)
		}
	}

	must("profile", store.SaveProfile(ctx, h.profile))
	for i := range h.accounts {
		must("account", store.SaveAccount(ctx, &h.accounts[i]))
	}
	for i := range h.debts {
		must("debt", store.SaveDebt(ctx, &h.debts[i]))
	}
	for i := range h.payments {
		must("debt payment", store.SaveDebtPayment(ctx, &h.payments[i]))
	}
	for i := range h.bills {
		must("bill", store.SaveBillPayment(ctx, &h.bills[i]))
	}
	for i := range h.budgets {
		must("budget", store.SaveBudget(ctx, &h.budgets[i]))
	}
	if len(h.transactions) > 0 {
		must("transactions", store.SaveTransactions(ctx, h.transactions))
	}
	for i := range h.goals {
		must("savings goal", store.SaveSavingsGoal(ctx, &h.goals[i]))
	}
	for i := range h.contribs {
		must("contribution", store.SaveContribution(ctx, &h.contribs[i]))
	}
}
