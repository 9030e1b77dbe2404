package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func ptr[T any](v T) *T { return &v }

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	var tables int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name IN ('debts', 'bill_payments', 'budgets', 'score_history')
	`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 4, tables)
}

func TestProfile_RoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)

	profile := &model.UserProfile{
		UserID:          "u1",
		Name:            "Test User",
		MonthlyIncome:   ptr(5200.0),
		HouseholdType:   model.HouseholdDualIncome,
		NoDebtConfirmed: true,
	}
	require.NoError(t, store.SaveProfile(ctx, profile))

	got, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	profile.MonthlyIncome = nil
	require.NoError(t, store.SaveProfile(ctx, profile))
	got, err = store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got.MonthlyIncome)

	err = store.SaveProfile(ctx, &model.UserProfile{UserID: "u2", HouseholdType: "commune"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestDebts_SaveAndGet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	debt := &model.Debt{
		ID:                    "d1",
		UserID:                "u1",
		Name:                  "Visa",
		Type:                  model.DebtCreditCard,
		CurrentBalance:        4200,
		MinimumPayment:        ptr(95.0),
		APR:                   24.99,
		OriginationTermMonths: ptr(36),
		CreatedAt:             time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveDebt(ctx, debt))

	debts, err := store.GetDebts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, model.DebtCreditCard, debts[0].Type)
	assert.Nil(t, debts[0].MonthlyPayment)
	require.NotNil(t, debts[0].MinimumPayment)
	assert.InDelta(t, 95.0, *debts[0].MinimumPayment, 0.001)
	require.NotNil(t, debts[0].OriginationTermMonths)
	assert.Equal(t, 36, *debts[0].OriginationTermMonths)
	assert.True(t, debt.CreatedAt.Equal(debts[0].CreatedAt))

	// Reclassify in place
	debt.Type = model.DebtCreditCardPaidFull
	require.NoError(t, store.SaveDebt(ctx, debt))
	debts, err = store.GetDebts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, model.DebtCreditCardPaidFull, debts[0].Type)
}

func TestDebts_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		debt *model.Debt
		name string
	}{
		{name: "nil debt", debt: nil},
		{name: "missing id", debt: &model.Debt{UserID: "u1", Name: "x", Type: model.DebtOther}},
		{name: "unknown type", debt: &model.Debt{ID: "d", UserID: "u1", Name: "x", Type: "loan_shark"}},
		{name: "negative balance", debt: &model.Debt{ID: "d", UserID: "u1", Name: "x", Type: model.DebtOther, CurrentBalance: -1}},
		{name: "zero term", debt: &model.Debt{ID: "d", UserID: "u1", Name: "x", Type: model.DebtOther, OriginationTermMonths: ptr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.SaveDebt(ctx, tt.debt))
		})
	}
}

func TestDebtPayments_Since(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveDebt(ctx, &model.Debt{ID: "d1", UserID: "u1", Name: "Car", Type: model.DebtAutoLoan, CurrentBalance: 9000}))

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i, daysAgo := range []int{10, 40, 200} {
		require.NoError(t, store.SaveDebtPayment(ctx, &model.DebtPayment{
			ID:     string(rune('a' + i)),
			DebtID: "d1",
			UserID: "u1",
			Amount: 300,
			PaidAt: now.AddDate(0, 0, -daysAgo),
		}))
	}

	payments, err := store.GetDebtPayments(ctx, "u1", now.AddDate(0, -3, 0))
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "a", payments[0].ID)
}

func TestBillPayments_SaveAndGet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	paid := due.AddDate(0, 0, 12)
	require.NoError(t, store.SaveBillPayment(ctx, &model.BillPayment{
		ID: "b1", UserID: "u1", Name: "Electric", Amount: 120, DueDate: due, PaidDate: &paid, Status: model.BillLate1To30,
	}))
	require.NoError(t, store.SaveBillPayment(ctx, &model.BillPayment{
		ID: "b2", UserID: "u1", Name: "Water", Amount: 40, DueDate: due.AddDate(0, -30, 0), Status: model.BillMissed,
	}))

	bills, err := store.GetBillPayments(ctx, "u1", due.AddDate(-2, 0, 0))
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, model.BillLate1To30, bills[0].Status)
	require.NotNil(t, bills[0].PaidDate)
	assert.True(t, paid.Equal(*bills[0].PaidDate))

	err = store.SaveBillPayment(ctx, &model.BillPayment{ID: "b3", UserID: "u1", DueDate: due, Status: "sort_of_paid"})
	assert.ErrorIs(t, err, ErrInvalidBill)
}

func TestBudgets_SpentFromTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveBudget(ctx, &model.Budget{UserID: "u1", Category: "Groceries", Month: "2025-06", Budgeted: 500}))
	require.NoError(t, store.SaveBudget(ctx, &model.Budget{UserID: "u1", Category: "Dining", Month: "2025-06", Budgeted: 200}))

	day := func(d int) time.Time { return time.Date(2025, 6, d, 10, 0, 0, 0, time.UTC) }
	txns := []model.Transaction{
		{ID: "t1", UserID: "u1", Date: day(2), Name: "Market", Category: "groceries", Direction: model.DirectionExpense, Amount: 120},
		{ID: "t2", UserID: "u1", Date: day(9), Name: "Market", Category: "Groceries", Direction: model.DirectionExpense, Amount: 80.5},
		{ID: "t3", UserID: "u1", Date: day(9), Name: "Refund", Category: "Groceries", Direction: model.DirectionIncome, Amount: 30},
		{ID: "t4", UserID: "u1", Date: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), Name: "Old", Category: "Groceries", Direction: model.DirectionExpense, Amount: 999},
	}
	for i := range txns {
		txns[i].MerchantName = txns[i].ID
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	budgets, err := store.GetBudgets(ctx, "u1", "2025-06")
	require.NoError(t, err)
	require.Len(t, budgets, 2)

	assert.Equal(t, "Dining", budgets[0].Category)
	assert.InDelta(t, 0, budgets[0].Spent, 0.001)
	assert.Equal(t, "Groceries", budgets[1].Category)
	assert.InDelta(t, 200.5, budgets[1].Spent, 0.001)

	// Upsert keeps one row per category and month
	require.NoError(t, store.SaveBudget(ctx, &model.Budget{UserID: "u1", Category: "Groceries", Month: "2025-06", Budgeted: 650}))
	budgets, err = store.GetBudgets(ctx, "u1", "2025-06")
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.InDelta(t, 650, budgets[1].Budgeted, 0.001)

	_, err = store.GetBudgets(ctx, "u1", "June")
	assert.ErrorIs(t, err, ErrInvalidBudget)
}

func TestTransactions_DuplicatesIgnored(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := model.Transaction{
		ID:           "t1",
		UserID:       "u1",
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Name:         "PAYROLL",
		MerchantName: "Acme",
		Direction:    model.DirectionIncome,
		Amount:       3000,
	}
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))

	dup := txn
	dup.ID = "t1-again"
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{dup}))

	got, err := store.GetTransactions(ctx, "u1", txn.Date.AddDate(0, 0, -1), txn.Date.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.DirectionIncome, got[0].Direction)

	_, err = store.GetTransactions(ctx, "u1", txn.Date, txn.Date)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	err = store.SaveTransactions(ctx, []model.Transaction{})
	assert.ErrorIs(t, err, ErrEmptySlice)
}

func TestAccountsAndGoals(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveAccount(ctx, &model.Account{ID: "a1", UserID: "u1", Name: "Checking", Type: model.AccountChecking, Balance: 1500}))
	require.NoError(t, store.SaveAccount(ctx, &model.Account{ID: "a1", UserID: "u1", Name: "Checking", Type: model.AccountChecking, Balance: 1750}))
	require.NoError(t, store.SaveSavingsGoal(ctx, &model.SavingsGoal{ID: "g1", UserID: "u1", Name: "Rainy day", Type: model.GoalEmergency, TargetAmount: 10000, CurrentAmount: 2500}))

	accounts, err := store.GetAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.InDelta(t, 1750, accounts[0].Balance, 0.001)

	goals, err := store.GetSavingsGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, model.GoalEmergency, goals[0].Type)

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveContribution(ctx, &model.Contribution{ID: "c1", UserID: "u1", Kind: model.Contribution401k, Amount: 400, Date: now.AddDate(0, 0, -5)}))
	require.NoError(t, store.SaveContribution(ctx, &model.Contribution{ID: "c2", UserID: "u1", Kind: model.ContributionIRA, Amount: 500, Date: now.AddDate(0, -6, 0)}))

	contribs, err := store.GetContributions(ctx, "u1", now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, contribs, 1)
	assert.Equal(t, model.Contribution401k, contribs[0].Kind)

	ids, err := store.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.SaveProfile(ctx, &model.UserProfile{UserID: "u2"}))
	require.NoError(t, store.SaveDebt(ctx, &model.Debt{ID: "d1", UserID: "u1", Name: "Card", Type: model.DebtCreditCard}))
	ids, err = store.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)
}
