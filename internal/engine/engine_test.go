package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/model"
	"github.com/Veraticus/spice-health/internal/service"
	"github.com/Veraticus/spice-health/internal/testutil"
)

// faultyStore wraps a real store and injects failures.
type faultyStore struct {
	Store
	upsertErr   error
	debtsErr    error
	upsertCalls int
	mu          sync.Mutex
}

func (f *faultyStore) UpsertScoreHistory(ctx context.Context, record *model.ScoreHistoryRecord) error {
	f.mu.Lock()
	f.upsertCalls++
	f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.Store.UpsertScoreHistory(ctx, record)
}

func (f *faultyStore) GetDebts(ctx context.Context, userID string) ([]model.Debt, error) {
	if f.debtsErr != nil {
		return nil, f.debtsErr
	}
	return f.Store.GetDebts(ctx, userID)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var fastRetry = service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

func seedHousehold(t *testing.T, store service.RecordStore, userID string, now time.Time) {
	t.Helper()
	testutil.NewHousehold(t, userID).
		At(now).
		WithIncome(6000).
		WithHousehold(model.HouseholdDualIncome).
		WithAccount(model.AccountChecking, 4000).
		WithAccount(model.AccountSavings, 8000).
		WithDebt(model.DebtAutoLoan, 14000, 350).
		WithDebtPayment(350, 20).
		WithDebtPayment(350, 50).
		WithDebtPayment(350, 80).
		WithBill(model.BillOnTime, 1).
		WithBill(model.BillOnTime, 2).
		WithBill(model.BillLate1To30, 7).
		WithBudget("Groceries", 700).
		WithTransaction(model.DirectionIncome, "Payroll", 6000, 10).
		WithTransaction(model.DirectionExpense, "Groceries", 520, 5).
		WithTransaction(model.DirectionExpense, "Rent", 1900, 12).
		WithContribution(model.Contribution401k, 500, 15).
		Seed(store)
}

func TestScoreEngine_Score_PersistsOncePerDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	clock := &fakeClock{now: testNow}
	seedHousehold(t, db.Storage, "u1", testNow)

	eng := New(db.Storage, health.DefaultPolicy(), WithClock(clock.Now))

	first, err := eng.Score(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, first.PreviousScore)
	assert.GreaterOrEqual(t, first.Total, 0)
	assert.LessOrEqual(t, first.Total, health.MaxScore)

	// Same inputs, same day: one row with the same score.
	clock.now = testNow.Add(3 * time.Hour)
	second, err := eng.Score(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)

	history, err := eng.History(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.Total, history[0].Total)
	assert.Equal(t, "2025-06-15", history[0].ScoredDate)
	assert.Equal(t, first.Trajectory.Score+first.Behavior.Score+first.Position.Score, history[0].Trajectory+history[0].Behavior+history[0].Position)

	// Next day picks up yesterday as the previous score.
	clock.now = testNow.AddDate(0, 0, 1)
	third, err := eng.Score(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, third.PreviousScore)
	assert.Equal(t, first.Total, *third.PreviousScore)

	history, err = eng.History(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestScoreEngine_Score_MatchesPureComputation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)

	eng := New(db.Storage, health.DefaultPolicy(), WithClock(func() time.Time { return testNow }))
	result, err := eng.Score(ctx, "u1")
	require.NoError(t, err)

	records, err := NewAssembler(db.Storage, 24).Load(ctx, "u1", testNow)
	require.NoError(t, err)
	want := health.Compute(BuildInput(records, testNow), health.DefaultPolicy())

	assert.Equal(t, want.Total, result.Total)
	assert.Equal(t, want.Tips, result.Tips)
	assert.Equal(t, want.Completeness, result.Completeness)
}

func TestScoreEngine_Score_HistoryFailureIsNotFatal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)

	store := &faultyStore{Store: db.Storage, upsertErr: errors.New("database is locked")}
	eng := New(store, health.DefaultPolicy(),
		WithClock(func() time.Time { return testNow }),
		WithRetryOptions(fastRetry))

	result, err := eng.Score(ctx, "u1")
	require.NoError(t, err)
	assert.Positive(t, result.Total)
	assert.Equal(t, 2, store.upsertCalls, "transient failures are retried")

	history, err := db.Storage.GetScoreHistory(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScoreEngine_Score_ReadFailureIsFatal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)

	boom := errors.New("disk I/O error")
	store := &faultyStore{Store: db.Storage, debtsErr: boom}
	eng := New(store, health.DefaultPolicy(), WithClock(func() time.Time { return testNow }))

	_, err := eng.Score(ctx, "u1")
	require.ErrorIs(t, err, boom)
	assert.Zero(t, store.upsertCalls)
}

func TestScoreEngine_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	eng := New(db.Storage, health.DefaultPolicy())

	_, err := eng.Score(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUnknownUser)

	_, err = eng.Preview(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestScoreEngine_PreviewDoesNotPersist(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)

	eng := New(db.Storage, health.DefaultPolicy(), WithClock(func() time.Time { return testNow }))
	_, err := eng.Preview(ctx, "u1")
	require.NoError(t, err)

	history, err := eng.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScoreEngine_ScoreAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)
	seedHousehold(t, db.Storage, "u2", testNow)
	testutil.NewHousehold(t, "u3").At(testNow).WithNoDebtConfirmed().Seed(db.Storage)

	eng := New(db.Storage, health.DefaultPolicy(), WithClock(func() time.Time { return testNow }))

	var seen []string
	report, err := eng.ScoreAll(ctx, func(userID string, _ health.Result, err error) {
		assert.NoError(t, err)
		seen = append(seen, userID)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scored)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{"u1", "u2", "u3"}, seen)
}

func TestScoreEngine_ConcurrentScoresSameUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)

	eng := New(db.Storage, health.DefaultPolicy(), WithClock(func() time.Time { return testNow }))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Score(ctx, "u1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := eng.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Zero(t, lockEntries(eng))
}

func lockEntries(e *ScoreEngine) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.locks)
}

func TestScoreEngine_LocksReleasedAfterScoring(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)

	eng := New(db.Storage, health.DefaultPolicy(), WithClock(func() time.Time { return testNow }))

	_, err := eng.Score(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, lockEntries(eng))

	_, err = eng.Score(ctx, "ghost")
	require.ErrorIs(t, err, common.ErrUnknownUser)
	assert.Zero(t, lockEntries(eng))

	unlock := eng.lockUser("u1")
	assert.Equal(t, 1, lockEntries(eng))
	unlock()
	assert.Zero(t, lockEntries(eng))
}

func TestScoreEngine_History(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedHousehold(t, db.Storage, "u1", testNow)

	eng := New(db.Storage, health.DefaultPolicy(), WithClock(func() time.Time { return testNow }))

	_, err := eng.History(ctx, "ghost", 10)
	assert.ErrorIs(t, err, common.ErrUnknownUser)

	history, err := eng.History(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = eng.Score(ctx, "u1")
	require.NoError(t, err)
	history, err = eng.History(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAssembler_Load_BudgetMonthFollowsUTC(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// Just after midnight on July 1 locally is still June 30 in UTC.
	now := time.Date(2025, 7, 1, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	testutil.NewHousehold(t, "u1").
		At(now).
		WithBudget("Groceries", 600).
		WithTransaction(model.DirectionExpense, "Groceries", 250, 0).
		Seed(db.Storage)

	records, err := NewAssembler(db.Storage, 24).Load(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, records.Budgets, 1)
	assert.Equal(t, "2025-06", records.Budgets[0].Month)
	assert.InDelta(t, 250, records.Budgets[0].Spent, 0.001)
}

func TestRecordFromResult(t *testing.T) {
	in := health.Input{
		MonthlyIncome:      5000,
		HasConfirmedIncome: true,
		MonthlyExpenses:    3000,
		LiquidSavings:      9000,
	}
	result := health.Compute(in, health.DefaultPolicy())
	record := RecordFromResult("u1", testNow, result)

	assert.Equal(t, "2025-06-15", record.ScoredDate)
	assert.Equal(t, result.Total, record.Total)
	assert.Equal(t, result.LevelTitle, record.LevelTitle)

	buffer, ok := result.SubFactor(health.FactorEmergencyBuffer)
	require.True(t, ok)
	assert.Equal(t, buffer.Score, record.EmergencyBuffer)
	assert.Equal(t, record.Position, record.EmergencyBuffer+record.DebtToIncome)
	assert.Equal(t, record.Behavior, record.PaymentConsistency+record.BudgetDiscipline)
	assert.Equal(t, record.Trajectory, record.WealthBuilding+record.DebtVelocity)
}
