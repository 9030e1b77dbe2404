// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
)

// RecordStore reads and writes the financial records a score is built from.
type RecordStore interface {
	// Profile operations
	SaveProfile(ctx context.Context, profile *model.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccounts(ctx context.Context, userID string) ([]model.Account, error)

	// Debt operations
	SaveDebt(ctx context.Context, debt *model.Debt) error
	GetDebts(ctx context.Context, userID string) ([]model.Debt, error)
	SaveDebtPayment(ctx context.Context, payment *model.DebtPayment) error
	GetDebtPayments(ctx context.Context, userID string, since time.Time) ([]model.DebtPayment, error)

	// Bill operations
	SaveBillPayment(ctx context.Context, bill *model.BillPayment) error
	GetBillPayments(ctx context.Context, userID string, since time.Time) ([]model.BillPayment, error)

	// Budget operations
	SaveBudget(ctx context.Context, budget *model.Budget) error
	GetBudgets(ctx context.Context, userID, month string) ([]model.Budget, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error)

	// Savings operations
	SaveSavingsGoal(ctx context.Context, goal *model.SavingsGoal) error
	GetSavingsGoals(ctx context.Context, userID string) ([]model.SavingsGoal, error)
	SaveContribution(ctx context.Context, contribution *model.Contribution) error
	GetContributions(ctx context.Context, userID string, since time.Time) ([]model.Contribution, error)
}

// ScoreHistoryStore persists one score snapshot per user per calendar day.
type ScoreHistoryStore interface {
	// UpsertScoreHistory inserts the record or replaces the existing row for
	// the same user and ScoredDate.
	UpsertScoreHistory(ctx context.Context, record *model.ScoreHistoryRecord) error
	// GetScoreHistory returns up to limit records, newest first.
	GetScoreHistory(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryRecord, error)
	// GetLatestScores returns the two most recent records, newest first.
	GetLatestScores(ctx context.Context, userID string) ([]model.ScoreHistoryRecord, error)
	// GetPreviousScore returns the latest record dated strictly before the
	// given day, or common.ErrNotFound.
	GetPreviousScore(ctx context.Context, userID, beforeDate string) (*model.ScoreHistoryRecord, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	RecordStore
	ScoreHistoryStore

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start, End).
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
