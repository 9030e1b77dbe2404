package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
)

// Fetcher defines the contract for pulling bank data.
// This interface allows for easy mocking in tests and swapping data sources.
type Fetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetBalances(ctx context.Context) ([]model.Account, error)
}
