package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
)

// MockClient is a mock implementation of Fetcher for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	GetTransactionsFn func(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetBalancesFn     func(ctx context.Context) ([]model.Account, error)

	// Call tracking
	GetTransactionsCalls []GetTransactionsCall
	GetBalancesCalls     int
}

// GetTransactionsCall records the parameters of a GetTransactions call.
type GetTransactionsCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{
		GetTransactionsCalls: []GetTransactionsCall{},
	}
}

// GetTransactions implements Fetcher.GetTransactions.
func (m *MockClient) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, GetTransactionsCall{
		StartDate: startDate,
		EndDate:   endDate,
	})

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, startDate, endDate)
	}

	// Default behavior: return empty slice
	return []model.Transaction{}, nil
}

// GetBalances implements Fetcher.GetBalances.
func (m *MockClient) GetBalances(ctx context.Context) ([]model.Account, error) {
	m.GetBalancesCalls++

	if m.GetBalancesFn != nil {
		return m.GetBalancesFn(ctx)
	}

	// Default behavior: return empty slice
	return []model.Account{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.GetTransactionsCalls = []GetTransactionsCall{}
	m.GetBalancesCalls = 0
}

// Ensure MockClient implements Fetcher interface.
var _ Fetcher = (*MockClient)(nil)
