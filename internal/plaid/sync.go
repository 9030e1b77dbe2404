package plaid

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/model"
	"github.com/Veraticus/spice-health/internal/service"
)

// SyncResult summarizes one sync run.
type SyncResult struct {
	Accounts     int
	Transactions int
}

// Sync pulls balances and the transactions dated in [since, now] from fetcher
// and stores them for userID. Transactions already stored are skipped by hash.
func Sync(ctx context.Context, fetcher Fetcher, store service.RecordStore, userID string, since, now time.Time) (SyncResult, error) {
	var result SyncResult
	if userID == "" {
		return result, fmt.Errorf("user ID is required")
	}

	accounts, err := fetcher.GetBalances(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch balances: %w", err)
	}
	for i := range accounts {
		accounts[i].UserID = userID
		if accounts[i].Name == "" {
			accounts[i].Name = accounts[i].ID
		}
		if err := store.SaveAccount(ctx, &accounts[i]); err != nil {
			return result, fmt.Errorf("failed to save account %s: %w", accounts[i].ID, err)
		}
		result.Accounts++
	}

	transactions, err := fetcher.GetTransactions(ctx, since, now)
	if err != nil {
		return result, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	if len(transactions) == 0 {
		common.LogDebug("No new transactions", common.Fields{"user_id": userID})
		return result, nil
	}

	for i := range transactions {
		transactions[i].UserID = userID
		if transactions[i].Name == "" {
			transactions[i].Name = transactions[i].MerchantName
		}
		transactions[i].Hash = transactions[i].GenerateHash()
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return result, fmt.Errorf("failed to save transactions: %w", err)
	}
	result.Transactions = len(transactions)

	common.LogInfo("Synced bank data", common.Fields{
		"user_id":        userID,
		"accounts":       result.Accounts,
		"liquid_balance": liquidTotal(accounts),
		"transactions":   result.Transactions,
	})

	return result, nil
}

// liquidTotal sums the balances that count toward an emergency buffer.
func liquidTotal(accounts []model.Account) float64 {
	total := 0.0
	for _, a := range accounts {
		if a.Type.IsLiquid() && a.Balance > 0 {
			total += a.Balance
		}
	}
	return total
}
