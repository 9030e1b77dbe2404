package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionDirection indicates whether money entered or left an account.
type TransactionDirection string

const (
	// DirectionIncome is money coming in (paychecks, refunds, interest).
	DirectionIncome TransactionDirection = "income"
	// DirectionExpense is money going out.
	DirectionExpense TransactionDirection = "expense"
	// DirectionTransfer moves money between the user's own accounts.
	DirectionTransfer TransactionDirection = "transfer"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date         time.Time
	ID           string
	UserID       string
	Name         string // Raw transaction description
	MerchantName string // Cleaned merchant name
	AccountID    string
	Hash         string
	Category     string // Budget category the spend counts against
	Direction    TransactionDirection
	Amount       float64 // Always positive; Direction carries the sign
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s",
		t.UserID,
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
