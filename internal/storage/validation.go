// Package storage provides the data persistence layer for the spice application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-health/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidDebt        = errors.New("invalid debt")
	ErrInvalidBill        = errors.New("invalid bill payment")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidGoal        = errors.New("invalid savings goal")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrInvalidScore       = errors.New("invalid score record")
)

var (
	monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	datePattern  = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTransaction)
	}
	switch txn.Direction {
	case model.DirectionIncome, model.DirectionExpense, model.DirectionTransfer:
	default:
		return fmt.Errorf("%w: invalid direction %q", ErrInvalidTransaction, txn.Direction)
	}
	if txn.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidTransaction)
	}
	return nil
}

// validateDebt validates a debt record.
func validateDebt(debt *model.Debt) error {
	if debt == nil {
		return fmt.Errorf("%w: debt", ErrNilParameter)
	}
	if debt.ID == "" || debt.UserID == "" {
		return fmt.Errorf("%w: missing ID or user ID", ErrInvalidDebt)
	}
	if strings.TrimSpace(debt.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDebt)
	}
	if !debt.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDebt, debt.Type)
	}
	if debt.CurrentBalance < 0 {
		return fmt.Errorf("%w: balance must not be negative", ErrInvalidDebt)
	}
	if debt.OriginationTermMonths != nil && *debt.OriginationTermMonths <= 0 {
		return fmt.Errorf("%w: origination term must be positive", ErrInvalidDebt)
	}
	return nil
}

// validateDebtPayment validates a payment against a debt.
func validateDebtPayment(payment *model.DebtPayment) error {
	if payment == nil {
		return fmt.Errorf("%w: debt payment", ErrNilParameter)
	}
	if payment.ID == "" || payment.DebtID == "" || payment.UserID == "" {
		return fmt.Errorf("%w: payment missing ID, debt ID or user ID", ErrInvalidDebt)
	}
	if payment.PaidAt.IsZero() {
		return fmt.Errorf("%w: payment missing date", ErrInvalidDebt)
	}
	if payment.Amount < 0 {
		return fmt.Errorf("%w: payment amount must not be negative", ErrInvalidDebt)
	}
	return nil
}

// validateBill validates a bill payment.
func validateBill(bill *model.BillPayment) error {
	if bill == nil {
		return fmt.Errorf("%w: bill payment", ErrNilParameter)
	}
	if bill.ID == "" || bill.UserID == "" {
		return fmt.Errorf("%w: missing ID or user ID", ErrInvalidBill)
	}
	if bill.DueDate.IsZero() {
		return fmt.Errorf("%w: missing due date", ErrInvalidBill)
	}
	if !bill.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBill, bill.Status)
	}
	return nil
}

// validateBudget validates a monthly budget.
func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if budget.UserID == "" || strings.TrimSpace(budget.Category) == "" {
		return fmt.Errorf("%w: missing user ID or category", ErrInvalidBudget)
	}
	if !monthPattern.MatchString(budget.Month) {
		return fmt.Errorf("%w: month %q must be YYYY-MM", ErrInvalidBudget, budget.Month)
	}
	if budget.Budgeted < 0 {
		return fmt.Errorf("%w: budgeted amount must not be negative", ErrInvalidBudget)
	}
	return nil
}

// validateAccount validates a bank account.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.ID == "" || account.UserID == "" {
		return fmt.Errorf("%w: missing ID or user ID", ErrInvalidAccount)
	}
	if account.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidAccount)
	}
	return nil
}

// validateGoal validates a savings goal.
func validateGoal(goal *model.SavingsGoal) error {
	if goal == nil {
		return fmt.Errorf("%w: savings goal", ErrNilParameter)
	}
	if goal.ID == "" || goal.UserID == "" {
		return fmt.Errorf("%w: missing ID or user ID", ErrInvalidGoal)
	}
	if goal.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidGoal)
	}
	if goal.CurrentAmount < 0 || goal.TargetAmount < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidGoal)
	}
	return nil
}

// validateContribution validates a wealth-building contribution.
func validateContribution(c *model.Contribution) error {
	if c == nil {
		return fmt.Errorf("%w: contribution", ErrNilParameter)
	}
	if c.ID == "" || c.UserID == "" {
		return fmt.Errorf("%w: contribution missing ID or user ID", ErrInvalidGoal)
	}
	if !c.Kind.IsValid() {
		return fmt.Errorf("%w: unknown contribution kind %q", ErrInvalidGoal, c.Kind)
	}
	if c.Date.IsZero() {
		return fmt.Errorf("%w: contribution missing date", ErrInvalidGoal)
	}
	return nil
}

// validateProfile validates a user profile.
func validateProfile(profile *model.UserProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if profile.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidProfile)
	}
	if !profile.HouseholdType.IsValid() {
		return fmt.Errorf("%w: unknown household type %q", ErrInvalidProfile, profile.HouseholdType)
	}
	return nil
}

// validateScore validates a score history record.
func validateScore(record *model.ScoreHistoryRecord) error {
	if record == nil {
		return fmt.Errorf("%w: score record", ErrNilParameter)
	}
	if record.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidScore)
	}
	if !datePattern.MatchString(record.ScoredDate) {
		return fmt.Errorf("%w: scored date %q must be YYYY-MM-DD", ErrInvalidScore, record.ScoredDate)
	}
	if record.Total < 0 || record.Total > 1000 {
		return fmt.Errorf("%w: total %d outside 0-1000", ErrInvalidScore, record.Total)
	}
	if record.Level < 0 || record.Level > 5 {
		return fmt.Errorf("%w: level %d outside 0-5", ErrInvalidScore, record.Level)
	}
	return nil
}
