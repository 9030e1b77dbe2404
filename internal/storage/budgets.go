package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-health/internal/model"
)

// SaveBudget sets the budgeted amount for a user's category in a month.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category, month, budgeted)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, category, month) DO UPDATE SET
			budgeted = excluded.budgeted
	`, budget.UserID, strings.TrimSpace(budget.Category), budget.Month, budget.Budgeted)
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// GetBudgets returns a user's budgets for month (YYYY-MM). Spent is the sum of
// that month's expense transactions in the budget's category, matched without
// regard to case.
func (s *SQLiteStorage) GetBudgets(ctx context.Context, userID, month string) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if !monthPattern.MatchString(month) {
		return nil, fmt.Errorf("%w: month %q must be YYYY-MM", ErrInvalidBudget, month)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.user_id, b.category, b.month, b.budgeted,
			COALESCE((
				SELECT SUM(t.amount)
				FROM transactions t
				WHERE t.user_id = b.user_id
					AND t.direction = ?
					AND LOWER(TRIM(t.category)) = LOWER(b.category)
					AND substr(t.date, 1, 7) = b.month
			), 0) AS spent
		FROM budgets b
		WHERE b.user_id = ? AND b.month = ?
		ORDER BY b.category
	`, string(model.DirectionExpense), userID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.UserID, &b.Category, &b.Month, &b.Budgeted, &b.Spent); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
