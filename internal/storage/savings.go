package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
)

// SaveSavingsGoal creates or updates a savings goal.
func (s *SQLiteStorage) SaveSavingsGoal(ctx context.Context, goal *model.SavingsGoal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO savings_goals (id, user_id, name, goal_type, target_amount, current_amount)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			goal_type = excluded.goal_type,
			target_amount = excluded.target_amount,
			current_amount = excluded.current_amount
	`, goal.ID, goal.UserID, goal.Name, string(goal.Type), goal.TargetAmount, goal.CurrentAmount)
	if err != nil {
		return fmt.Errorf("failed to save savings goal: %w", err)
	}
	return nil
}

// GetSavingsGoals returns all savings goals for a user.
func (s *SQLiteStorage) GetSavingsGoals(ctx context.Context, userID string) ([]model.SavingsGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, goal_type, target_amount, current_amount
		FROM savings_goals
		WHERE user_id = ?
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query savings goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.SavingsGoal
	for rows.Next() {
		var g model.SavingsGoal
		var goalType string
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &goalType, &g.TargetAmount, &g.CurrentAmount); err != nil {
			return nil, fmt.Errorf("failed to scan savings goal: %w", err)
		}
		g.Type = model.GoalType(goalType)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// SaveContribution records a wealth-building contribution.
func (s *SQLiteStorage) SaveContribution(ctx context.Context, contribution *model.Contribution) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateContribution(contribution); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contributions (id, user_id, kind, amount, date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			amount = excluded.amount,
			date = excluded.date
	`, contribution.ID, contribution.UserID, string(contribution.Kind),
		contribution.Amount, contribution.Date.UTC())
	if err != nil {
		return fmt.Errorf("failed to save contribution: %w", err)
	}
	return nil
}

// GetContributions returns a user's contributions dated at or after since.
func (s *SQLiteStorage) GetContributions(ctx context.Context, userID string, since time.Time) ([]model.Contribution, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount, date
		FROM contributions
		WHERE user_id = ? AND date >= ?
		ORDER BY date DESC, id
	`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contributions []model.Contribution
	for rows.Next() {
		var c model.Contribution
		var kind string
		if err := rows.Scan(&c.ID, &c.UserID, &kind, &c.Amount, &c.Date); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.Kind = model.ContributionKind(kind)
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}
