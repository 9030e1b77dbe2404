package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/model"
)

// SaveProfile creates or replaces a user profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, name, monthly_income, household_type, no_debt_confirmed, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			monthly_income = excluded.monthly_income,
			household_type = excluded.household_type,
			no_debt_confirmed = excluded.no_debt_confirmed,
			updated_at = CURRENT_TIMESTAMP
	`, profile.UserID, profile.Name, nullFloat(profile.MonthlyIncome), string(profile.HouseholdType), profile.NoDebtConfirmed)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns the profile for a user or common.ErrNotFound.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var profile model.UserProfile
	var name, household sql.NullString
	var income sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, monthly_income, household_type, no_debt_confirmed
		FROM user_profiles
		WHERE user_id = ?
	`, userID).Scan(&profile.UserID, &name, &income, &household, &profile.NoDebtConfirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Name = name.String
	profile.HouseholdType = model.HouseholdType(household.String)
	profile.MonthlyIncome = floatPtr(income)
	return &profile, nil
}

// ListUserIDs returns every user that has a profile or any debt, bill or
// transaction on record.
func (s *SQLiteStorage) ListUserIDs(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM user_profiles
		UNION SELECT user_id FROM debts
		UNION SELECT user_id FROM bill_payments
		UNION SELECT user_id FROM transactions
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
