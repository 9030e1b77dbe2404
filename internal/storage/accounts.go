package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
)

// SaveAccount creates or updates an account and its balance.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	updated := account.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, institution, account_type, balance, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			institution = excluded.institution,
			account_type = excluded.account_type,
			balance = excluded.balance,
			updated_at = excluded.updated_at
	`, account.ID, account.UserID, account.Name, account.Institution,
		string(account.Type), account.Balance, updated.UTC())
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccounts returns all accounts for a user.
func (s *SQLiteStorage) GetAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, institution, account_type, balance, updated_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var institution sql.NullString
		var accountType string
		var updated sql.NullTime
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &institution, &accountType, &a.Balance, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Institution = institution.String
		a.Type = model.AccountType(accountType)
		if updated.Valid {
			a.UpdatedAt = updated.Time
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
