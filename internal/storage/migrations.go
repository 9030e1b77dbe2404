package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS user_profiles (
					user_id TEXT PRIMARY KEY,
					name TEXT,
					monthly_income REAL,
					household_type TEXT,
					no_debt_confirmed BOOLEAN DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					institution TEXT,
					account_type TEXT NOT NULL,
					balance REAL NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_accounts_user ON accounts(user_id)`,

				`CREATE TABLE IF NOT EXISTS debts (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					debt_type TEXT NOT NULL,
					current_balance REAL NOT NULL CHECK (current_balance >= 0),
					monthly_payment REAL,
					minimum_payment REAL,
					apr REAL NOT NULL DEFAULT 0,
					in_collections BOOLEAN DEFAULT 0,
					origination_term_months INTEGER,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_debts_user ON debts(user_id)`,

				`CREATE TABLE IF NOT EXISTS debt_payments (
					id TEXT PRIMARY KEY,
					debt_id TEXT NOT NULL,
					user_id TEXT NOT NULL,
					amount REAL NOT NULL,
					paid_at DATETIME NOT NULL,
					FOREIGN KEY (debt_id) REFERENCES debts(id)
				)`,
				`CREATE INDEX idx_debt_payments_user_date ON debt_payments(user_id, paid_at)`,

				`CREATE TABLE IF NOT EXISTS bill_payments (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					amount REAL NOT NULL DEFAULT 0,
					due_date DATETIME NOT NULL,
					paid_date DATETIME,
					status TEXT NOT NULL
				)`,
				`CREATE INDEX idx_bill_payments_user_due ON bill_payments(user_id, due_date)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add transactions and budgets",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					user_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					name TEXT NOT NULL,
					merchant_name TEXT,
					amount REAL NOT NULL,
					category TEXT,
					direction TEXT NOT NULL,
					account_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date)`,
				`CREATE INDEX idx_transactions_category ON transactions(user_id, category)`,

				`CREATE TABLE IF NOT EXISTS budgets (
					user_id TEXT NOT NULL,
					category TEXT NOT NULL,
					month TEXT NOT NULL,
					budgeted REAL NOT NULL DEFAULT 0,
					PRIMARY KEY (user_id, category, month)
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add savings goals and contributions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS savings_goals (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					goal_type TEXT NOT NULL,
					target_amount REAL NOT NULL DEFAULT 0,
					current_amount REAL NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_savings_goals_user ON savings_goals(user_id)`,

				`CREATE TABLE IF NOT EXISTS contributions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					kind TEXT NOT NULL,
					amount REAL NOT NULL,
					date DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_contributions_user_date ON contributions(user_id, date)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Add score history",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				// One row per user per calendar day; rescoring overwrites.
				`CREATE TABLE IF NOT EXISTS score_history (
					id TEXT NOT NULL UNIQUE,
					user_id TEXT NOT NULL,
					scored_date TEXT NOT NULL,
					total_score INTEGER NOT NULL,
					level INTEGER NOT NULL,
					level_title TEXT NOT NULL,
					trajectory_score INTEGER NOT NULL,
					behavior_score INTEGER NOT NULL,
					position_score INTEGER NOT NULL,
					wealth_building_score INTEGER NOT NULL,
					debt_velocity_score INTEGER NOT NULL,
					payment_consistency_score INTEGER NOT NULL,
					budget_discipline_score INTEGER NOT NULL,
					emergency_buffer_score INTEGER NOT NULL,
					debt_to_income_score INTEGER NOT NULL,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					PRIMARY KEY (user_id, scored_date)
				)`,
			})
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
