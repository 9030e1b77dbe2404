package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
)

// SaveDebt creates or updates a debt record.
func (s *SQLiteStorage) SaveDebt(ctx context.Context, debt *model.Debt) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebt(debt); err != nil {
		return err
	}

	created := debt.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debts (
			id, user_id, name, debt_type, current_balance, monthly_payment,
			minimum_payment, apr, in_collections, origination_term_months, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			debt_type = excluded.debt_type,
			current_balance = excluded.current_balance,
			monthly_payment = excluded.monthly_payment,
			minimum_payment = excluded.minimum_payment,
			apr = excluded.apr,
			in_collections = excluded.in_collections,
			origination_term_months = excluded.origination_term_months
	`, debt.ID, debt.UserID, debt.Name, string(debt.Type), debt.CurrentBalance,
		nullFloat(debt.MonthlyPayment), nullFloat(debt.MinimumPayment), debt.APR,
		debt.InCollections, nullInt(debt.OriginationTermMonths), created.UTC())
	if err != nil {
		return fmt.Errorf("failed to save debt: %w", err)
	}
	return nil
}

// GetDebts returns all debts for a user, ordered by creation.
func (s *SQLiteStorage) GetDebts(ctx context.Context, userID string) ([]model.Debt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, debt_type, current_balance, monthly_payment,
			minimum_payment, apr, in_collections, origination_term_months, created_at
		FROM debts
		WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var debts []model.Debt
	for rows.Next() {
		var d model.Debt
		var debtType string
		var monthly, minimum sql.NullFloat64
		var term sql.NullInt64
		var created sql.NullTime
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Name, &debtType, &d.CurrentBalance, &monthly,
			&minimum, &d.APR, &d.InCollections, &term, &created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		d.Type = model.DebtType(debtType)
		d.MonthlyPayment = floatPtr(monthly)
		d.MinimumPayment = floatPtr(minimum)
		if term.Valid {
			v := int(term.Int64)
			d.OriginationTermMonths = &v
		}
		if created.Valid {
			d.CreatedAt = created.Time
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// SaveDebtPayment records a payment made toward a debt.
func (s *SQLiteStorage) SaveDebtPayment(ctx context.Context, payment *model.DebtPayment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebtPayment(payment); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debt_payments (id, debt_id, user_id, amount, paid_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			paid_at = excluded.paid_at
	`, payment.ID, payment.DebtID, payment.UserID, payment.Amount, payment.PaidAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save debt payment: %w", err)
	}
	return nil
}

// GetDebtPayments returns a user's debt payments made at or after since.
func (s *SQLiteStorage) GetDebtPayments(ctx context.Context, userID string, since time.Time) ([]model.DebtPayment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, debt_id, user_id, amount, paid_at
		FROM debt_payments
		WHERE user_id = ? AND paid_at >= ?
		ORDER BY paid_at DESC, id
	`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query debt payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payments []model.DebtPayment
	for rows.Next() {
		var p model.DebtPayment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.UserID, &p.Amount, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan debt payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
