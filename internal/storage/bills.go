package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-health/internal/model"
)

// SaveBillPayment creates or updates a bill payment.
func (s *SQLiteStorage) SaveBillPayment(ctx context.Context, bill *model.BillPayment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}

	var paid sql.NullTime
	if bill.PaidDate != nil {
		paid = sql.NullTime{Time: bill.PaidDate.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bill_payments (id, user_id, name, amount, due_date, paid_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			due_date = excluded.due_date,
			paid_date = excluded.paid_date,
			status = excluded.status
	`, bill.ID, bill.UserID, bill.Name, bill.Amount, bill.DueDate.UTC(), paid, string(bill.Status))
	if err != nil {
		return fmt.Errorf("failed to save bill payment: %w", err)
	}
	return nil
}

// GetBillPayments returns a user's bill payments due at or after since,
// newest first.
func (s *SQLiteStorage) GetBillPayments(ctx context.Context, userID string, since time.Time) ([]model.BillPayment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, amount, due_date, paid_date, status
		FROM bill_payments
		WHERE user_id = ? AND due_date >= ?
		ORDER BY due_date DESC, id
	`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query bill payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.BillPayment
	for rows.Next() {
		var b model.BillPayment
		var paid sql.NullTime
		var status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.DueDate, &paid, &status); err != nil {
			return nil, fmt.Errorf("failed to scan bill payment: %w", err)
		}
		b.Status = model.BillStatus(status)
		if paid.Valid {
			t := paid.Time
			b.PaidDate = &t
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
