package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/model"
)

const scoreColumns = `id, user_id, scored_date, total_score, level, level_title,
	trajectory_score, behavior_score, position_score,
	wealth_building_score, debt_velocity_score, payment_consistency_score,
	budget_discipline_score, emergency_buffer_score, debt_to_income_score,
	created_at, updated_at`

// UpsertScoreHistory writes the day's score for a user. A second write on the
// same ScoredDate replaces the scores but keeps the row's ID and CreatedAt.
// On return record carries the persisted ID and timestamps.
func (s *SQLiteStorage) UpsertScoreHistory(ctx context.Context, record *model.ScoreHistoryRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateScore(record); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertScore(ctx, tx, record, time.Now().UTC()); err != nil {
		return err
	}

	stored, err := getScore(ctx, tx, record.UserID, record.ScoredDate)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit score history: %w", err)
	}

	record.ID = stored.ID
	record.CreatedAt = stored.CreatedAt
	record.UpdatedAt = stored.UpdatedAt
	return nil
}

func upsertScore(ctx context.Context, q queryable, r *model.ScoreHistoryRecord, now time.Time) error {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO score_history (`+scoreColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, scored_date) DO UPDATE SET
			total_score = excluded.total_score,
			level = excluded.level,
			level_title = excluded.level_title,
			trajectory_score = excluded.trajectory_score,
			behavior_score = excluded.behavior_score,
			position_score = excluded.position_score,
			wealth_building_score = excluded.wealth_building_score,
			debt_velocity_score = excluded.debt_velocity_score,
			payment_consistency_score = excluded.payment_consistency_score,
			budget_discipline_score = excluded.budget_discipline_score,
			emergency_buffer_score = excluded.emergency_buffer_score,
			debt_to_income_score = excluded.debt_to_income_score,
			updated_at = excluded.updated_at
	`, id, r.UserID, r.ScoredDate, r.Total, r.Level, r.LevelTitle,
		r.Trajectory, r.Behavior, r.Position,
		r.WealthBuilding, r.DebtVelocity, r.PaymentConsistency,
		r.BudgetDiscipline, r.EmergencyBuffer, r.DebtToIncome,
		now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert score history: %w", err)
	}
	return nil
}

func getScore(ctx context.Context, q queryable, userID, scoredDate string) (*model.ScoreHistoryRecord, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+scoreColumns+`
		FROM score_history
		WHERE user_id = ? AND scored_date = ?
	`, userID, scoredDate)

	record, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("score for %s on %s: %w", userID, scoredDate, common.ErrNotFound)
	}
	return record, err
}

// GetScoreHistory returns up to limit of a user's scores, newest first. A
// non-positive limit returns every record.
func (s *SQLiteStorage) GetScoreHistory(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	return queryScores(ctx, s.db, `
		SELECT `+scoreColumns+`
		FROM score_history
		WHERE user_id = ?
		ORDER BY scored_date DESC
		LIMIT ?
	`, userID, limit)
}

// GetLatestScores returns the two most recent scores for a user, newest first.
func (s *SQLiteStorage) GetLatestScores(ctx context.Context, userID string) ([]model.ScoreHistoryRecord, error) {
	return s.GetScoreHistory(ctx, userID, 2)
}

// GetPreviousScore returns the most recent score dated strictly before
// beforeDate (YYYY-MM-DD), or common.ErrNotFound.
func (s *SQLiteStorage) GetPreviousScore(ctx context.Context, userID, beforeDate string) (*model.ScoreHistoryRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if !datePattern.MatchString(beforeDate) {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidScore, beforeDate)
	}

	records, err := queryScores(ctx, s.db, `
		SELECT `+scoreColumns+`
		FROM score_history
		WHERE user_id = ? AND scored_date < ?
		ORDER BY scored_date DESC
		LIMIT 1
	`, userID, beforeDate)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("score for %s before %s: %w", userID, beforeDate, common.ErrNotFound)
	}
	return &records[0], nil
}

func queryScores(ctx context.Context, q queryable, query string, args ...any) ([]model.ScoreHistoryRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ScoreHistoryRecord
	for rows.Next() {
		record, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScore(row scanner) (*model.ScoreHistoryRecord, error) {
	var r model.ScoreHistoryRecord
	err := row.Scan(
		&r.ID, &r.UserID, &r.ScoredDate, &r.Total, &r.Level, &r.LevelTitle,
		&r.Trajectory, &r.Behavior, &r.Position,
		&r.WealthBuilding, &r.DebtVelocity, &r.PaymentConsistency,
		&r.BudgetDiscipline, &r.EmergencyBuffer, &r.DebtToIncome,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan score history: %w", err)
	}
	return &r, nil
}
