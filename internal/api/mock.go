package api

import (
	"context"

	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/model"
)

// MockScorer is a mock implementation of Scorer for testing.
type MockScorer struct {
	PreviewFn func(ctx context.Context, userID string) (health.Result, error)
	ScoreFn   func(ctx context.Context, userID string) (health.Result, error)
	HistoryFn func(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryRecord, error)

	// Call tracking
	ScoreCalls   []string
	HistoryCalls []HistoryCall
}

// HistoryCall records the parameters of a History call.
type HistoryCall struct {
	UserID string
	Limit  int
}

// Preview implements Scorer.Preview.
func (m *MockScorer) Preview(ctx context.Context, userID string) (health.Result, error) {
	if m.PreviewFn != nil {
		return m.PreviewFn(ctx, userID)
	}
	return health.Result{}, nil
}

// Score implements Scorer.Score.
func (m *MockScorer) Score(ctx context.Context, userID string) (health.Result, error) {
	m.ScoreCalls = append(m.ScoreCalls, userID)
	if m.ScoreFn != nil {
		return m.ScoreFn(ctx, userID)
	}
	return health.Result{}, nil
}

// History implements Scorer.History.
func (m *MockScorer) History(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryRecord, error) {
	m.HistoryCalls = append(m.HistoryCalls, HistoryCall{UserID: userID, Limit: limit})
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, userID, limit)
	}
	return []model.ScoreHistoryRecord{}, nil
}

// Ensure MockScorer implements Scorer interface.
var _ Scorer = (*MockScorer)(nil)
