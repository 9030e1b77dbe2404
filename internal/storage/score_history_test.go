package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/model"
)

func scoreRecord(userID, date string, total int) *model.ScoreHistoryRecord {
	return &model.ScoreHistoryRecord{
		UserID:             userID,
		ScoredDate:         date,
		Total:              total,
		Level:              3,
		LevelTitle:         "On Solid Ground",
		Trajectory:         total / 3,
		Behavior:           total / 3,
		Position:           total - 2*(total/3),
		WealthBuilding:     50,
		DebtVelocity:       60,
		PaymentConsistency: 170,
		BudgetDiscipline:   120,
		EmergencyBuffer:    80,
		DebtToIncome:       110,
	}
}

func TestUpsertScoreHistory_SameDayOverwrites(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := scoreRecord("u1", "2025-06-15", 600)
	require.NoError(t, store.UpsertScoreHistory(ctx, first))
	require.NotEmpty(t, first.ID)

	second := scoreRecord("u1", "2025-06-15", 640)
	require.NoError(t, store.UpsertScoreHistory(ctx, second))

	assert.Equal(t, first.ID, second.ID, "rescoring keeps the original row")
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	history, err := store.GetScoreHistory(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 640, history[0].Total)
	assert.Equal(t, "On Solid Ground", history[0].LevelTitle)
}

func TestScoreHistory_Ordering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for i, date := range []string{"2025-06-01", "2025-06-10", "2025-05-20", "2025-06-15"} {
		require.NoError(t, store.UpsertScoreHistory(ctx, scoreRecord("u1", date, 500+i*10)))
	}
	require.NoError(t, store.UpsertScoreHistory(ctx, scoreRecord("u2", "2025-06-16", 900)))

	history, err := store.GetScoreHistory(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2025-06-15", history[0].ScoredDate)
	assert.Equal(t, "2025-06-10", history[1].ScoredDate)
	assert.Equal(t, "2025-06-01", history[2].ScoredDate)

	latest, err := store.GetLatestScores(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 530, latest[0].Total)
	assert.Equal(t, 510, latest[1].Total)

	prev, err := store.GetPreviousScore(ctx, "u1", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", prev.ScoredDate)

	_, err = store.GetPreviousScore(ctx, "u1", "2025-05-20")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsertScoreHistory_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		record *model.ScoreHistoryRecord
		name   string
	}{
		{name: "bad date", record: scoreRecord("u1", "06/15/2025", 500)},
		{name: "total too high", record: scoreRecord("u1", "2025-06-15", 1001)},
		{name: "missing user", record: scoreRecord("", "2025-06-15", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.UpsertScoreHistory(ctx, tt.record), ErrInvalidScore)
		})
	}
}
