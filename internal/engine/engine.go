// Package engine assembles stored records into scores and keeps the score
// history up to date.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/model"
	"github.com/Veraticus/spice-health/internal/service"
	"github.com/Veraticus/spice-health/internal/storage"
)

// ScoreEngine computes Financial Health Scores and records them.
type ScoreEngine struct {
	store     Store
	assembler *Assembler
	now       func() time.Time
	logger    *slog.Logger
	locks     map[string]*userLock
	retryOpts service.RetryOptions
	policy    health.Policy
	mu        sync.Mutex
}

// Option configures a ScoreEngine.
type Option func(*ScoreEngine)

// WithClock replaces time.Now as the engine's notion of the current time.
func WithClock(now func() time.Time) Option {
	return func(e *ScoreEngine) { e.now = now }
}

// WithRetryOptions sets the retry behavior for history writes.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(e *ScoreEngine) { e.retryOpts = opts }
}

// New creates a score engine over store using policy.
func New(store Store, policy health.Policy, opts ...Option) *ScoreEngine {
	e := &ScoreEngine{
		store:     store,
		assembler: NewAssembler(store, policy.LatePaymentWindowMonths),
		policy:    policy,
		now:       time.Now,
		logger:    common.Component("engine"),
		locks:     make(map[string]*userLock),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
			Multiplier:   2.0,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the policy scores are computed with.
func (e *ScoreEngine) Policy() health.Policy {
	return e.policy
}

// Preview computes the user's current score without recording it.
func (e *ScoreEngine) Preview(ctx context.Context, userID string) (health.Result, error) {
	now := e.now()
	in, err := e.assembler.Assemble(ctx, userID, now)
	if err != nil {
		return health.Result{}, err
	}

	result := health.Compute(in, e.policy)
	result.PreviousScore = e.previousScore(ctx, userID, now)
	return result, nil
}

// Score computes the user's current score and records it as today's history
// row, replacing any earlier score from the same day. A failed history write
// is logged and the score is still returned.
func (e *ScoreEngine) Score(ctx context.Context, userID string) (health.Result, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	now := e.now()
	in, err := e.assembler.Assemble(ctx, userID, now)
	if err != nil {
		return health.Result{}, err
	}

	result := health.Compute(in, e.policy)
	result.PreviousScore = e.previousScore(ctx, userID, now)

	record := RecordFromResult(userID, now, result)
	err = common.WithRetry(ctx, func() error {
		upsertErr := e.store.UpsertScoreHistory(ctx, &record)
		if errors.Is(upsertErr, storage.ErrInvalidScore) {
			return common.Permanent(upsertErr)
		}
		return upsertErr
	}, e.retryOpts)
	if err != nil {
		common.LogError(fmt.Errorf("%w: %w", common.ErrScorePersistence, err), "Failed to record score history", common.Fields{
			"user_id": userID,
			"date":    record.ScoredDate,
			"total":   result.Total,
		})
		return result, nil
	}

	e.logger.Info("Scored user",
		"user_id", userID,
		"total", result.Total,
		"level", result.Level,
		"missing", result.Completeness.Missing())
	return result, nil
}

// History returns up to limit recorded scores for userID, newest first. A
// user with no stored data at all yields common.ErrUnknownUser; a known user
// who has never been scored gets an empty list.
func (e *ScoreEngine) History(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryRecord, error) {
	records, err := e.store.GetScoreHistory(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load score history: %w", err)
	}
	if len(records) > 0 {
		return records, nil
	}

	userIDs, err := e.Users(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(userIDs, userID) {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownUser, userID)
	}
	return records, nil
}

// Users lists every user that has any stored data.
func (e *ScoreEngine) Users(ctx context.Context) ([]string, error) {
	userIDs, err := e.store.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return userIDs, nil
}

// ScoreAllReport summarizes a ScoreAll run.
type ScoreAllReport struct {
	Failed map[string]error
	Scored int
}

// ScoreAll scores every known user in turn. progress, when set, is called
// after each user. Errors for individual users are collected in the report;
// only a failure to list users or a cancelled context aborts the run.
func (e *ScoreEngine) ScoreAll(ctx context.Context, progress func(userID string, result health.Result, err error)) (ScoreAllReport, error) {
	report := ScoreAllReport{Failed: make(map[string]error)}

	userIDs, err := e.Users(ctx)
	if err != nil {
		return report, err
	}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, scoreErr := e.Score(ctx, userID)
		if scoreErr != nil {
			report.Failed[userID] = scoreErr
			e.logger.Warn("Failed to score user", "user_id", userID, "error", scoreErr)
		} else {
			report.Scored++
		}
		if progress != nil {
			progress(userID, result, scoreErr)
		}
	}

	return report, nil
}

// previousScore returns the latest total recorded before today. Lookup
// failures are treated as no history.
func (e *ScoreEngine) previousScore(ctx context.Context, userID string, now time.Time) *int {
	prev, err := e.store.GetPreviousScore(ctx, userID, now.Format(model.ScoreDateLayout))
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			e.logger.Warn("Failed to load previous score", "user_id", userID, "error", err)
		}
		return nil
	}
	total := prev.Total
	return &total
}

// userLock serializes scoring for one user. refs counts holders and waiters
// so the entry can be dropped once nobody needs it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// lockUser blocks until userID's lock is held and returns its release func.
func (e *ScoreEngine) lockUser(userID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[userID]
	if !ok {
		lock = &userLock{}
		e.locks[userID] = lock
	}
	lock.refs++
	e.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		e.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(e.locks, userID)
		}
		e.mu.Unlock()
	}
}

// RecordFromResult flattens a result into the history row for the day of now.
func RecordFromResult(userID string, now time.Time, r health.Result) model.ScoreHistoryRecord {
	record := model.ScoreHistoryRecord{
		UserID:     userID,
		ScoredDate: now.Format(model.ScoreDateLayout),
		Total:      r.Total,
		Level:      r.Level,
		LevelTitle: r.LevelTitle,
		Trajectory: r.Trajectory.Score,
		Behavior:   r.Behavior.Score,
		Position:   r.Position.Score,
	}
	for _, f := range r.SubFactors() {
		switch f.Name {
		case health.FactorWealthBuilding:
			record.WealthBuilding = f.Score
		case health.FactorDebtVelocity:
			record.DebtVelocity = f.Score
		case health.FactorPaymentConsistency:
			record.PaymentConsistency = f.Score
		case health.FactorBudgetDiscipline:
			record.BudgetDiscipline = f.Score
		case health.FactorEmergencyBuffer:
			record.EmergencyBuffer = f.Score
		case health.FactorDebtToIncome:
			record.DebtToIncome = f.Score
		}
	}
	return record
}
