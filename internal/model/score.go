package model

import "time"

// ScoreDateLayout is the calendar-day key used for score history rows.
const ScoreDateLayout = "2006-01-02"

// ScoreHistoryRecord is one day's persisted Financial Health Score. There is
// at most one record per user per ScoredDate.
type ScoreHistoryRecord struct {
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ID                 string
	UserID             string
	ScoredDate         string
	LevelTitle         string
	Total              int
	Level              int
	Trajectory         int
	Behavior           int
	Position           int
	WealthBuilding     int
	DebtVelocity       int
	PaymentConsistency int
	BudgetDiscipline   int
	EmergencyBuffer    int
	DebtToIncome       int
}
