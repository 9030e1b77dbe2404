package model

import "time"

// BillStatus describes how a bill payment was settled.
type BillStatus string

// Bill payment statuses. LateSixtyOnePlus is a legacy value still present in
// older databases.
const (
	BillOnTime           BillStatus = "on_time"
	BillLate1To30        BillStatus = "late_1_30"
	BillLate31To60       BillStatus = "late_31_60"
	BillLate61To90       BillStatus = "late_61_90"
	BillLateSixtyOnePlus BillStatus = "late_61_plus"
	BillLate91To120      BillStatus = "late_91_120"
	BillLate120Plus      BillStatus = "late_120_plus"
	BillMissed           BillStatus = "missed"
)

// IsValid reports whether s is a recognized status.
func (s BillStatus) IsValid() bool {
	switch s {
	case BillOnTime, BillLate1To30, BillLate31To60, BillLate61To90,
		BillLateSixtyOnePlus, BillLate91To120, BillLate120Plus, BillMissed:
		return true
	}
	return false
}

// BillPayment is one bill cycle and how it was paid.
type BillPayment struct {
	DueDate  time.Time
	PaidDate *time.Time
	ID       string
	UserID   string
	Name     string
	Status   BillStatus
	Amount   float64
}
