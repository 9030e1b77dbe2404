package model

// GoalType categorizes a savings goal.
type GoalType string

// Savings goal types.
const (
	GoalEmergency  GoalType = "emergency"
	GoalGeneral    GoalType = "general"
	GoalCustom     GoalType = "custom"
	GoalHSA        GoalType = "hsa"
	GoalRetirement GoalType = "retirement"
	GoalVacation   GoalType = "vacation"
	GoalHome       GoalType = "home"
	GoalEducation  GoalType = "education"
)

// IsLiquid reports whether money in goals of this type can cover an emergency.
func (t GoalType) IsLiquid() bool {
	switch t {
	case GoalEmergency, GoalGeneral, GoalCustom, GoalHSA:
		return true
	}
	return false
}

// SavingsGoal is money set aside toward a target.
type SavingsGoal struct {
	ID            string
	UserID        string
	Name          string
	Type          GoalType
	TargetAmount  float64
	CurrentAmount float64
}
