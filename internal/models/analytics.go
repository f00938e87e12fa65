package models

// IncomeStats summarizes a worker's payroll history
type IncomeStats struct {
	AverageMonthlyIncome float64 `json:"averageMonthlyIncome"`
	IncomeStability      float64 `json:"incomeStability"`
	RecordCount          int     `json:"recordCount"`
}

// BehaviorScores are the [0,1] behavioral sub-scores
type BehaviorScores struct {
	Production float64 `json:"productionScore"`
	Attendance float64 `json:"attendanceScore"`
	Savings    float64 `json:"savingsScore"`
}

// ScoreBreakdown shows how a credit score was assembled
type ScoreBreakdown struct {
	IncomeStats
	BehaviorScores
	IncomePoints     float64 `json:"incomePoints"`
	StabilityPoints  float64 `json:"stabilityPoints"`
	ProductionPoints float64 `json:"productionPoints"`
	AttendancePoints float64 `json:"attendancePoints"`
	SavingsPoints    float64 `json:"savingsPoints"`
	RawScore         float64 `json:"rawScore"`
}
