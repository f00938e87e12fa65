package scoring

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// Component weights, in score points for a sub-score of 1.
const (
	incomePointsPerThousand = 10
	maxIncomePoints         = 100
	stabilityWeight         = 50
	productionWeight        = 100
	attendanceWeight        = 75
	savingsWeight           = 75
)

// Input is the full history the aggregator recomputes from.
type Input struct {
	Payroll        []models.PayrollRecord
	Production     []models.ProductionRecord
	SavingsBalance decimal.Decimal
	Now            time.Time
}

// Score computes the credit score and the breakdown that produced it.
func Score(in Input) (int, models.ScoreBreakdown) {
	stats := ComputeIncomeStats(in.Payroll, in.Now)
	behavior := models.BehaviorScores{
		Production: ProductionScore(in.Production),
		Attendance: AttendanceScore(in.Payroll, in.Now),
		Savings:    SavingsScore(in.SavingsBalance, stats.AverageMonthlyIncome),
	}

	b := models.ScoreBreakdown{
		IncomeStats:      stats,
		BehaviorScores:   behavior,
		IncomePoints:     math.Min(stats.AverageMonthlyIncome/1000*incomePointsPerThousand, maxIncomePoints),
		StabilityPoints:  stats.IncomeStability * stabilityWeight,
		ProductionPoints: behavior.Production * productionWeight,
		AttendancePoints: behavior.Attendance * attendanceWeight,
		SavingsPoints:    behavior.Savings * savingsWeight,
	}
	b.RawScore = models.MinCreditScore + b.IncomePoints + b.StabilityPoints +
		b.ProductionPoints + b.AttendancePoints + b.SavingsPoints

	return ClampScore(b.RawScore), b
}

// ClampScore rounds a raw score and bounds it to [300, 850].
func ClampScore(raw float64) int {
	if math.IsNaN(raw) {
		return models.MinCreditScore
	}
	s := math.Round(raw)
	if s > models.MaxCreditScore {
		return models.MaxCreditScore
	}
	if s < models.MinCreditScore {
		return models.MinCreditScore
	}
	return int(s)
}

// RiskTierFor bands a score. Lower bounds are inclusive.
func RiskTierFor(score int) models.RiskTier {
	switch {
	case score >= 700:
		return models.RiskLow
	case score >= 600:
		return models.RiskMedium
	case score >= 500:
		return models.RiskMediumHigh
	default:
		return models.RiskHigh
	}
}

// Recalculate replaces the scored fields of profile from the full history.
// Debt and payment history are left as they are.
func Recalculate(profile models.CreditProfile, in Input) models.CreditProfile {
	score, breakdown := Score(in)
	out := profile.Clone()
	out.CreditScore = score
	out.RiskTier = RiskTierFor(score)
	out.AverageMonthlyIncome = breakdown.AverageMonthlyIncome
	out.IncomeStability = breakdown.IncomeStability
	out.Breakdown = &breakdown
	out.UpdatedAt = in.Now
	return out
}
