package scoring

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

const (
	neutralScore         = 0.5
	attendanceWindow     = 90 * 24 * time.Hour
	workingDaysPerPeriod = 22
	savingsTargetMonths  = 3
)

// ProductionScore averages (productivity+quality)/2 over all records.
// No records is neutral, not penalized.
func ProductionScore(records []models.ProductionRecord) float64 {
	if len(records) == 0 {
		return neutralScore
	}
	var sum float64
	for _, r := range records {
		sum += (r.ProductivityScore + r.QualityScore) / 2
	}
	return sum / float64(len(records))
}

// AttendanceScore is days worked in the last 90 days over the standard
// working days of those pay periods, capped at 1.
func AttendanceScore(records []models.PayrollRecord, now time.Time) float64 {
	cutoff := now.Add(-attendanceWindow)
	var days, n int
	for _, r := range records {
		if r.Timestamp.Before(cutoff) || r.Timestamp.After(now) {
			continue
		}
		days += r.DaysWorked
		n++
	}
	if n == 0 {
		return neutralScore
	}
	return math.Min(1, float64(days)/float64(n*workingDaysPerPeriod))
}

// SavingsScore is the fraction of a three-month income savings target held.
func SavingsScore(balance decimal.Decimal, averageMonthlyIncome float64) float64 {
	if averageMonthlyIncome <= 0 {
		return 0
	}
	ratio := balance.InexactFloat64() / (averageMonthlyIncome * savingsTargetMonths)
	return clamp(ratio, 0, 1)
}
