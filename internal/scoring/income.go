// Package scoring turns payroll and production history into a credit score.
// Every function here is pure: callers pass the full record set and the
// current time, and get a fresh result.
package scoring

import (
	"math"
	"time"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

const (
	// minStabilityRecords is the history length below which stability is not measured.
	minStabilityRecords = 3
	// defaultStability reflects insufficient history, not volatility.
	defaultStability = 0.2
)

// AverageMonthlyIncome is the mean gross pay over records whose timestamp
// falls in now's calendar month, or 0 when there are none.
func AverageMonthlyIncome(records []models.PayrollRecord, now time.Time) float64 {
	var sum float64
	var n int
	for _, r := range records {
		ts := r.Timestamp.In(now.Location())
		if ts.Year() == now.Year() && ts.Month() == now.Month() {
			sum += r.GrossPay.InexactFloat64()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// IncomeStability is clamp(1 - cv, 0, 1) where cv is the coefficient of
// variation (population stddev / mean) of gross pay across all records.
func IncomeStability(records []models.PayrollRecord) float64 {
	if len(records) < minStabilityRecords {
		return defaultStability
	}
	var sum float64
	for _, r := range records {
		sum += r.GrossPay.InexactFloat64()
	}
	mean := sum / float64(len(records))

	var sq float64
	for _, r := range records {
		d := r.GrossPay.InexactFloat64() - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(records)))

	var cv float64
	if mean != 0 {
		cv = stddev / mean
	}
	return clamp(1-cv, 0, 1)
}

// ComputeIncomeStats bundles both income statistics.
func ComputeIncomeStats(records []models.PayrollRecord, now time.Time) models.IncomeStats {
	return models.IncomeStats{
		AverageMonthlyIncome: AverageMonthlyIncome(records, now),
		IncomeStability:      IncomeStability(records),
		RecordCount:          len(records),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
