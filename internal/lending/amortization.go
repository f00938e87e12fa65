package lending

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// InstallmentInterval is the fixed spacing between due dates. Schedules are
// not calendar-month aware: installment n is due n*30 days after origination.
const InstallmentInterval = 30 * 24 * time.Hour

// MonthlyPayment computes the fixed annuity payment
//
//	r = annualRate / 12
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// rounded to cents. A zero rate splits the principal evenly.
func MonthlyPayment(principal decimal.Decimal, annualRate float64, months int) decimal.Decimal {
	if months <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}
	r := annualRate / 12
	if r == 0 {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(2)
	}
	factor := math.Pow(1+r, float64(months))
	payment := principal.InexactFloat64() * r * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// GenerateSchedule builds the fixed-payment amortization schedule starting
// from origination. The final installment takes whatever principal remains
// so the balance lands on exactly zero.
func GenerateSchedule(principal decimal.Decimal, annualRate float64, months int, origination time.Time) []models.Installment {
	if months <= 0 || !principal.IsPositive() || annualRate < 0 {
		return nil
	}

	payment := MonthlyPayment(principal, annualRate, months)
	rate := decimal.NewFromFloat(annualRate / 12)
	remaining := principal
	schedule := make([]models.Installment, 0, months)

	for n := 1; n <= months; n++ {
		interest := remaining.Mul(rate).Round(2)
		principalPart := payment.Sub(interest)
		if n == months || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}

		remaining = remaining.Sub(principalPart)
		schedule = append(schedule, models.Installment{
			Number:           n,
			DueDate:          origination.Add(time.Duration(n) * InstallmentInterval),
			PrincipalPayment: principalPart,
			InterestPayment:  interest,
			TotalPayment:     principalPart.Add(interest),
			RemainingBalance: remaining,
		})
	}
	return schedule
}

// PrincipalRepaid is the principal retired once paid has been applied to
// the schedule in order. Within an installment interest is settled before
// principal.
func PrincipalRepaid(schedule []models.Installment, paid decimal.Decimal) decimal.Decimal {
	repaid := decimal.Zero
	for _, inst := range schedule {
		if !paid.IsPositive() {
			break
		}
		if paid.GreaterThanOrEqual(inst.TotalPayment) {
			repaid = repaid.Add(inst.PrincipalPayment)
			paid = paid.Sub(inst.TotalPayment)
			continue
		}
		if paid.GreaterThan(inst.InterestPayment) {
			repaid = repaid.Add(paid.Sub(inst.InterestPayment))
		}
		break
	}
	return repaid
}
