package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEmploymentMonths(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		now   time.Time
		want  int
	}{
		{"same day", date(2025, 3, 10), date(2025, 3, 10), 0},
		{"partial month", date(2025, 3, 10), date(2025, 4, 9), 0},
		{"whole month", date(2025, 3, 10), date(2025, 4, 10), 1},
		{"across year", date(2024, 11, 30), date(2025, 2, 28), 2},
		{"future start", date(2026, 1, 1), date(2025, 1, 1), 0},
		{"three months", date(2025, 1, 1), date(2025, 4, 1), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Worker{StartDate: tt.start}
			assert.Equal(t, tt.want, w.EmploymentMonths(tt.now))
		})
	}
}

func TestPayrollRecordValidate(t *testing.T) {
	valid := PayrollRecord{
		WorkerID:   "w-1",
		PayPeriod:  "2025-06",
		GrossPay:   decimal.NewFromInt(20000),
		NetPay:     decimal.NewFromInt(18000),
		DaysWorked: 22,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*PayrollRecord)
	}{
		{"no worker", func(p *PayrollRecord) { p.WorkerID = "" }},
		{"no period", func(p *PayrollRecord) { p.PayPeriod = "" }},
		{"negative gross", func(p *PayrollRecord) { p.GrossPay = decimal.NewFromInt(-1) }},
		{"negative net", func(p *PayrollRecord) { p.NetPay = decimal.NewFromInt(-1) }},
		{"net above gross", func(p *PayrollRecord) { p.NetPay = decimal.NewFromInt(25000) }},
		{"too many days", func(p *PayrollRecord) { p.DaysWorked = 32 }},
		{"fractional cents", func(p *PayrollRecord) { p.GrossPay = decimal.RequireFromString("20000.001") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.modify(&rec)
			assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)
		})
	}
}

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		amount string
		ok     bool
	}{
		{"0.01", true},
		{"1500", true},
		{"1500.50", true},
		{"1500.500", true},
		{"0", false},
		{"-1", false},
		{"0.0001", false},
		{"10.005", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := CheckAmount(decimal.RequireFromString(tt.amount), "deposit")
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestProductionRecordValidate(t *testing.T) {
	rec := ProductionRecord{WorkerID: "w-1", Task: "harvest", ProductivityScore: 1, QualityScore: 0}
	assert.NoError(t, rec.Validate())

	rec.QualityScore = 1.2
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)

	rec.QualityScore = 0.5
	rec.Task = ""
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)
}

func TestLoanNextInstallment(t *testing.T) {
	loan := Loan{
		Schedule: []Installment{
			{Number: 1, TotalPayment: decimal.NewFromInt(100)},
			{Number: 2, TotalPayment: decimal.NewFromInt(100)},
		},
		AmountPaid: decimal.Zero,
	}

	next, ok := loan.NextInstallment()
	assert.True(t, ok)
	assert.Equal(t, 1, next.Number)

	loan.AmountPaid = decimal.NewFromInt(100)
	next, ok = loan.NextInstallment()
	assert.True(t, ok)
	assert.Equal(t, 2, next.Number)

	loan.AmountPaid = decimal.NewFromInt(200)
	_, ok = loan.NextInstallment()
	assert.False(t, ok)
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	loan := Loan{Schedule: []Installment{{Number: 1}}}
	c := loan.Clone()
	c.Schedule[0].Number = 9
	assert.Equal(t, 1, loan.Schedule[0].Number)

	profile := NewCreditProfile("w-1", date(2025, 1, 1))
	profile.Breakdown = &ScoreBreakdown{RawScore: 400}
	cp := profile.Clone()
	cp.Breakdown.RawScore = 500
	cp.PaymentHistory = append(cp.PaymentHistory, PaymentHistoryEntry{LoanID: "l-1"})
	assert.Equal(t, 400.0, profile.Breakdown.RawScore)
	assert.Empty(t, profile.PaymentHistory)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "InsufficientFunds", ErrorKind(fmt.Errorf("withdraw: %w", ErrInsufficientFunds)))
	assert.Equal(t, "CreditScoreTooLow", ErrorKind(ErrCreditScoreTooLow))
	assert.Equal(t, "internal", ErrorKind(fmt.Errorf("boom")))
	assert.Equal(t, "internal", ErrorKind(nil))
}
