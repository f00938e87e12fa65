package lending_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/farmworker-finance/internal/lending"
)

var origination = time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

func TestMonthlyPayment_SixMonthLoan(t *testing.T) {
	payment := lending.MonthlyPayment(decimal.NewFromInt(5000), 0.12, 6)
	assert.True(t, payment.Equal(decimal.RequireFromString("862.74")), "got %s", payment)
}

func TestGenerateSchedule_FirstInstallment(t *testing.T) {
	schedule := lending.GenerateSchedule(decimal.NewFromInt(5000), 0.12, 6, origination)
	require.Len(t, schedule, 6)

	first := schedule[0]
	assert.Equal(t, 1, first.Number)
	assert.True(t, first.InterestPayment.Equal(decimal.NewFromInt(50)), "got %s", first.InterestPayment)
	assert.True(t, first.PrincipalPayment.Equal(decimal.RequireFromString("812.74")), "got %s", first.PrincipalPayment)
	assert.True(t, first.TotalPayment.Equal(decimal.RequireFromString("862.74")))
	assert.True(t, first.RemainingBalance.Equal(decimal.RequireFromString("4187.26")))
}

func TestGenerateSchedule_ThirtyDayDueDates(t *testing.T) {
	schedule := lending.GenerateSchedule(decimal.NewFromInt(1200), 0.10, 3, origination)
	require.Len(t, schedule, 3)

	// Not calendar-month aware: 31 Jan + 30 days is 2 Mar.
	assert.Equal(t, time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	for i := 1; i < len(schedule); i++ {
		assert.Equal(t, lending.InstallmentInterval, schedule[i].DueDate.Sub(schedule[i-1].DueDate))
	}
}

func TestGenerateSchedule_Properties(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      float64
		months    int
	}{
		{"emergency", "5000", 0.12, 6},
		{"productive", "50000", 0.12, 12},
		{"long term", "100000", 0.05, 360},
		{"zero rate", "12000", 0, 12},
		{"odd cents", "1234.57", 0.18, 7},
		{"single period", "999.99", 0.24, 1},
		{"high rate", "700", 1.5, 24},
		{"tiny principal", "0.05", 0.12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := decimal.RequireFromString(tt.principal)
			schedule := lending.GenerateSchedule(principal, tt.rate, tt.months, origination)
			require.Len(t, schedule, tt.months)

			total := decimal.Zero
			prev := principal
			for _, inst := range schedule {
				total = total.Add(inst.PrincipalPayment)
				assert.True(t, inst.RemainingBalance.LessThanOrEqual(prev),
					"installment %d: balance rose from %s to %s", inst.Number, prev, inst.RemainingBalance)
				assert.False(t, inst.PrincipalPayment.IsNegative())
				assert.True(t, inst.TotalPayment.Equal(inst.PrincipalPayment.Add(inst.InterestPayment)))
				prev = inst.RemainingBalance
			}

			assert.True(t, total.Sub(principal).Abs().LessThanOrEqual(decimal.RequireFromString("0.01")),
				"principal portions sum to %s, want %s", total, principal)
			assert.True(t, schedule[len(schedule)-1].RemainingBalance.IsZero())
		})
	}
}

func TestGenerateSchedule_ZeroRate(t *testing.T) {
	schedule := lending.GenerateSchedule(decimal.NewFromInt(12000), 0, 12, origination)
	require.Len(t, schedule, 12)
	for _, inst := range schedule {
		assert.True(t, inst.InterestPayment.IsZero())
		assert.True(t, inst.PrincipalPayment.Equal(decimal.NewFromInt(1000)))
	}
}

func TestGenerateSchedule_InvalidInputs(t *testing.T) {
	assert.Nil(t, lending.GenerateSchedule(decimal.NewFromInt(1000), 0.1, 0, origination))
	assert.Nil(t, lending.GenerateSchedule(decimal.Zero, 0.1, 12, origination))
	assert.Nil(t, lending.GenerateSchedule(decimal.NewFromInt(-5), 0.1, 12, origination))
	assert.Nil(t, lending.GenerateSchedule(decimal.NewFromInt(1000), -0.1, 12, origination))
	assert.True(t, lending.MonthlyPayment(decimal.Zero, 0.1, 12).IsZero())
}

func TestPrincipalRepaid(t *testing.T) {
	schedule := lending.GenerateSchedule(decimal.NewFromInt(5000), 0.12, 6, origination)
	repayable := decimal.Zero
	for _, inst := range schedule {
		repayable = repayable.Add(inst.TotalPayment)
	}

	tests := []struct {
		name string
		paid decimal.Decimal
		want string
	}{
		{"nothing paid", decimal.Zero, "0"},
		{"interest only", decimal.NewFromInt(50), "0"},
		{"part of first principal", decimal.NewFromInt(100), "50"},
		{"first installment", decimal.RequireFromString("862.74"), "812.74"},
		// 37.26 into installment two does not cover its 41.87 interest.
		{"short of second interest", decimal.NewFromInt(900), "812.74"},
		{"whole schedule", repayable, "5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lending.PrincipalRepaid(schedule, tt.paid)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
