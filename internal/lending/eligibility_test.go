package lending_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/farmworker-finance/internal/lending"
	"github.com/Dan9191/farmworker-finance/internal/models"
)

var checkTime = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func eligibleProfile() models.CreditProfile {
	p := models.NewCreditProfile("w-1", checkTime)
	p.CreditScore = 650
	p.RiskTier = models.RiskMedium
	p.AverageMonthlyIncome = 20000
	return p
}

func workerSince(months int) models.Worker {
	return models.Worker{ID: "w-1", StartDate: checkTime.AddDate(0, -months, 0), Status: models.WorkerStatusActive}
}

func mustProduct(t *testing.T, id string) models.LoanProduct {
	t.Helper()
	p, err := lending.DefaultCatalog().Get(id)
	require.NoError(t, err)
	return p
}

func TestCheckEligibility_NewWorkerEmergency(t *testing.T) {
	d, err := lending.CheckEligibility(workerSince(0), eligibleProfile(),
		mustProduct(t, lending.ProductEmergency), decimal.NewFromInt(1000), checkTime)

	require.NoError(t, err)
	assert.False(t, d.Eligible)
	assert.ErrorIs(t, d.Reason, models.ErrInsufficientTenure)
	assert.Equal(t, 0, d.EmploymentMonths)
}

func TestCheckEligibility_Order(t *testing.T) {
	emergency := mustProduct(t, lending.ProductEmergency)

	tests := []struct {
		name    string
		worker  models.Worker
		profile func() models.CreditProfile
		amount  int64
		want    error
	}{
		{
			name:    "tenure checked before amount",
			worker:  workerSince(1),
			profile: eligibleProfile,
			amount:  1_000_000,
			want:    models.ErrInsufficientTenure,
		},
		{
			name:    "amount checked before score",
			worker:  workerSince(6),
			profile: func() models.CreditProfile { p := eligibleProfile(); p.CreditScore = 300; return p },
			amount:  20000,
			want:    models.ErrAmountExceedsLimit,
		},
		{
			name:    "score checked before debt",
			worker:  workerSince(6),
			profile: func() models.CreditProfile { p := eligibleProfile(); p.CreditScore = 399; p.AverageMonthlyIncome = 0; return p },
			amount:  1000,
			want:    models.ErrCreditScoreTooLow,
		},
		{
			name:    "debt to income",
			worker:  workerSince(6),
			profile: func() models.CreditProfile { p := eligibleProfile(); p.TotalDebt = decimal.NewFromInt(7500); return p },
			amount:  5000,
			want:    models.ErrDebtToIncomeExceeded,
		},
		{
			name:    "no income this month",
			worker:  workerSince(6),
			profile: func() models.CreditProfile { p := eligibleProfile(); p.AverageMonthlyIncome = 0; return p },
			amount:  1000,
			want:    models.ErrDebtToIncomeExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := lending.CheckEligibility(tt.worker, tt.profile(), emergency, decimal.NewFromInt(tt.amount), checkTime)
			require.NoError(t, err)
			assert.False(t, d.Eligible)
			assert.True(t, errors.Is(d.Reason, tt.want), "got %v", d.Reason)
			assert.NotEmpty(t, d.Message)
		})
	}
}

func TestCheckEligibility_Eligible(t *testing.T) {
	d, err := lending.CheckEligibility(workerSince(3), eligibleProfile(),
		mustProduct(t, lending.ProductEmergency), decimal.NewFromInt(5000), checkTime)

	require.NoError(t, err)
	assert.True(t, d.Eligible)
	assert.NoError(t, d.Reason)
	assert.Equal(t, 3, d.EmploymentMonths)
	assert.InDelta(t, d.MonthlyPayment.InexactFloat64()/20000, d.DebtToIncome, 1e-9)
}

func TestCheckEligibility_ProductiveNeedsYear(t *testing.T) {
	productive := mustProduct(t, lending.ProductProductive)

	d, err := lending.CheckEligibility(workerSince(11), eligibleProfile(), productive, decimal.NewFromInt(2000), checkTime)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Reason, models.ErrInsufficientTenure)

	d, err = lending.CheckEligibility(workerSince(12), eligibleProfile(), productive, decimal.NewFromInt(2000), checkTime)
	require.NoError(t, err)
	assert.True(t, d.Eligible)
}

func TestCheckEligibility_InvalidAmount(t *testing.T) {
	emergency := mustProduct(t, lending.ProductEmergency)
	for _, v := range []string{"0", "-100", "1000.005"} {
		_, err := lending.CheckEligibility(workerSince(6), eligibleProfile(), emergency, decimal.RequireFromString(v), checkTime)
		assert.ErrorIs(t, err, models.ErrInvalidAmount, v)
	}
}

func TestCatalog(t *testing.T) {
	c := lending.DefaultCatalog()
	products := c.List()
	require.Len(t, products, 2)
	assert.Equal(t, lending.ProductEmergency, products[0].ID)
	assert.Equal(t, 400, products[0].MinCreditScore)
	assert.Equal(t, 500, products[1].MinCreditScore)

	_, err := c.Get("mortgage")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
