package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskTier is the coarse banding of a credit score
type RiskTier string

const (
	RiskLow        RiskTier = "low"
	RiskMedium     RiskTier = "medium"
	RiskMediumHigh RiskTier = "medium-high"
	RiskHigh       RiskTier = "high"
)

// Credit score bounds
const (
	MinCreditScore = 300
	MaxCreditScore = 850
)

// PaymentStatus tags a repayment history entry. Only on-time is produced;
// late payments are not detected.
type PaymentStatus string

const PaymentOnTime PaymentStatus = "on_time"

// PaymentHistoryEntry records one loan repayment on the credit profile
type PaymentHistoryEntry struct {
	LoanID string          `json:"loanId"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Status PaymentStatus   `json:"status"`
}

// CreditProfile is the latest credit snapshot for a worker
type CreditProfile struct {
	WorkerID             string                `json:"workerId"`
	CreditScore          int                   `json:"creditScore"`
	RiskTier             RiskTier              `json:"riskLevel"`
	AverageMonthlyIncome float64               `json:"averageMonthlyIncome"`
	IncomeStability      float64               `json:"incomeStability"`
	TotalDebt            decimal.Decimal       `json:"totalDebt"`
	Breakdown            *ScoreBreakdown       `json:"breakdown,omitempty"`
	PaymentHistory       []PaymentHistoryEntry `json:"paymentHistory"`
	UpdatedAt            time.Time             `json:"lastUpdated"`
}

// NewCreditProfile returns the profile every worker starts with.
func NewCreditProfile(workerID string, now time.Time) CreditProfile {
	return CreditProfile{
		WorkerID:        workerID,
		CreditScore:     MinCreditScore,
		RiskTier:        RiskHigh,
		IncomeStability: 0.2,
		TotalDebt:       decimal.Zero,
		PaymentHistory:  []PaymentHistoryEntry{},
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy.
func (p CreditProfile) Clone() CreditProfile {
	out := p
	out.PaymentHistory = append([]PaymentHistoryEntry(nil), p.PaymentHistory...)
	if p.Breakdown != nil {
		b := *p.Breakdown
		out.Breakdown = &b
	}
	return out
}
