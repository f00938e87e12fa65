package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus of a disbursed loan
type LoanStatus string

const (
	LoanStatusActive  LoanStatus = "active"
	LoanStatusPaidOff LoanStatus = "paid_off"
)

// LoanProduct is an immutable catalog entry
type LoanProduct struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	InterestRate        float64         `json:"interestRate"` // Annual, e.g. 0.12
	MaxAmount           decimal.Decimal `json:"maxAmount"`
	TermMonths          int             `json:"termMonths"`
	MinEmploymentMonths int             `json:"minEmploymentMonths"`
	MinCreditScore      int             `json:"minCreditScore"`
}

// Loan represents a disbursed loan
type Loan struct {
	ID                 string          `json:"id"`
	WorkerID           string          `json:"workerId"`
	ProductID          string          `json:"productId"`
	Principal          decimal.Decimal `json:"principal"`
	InterestRate       float64         `json:"interestRate"`
	TermMonths         int             `json:"termMonths"`
	MonthlyPayment     decimal.Decimal `json:"monthlyPayment"`
	Schedule           []Installment   `json:"repaymentSchedule"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	AmountPaid         decimal.Decimal `json:"amountPaid"`
	Status             LoanStatus      `json:"status"`
	HMAC               string          `json:"hmac"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy.
func (l Loan) Clone() Loan {
	out := l
	out.Schedule = append([]Installment(nil), l.Schedule...)
	return out
}

// NextInstallment returns the first installment not yet covered by the
// amount paid so far, or false once the schedule is covered.
func (l Loan) NextInstallment() (Installment, bool) {
	covered := decimal.Zero
	for _, inst := range l.Schedule {
		covered = covered.Add(inst.TotalPayment)
		if covered.GreaterThan(l.AmountPaid) {
			return inst, true
		}
	}
	return Installment{}, false
}
