package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one scheduled loan payment
type Installment struct {
	Number           int             `json:"installmentNumber"`
	DueDate          time.Time       `json:"dueDate"`
	PrincipalPayment decimal.Decimal `json:"principalPayment"`
	InterestPayment  decimal.Decimal `json:"interestPayment"`
	TotalPayment     decimal.Decimal `json:"totalPayment"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}
