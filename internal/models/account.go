package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsAccount holds a worker's single savings balance
type SavingsAccount struct {
	ID                     string               `json:"id"`
	WorkerID               string               `json:"workerId"`
	Balance                decimal.Decimal      `json:"balance"`
	Currency               string               `json:"currency"`
	InterestRate           float64              `json:"interestRate"`
	MinimumBalance         decimal.Decimal      `json:"minimumBalance"`
	LastInterestCalculated time.Time            `json:"lastInterestCalculation"`
	Transactions           []SavingsTransaction `json:"transactions"`
	CreatedAt              time.Time            `json:"createdAt"`
	UpdatedAt              time.Time            `json:"updatedAt"`
}

// Clone returns a copy that shares no transaction slice with the receiver.
func (a SavingsAccount) Clone() SavingsAccount {
	out := a
	out.Transactions = append([]SavingsTransaction(nil), a.Transactions...)
	return out
}
