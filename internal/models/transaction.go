package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a savings ledger entry
type TransactionType string

const (
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxInterest         TransactionType = "interest"
	TxLoanDisbursement TransactionType = "loan_disbursement"
	TxLoanRepayment    TransactionType = "loan_repayment"
)

// SavingsTransaction represents a single entry in a savings account log
type SavingsTransaction struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
