package models

import "errors"

// Loan eligibility rejections. Recoverable: the worker may reapply later or
// ask for a smaller amount.
var (
	ErrInsufficientTenure   = errors.New("insufficient tenure")
	ErrAmountExceedsLimit   = errors.New("amount exceeds limit")
	ErrCreditScoreTooLow    = errors.New("credit score too low")
	ErrDebtToIncomeExceeded = errors.New("debt to income exceeded")
)

// Ledger rejections. A rejected operation leaves the account untouched.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBelowMinimumBalance = errors.New("below minimum balance")
	ErrInvalidAmount       = errors.New("invalid amount")
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoanClosed         = errors.New("loan closed")
	ErrSealMismatch       = errors.New("loan seal mismatch")
)

// ErrorKind returns a stable name for one of the errors above, or "internal".
func ErrorKind(err error) string {
	for _, k := range []struct {
		err  error
		kind string
	}{
		{ErrInsufficientTenure, "InsufficientTenure"},
		{ErrAmountExceedsLimit, "AmountExceedsLimit"},
		{ErrCreditScoreTooLow, "CreditScoreTooLow"},
		{ErrDebtToIncomeExceeded, "DebtToIncomeExceeded"},
		{ErrInsufficientFunds, "InsufficientFunds"},
		{ErrBelowMinimumBalance, "BelowMinimumBalance"},
		{ErrInvalidAmount, "InvalidAmount"},
		{ErrNotFound, "NotFound"},
		{ErrInvalidRecord, "InvalidRecord"},
		{ErrInvalidCredentials, "InvalidCredentials"},
		{ErrLoanClosed, "LoanClosed"},
		{ErrSealMismatch, "SealMismatch"},
	} {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
