package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// loanSealPayload lists the loan terms that must never change after
// approval.
func loanSealPayload(l models.Loan) string {
	return fmt.Sprintf("%s|%s|%s|%s|%.6f|%d|%s",
		l.ID, l.WorkerID, l.ProductID, l.Principal.StringFixed(2),
		l.InterestRate, l.TermMonths, l.MonthlyPayment.StringFixed(2))
}

// SealLoan generates an HMAC over a loan's immutable terms
func SealLoan(l models.Loan, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(loanSealPayload(l)))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyLoanSeal reports whether the loan's stored HMAC matches its terms
func VerifyLoanSeal(l models.Loan, secret string) bool {
	want, err := hex.DecodeString(SealLoan(l, secret))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(l.HMAC)
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}
