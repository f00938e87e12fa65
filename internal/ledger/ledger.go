// Package ledger applies balance changes to a savings account. Each
// successful operation changes the balance and appends exactly one
// transaction; a rejected operation changes nothing.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// InterestPeriod is the minimum spacing between interest credits.
const InterestPeriod = 30 * 24 * time.Hour

// Entry describes a posting before it is applied.
type Entry struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// Deposit credits the account.
func Deposit(acct *models.SavingsAccount, e Entry, now time.Time) (models.SavingsTransaction, error) {
	if err := models.CheckAmount(e.Amount, "deposit"); err != nil {
		return models.SavingsTransaction{}, err
	}
	if e.Type == "" {
		e.Type = models.TxDeposit
	}
	return post(acct, e, acct.Balance.Add(e.Amount), now), nil
}

// Withdraw debits the account, refusing to overdraw it or to leave less
// than the minimum balance.
func Withdraw(acct *models.SavingsAccount, e Entry, now time.Time) (models.SavingsTransaction, error) {
	if err := models.CheckAmount(e.Amount, "withdrawal"); err != nil {
		return models.SavingsTransaction{}, err
	}
	if e.Amount.GreaterThan(acct.Balance) {
		return models.SavingsTransaction{}, fmt.Errorf("%w: balance %s, requested %s",
			models.ErrInsufficientFunds, acct.Balance, e.Amount)
	}
	after := acct.Balance.Sub(e.Amount)
	if after.LessThan(acct.MinimumBalance) {
		return models.SavingsTransaction{}, fmt.Errorf("%w: %s would remain, minimum is %s",
			models.ErrBelowMinimumBalance, after, acct.MinimumBalance)
	}
	if e.Type == "" {
		e.Type = models.TxWithdrawal
	}
	return post(acct, e, after, now), nil
}

// ApplyMonthlyInterest credits one month of interest when at least
// InterestPeriod has passed since the last calculation. It reports whether
// a transaction was appended; calls within the period are no-ops.
func ApplyMonthlyInterest(acct *models.SavingsAccount, now time.Time) (models.SavingsTransaction, bool) {
	if now.Sub(acct.LastInterestCalculated) < InterestPeriod {
		return models.SavingsTransaction{}, false
	}
	interest := acct.Balance.Mul(decimal.NewFromFloat(acct.InterestRate / 12)).Round(2)
	acct.LastInterestCalculated = now
	if !interest.IsPositive() {
		acct.UpdatedAt = now
		return models.SavingsTransaction{}, false
	}
	tx := post(acct, Entry{
		Type:        models.TxInterest,
		Amount:      interest,
		Description: fmt.Sprintf("Monthly interest at %.2f%%", acct.InterestRate*100),
	}, acct.Balance.Add(interest), now)
	return tx, true
}

// post is the single place a balance changes; the transaction is built
// before either field is touched.
func post(acct *models.SavingsAccount, e Entry, balance decimal.Decimal, now time.Time) models.SavingsTransaction {
	tx := models.SavingsTransaction{
		ID:           uuid.New().String(),
		AccountID:    acct.ID,
		Type:         e.Type,
		Amount:       e.Amount,
		BalanceAfter: balance,
		Description:  e.Description,
		Reference:    e.Reference,
		CreatedAt:    now,
	}
	acct.Balance = balance
	acct.Transactions = append(acct.Transactions, tx)
	acct.UpdatedAt = now
	return tx
}
