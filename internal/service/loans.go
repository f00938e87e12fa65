package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/events"
	"github.com/Dan9191/farmworker-finance/internal/ledger"
	"github.com/Dan9191/farmworker-finance/internal/lending"
	"github.com/Dan9191/farmworker-finance/internal/models"
	"github.com/Dan9191/farmworker-finance/internal/repository"
	"github.com/Dan9191/farmworker-finance/internal/utils"
)

// ListProducts returns the loan catalog
func (s *Service) ListProducts() []models.LoanProduct {
	return s.catalog.List()
}

// CheckEligibility previews a loan application without creating anything
func (s *Service) CheckEligibility(ctx context.Context, workerID, productID string, amount decimal.Decimal) (lending.Decision, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return lending.Decision{}, err
	}
	worker, err := s.repo.GetWorker(ctx, workerID)
	if err != nil {
		return lending.Decision{}, err
	}
	profile, err := s.repo.GetCreditProfile(ctx, workerID)
	if err != nil {
		return lending.Decision{}, err
	}
	return lending.CheckEligibility(worker, profile, product, amount, s.now())
}

// ApplyForLoan checks eligibility and, if approved, creates the loan and
// disburses the principal into savings. A rejection is returned both in the
// decision and as the error.
func (s *Service) ApplyForLoan(ctx context.Context, workerID, productID string, amount decimal.Decimal) (_ models.Loan, _ lending.Decision, err error) {
	defer func() { s.metrics.ObserveOperation("apply_for_loan", err) }()

	product, err := s.catalog.Get(productID)
	if err != nil {
		return models.Loan{}, lending.Decision{}, err
	}

	unlock := s.locks.lock(workerID)
	defer unlock()

	worker, err := s.repo.GetWorker(ctx, workerID)
	if err != nil {
		return models.Loan{}, lending.Decision{}, err
	}
	profile, err := s.repo.GetCreditProfile(ctx, workerID)
	if err != nil {
		return models.Loan{}, lending.Decision{}, err
	}

	now := s.now()
	decision, err := lending.CheckEligibility(worker, profile, product, amount, now)
	if err != nil {
		return models.Loan{}, lending.Decision{}, err
	}
	if !decision.Eligible {
		s.log.Warnf("Loan application rejected for worker %s: %v", workerID, decision.Reason)
		return models.Loan{}, decision, decision.Reason
	}

	account, err := s.repo.GetSavingsAccount(ctx, workerID)
	if err != nil {
		return models.Loan{}, decision, err
	}

	schedule := lending.GenerateSchedule(amount, product.InterestRate, product.TermMonths, now)
	repayable := decimal.Zero
	for _, inst := range schedule {
		repayable = repayable.Add(inst.TotalPayment)
	}
	loan := models.Loan{
		ID:                 uuid.New().String(),
		WorkerID:           workerID,
		ProductID:          product.ID,
		Principal:          amount,
		InterestRate:       product.InterestRate,
		TermMonths:         product.TermMonths,
		MonthlyPayment:     decision.MonthlyPayment,
		Schedule:           schedule,
		OutstandingBalance: repayable,
		AmountPaid:         decimal.Zero,
		Status:             models.LoanStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	loan.HMAC = utils.SealLoan(loan, s.config.HMACSecret)

	tx, err := ledger.Deposit(&account, ledger.Entry{
		Type:        models.TxLoanDisbursement,
		Amount:      amount,
		Description: fmt.Sprintf("Disbursement of %s loan", product.Name),
		Reference:   loan.ID,
	}, now)
	if err != nil {
		return models.Loan{}, decision, err
	}
	profile.TotalDebt = profile.TotalDebt.Add(amount)
	profile.UpdatedAt = now

	if err := s.repo.Commit(ctx, repository.Changeset{
		Account:      &account,
		Transactions: []models.SavingsTransaction{tx},
		Profile:      &profile,
		Loan:         &loan,
		NewLoan:      true,
	}); err != nil {
		return models.Loan{}, decision, err
	}

	s.metrics.AddDisbursed(amount.InexactFloat64())
	s.log.Infof("Loan %s disbursed to worker %s: %s over %d months at %s/month",
		loan.ID, workerID, amount, loan.TermMonths, loan.MonthlyPayment)
	s.publish(ctx, events.New(events.LoanDisbursed, workerID, loan.ID, map[string]any{
		"productId":      product.ID,
		"principal":      amount.String(),
		"monthlyPayment": loan.MonthlyPayment.String(),
		"termMonths":     loan.TermMonths,
	}, now))

	if s.notifier != nil && worker.Email != "" {
		if err := s.notifier.SendLoanDisbursed(worker.Email, worker.Name, amount, loan.MonthlyPayment, loan.TermMonths); err != nil {
			s.log.Errorf("Failed to send disbursement notice for loan %s: %v", loan.ID, err)
		}
	}
	return loan, decision, nil
}

// MakeLoanPayment repays part of a loan from the owner's savings
func (s *Service) MakeLoanPayment(ctx context.Context, loanID string, amount decimal.Decimal) (_ models.Loan, err error) {
	defer func() { s.metrics.ObserveOperation("loan_payment", err) }()

	if err := models.CheckAmount(amount, "payment"); err != nil {
		return models.Loan{}, err
	}

	found, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return models.Loan{}, err
	}
	unlock := s.locks.lock(found.WorkerID)
	defer unlock()

	// Re-read under the lock; a concurrent payment may have landed.
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return models.Loan{}, err
	}
	if !utils.VerifyLoanSeal(loan, s.config.HMACSecret) {
		s.log.Errorf("Loan %s failed its integrity check", loanID)
		return models.Loan{}, fmt.Errorf("loan %s: %w", loanID, models.ErrSealMismatch)
	}
	if loan.Status == models.LoanStatusPaidOff {
		return models.Loan{}, fmt.Errorf("loan %s: %w", loanID, models.ErrLoanClosed)
	}
	if amount.GreaterThan(loan.OutstandingBalance) {
		return models.Loan{}, fmt.Errorf("%w: payment %s exceeds outstanding %s",
			models.ErrInvalidAmount, amount, loan.OutstandingBalance)
	}

	account, err := s.repo.GetSavingsAccount(ctx, loan.WorkerID)
	if err != nil {
		return models.Loan{}, err
	}
	profile, err := s.repo.GetCreditProfile(ctx, loan.WorkerID)
	if err != nil {
		return models.Loan{}, err
	}

	now := s.now()
	tx, err := ledger.Withdraw(&account, ledger.Entry{
		Type:        models.TxLoanRepayment,
		Amount:      amount,
		Description: "Loan repayment",
		Reference:   loan.ID,
	}, now)
	if err != nil {
		s.log.Warnf("Payment of %s on loan %s rejected: %v", amount, loanID, err)
		return models.Loan{}, err
	}

	principal := lending.PrincipalRepaid(loan.Schedule, loan.AmountPaid.Add(amount)).
		Sub(lending.PrincipalRepaid(loan.Schedule, loan.AmountPaid))
	loan.OutstandingBalance = loan.OutstandingBalance.Sub(amount)
	loan.AmountPaid = loan.AmountPaid.Add(amount)
	loan.UpdatedAt = now
	if loan.OutstandingBalance.IsZero() {
		loan.Status = models.LoanStatusPaidOff
	}

	entry := models.PaymentHistoryEntry{
		LoanID: loan.ID,
		Amount: amount,
		Date:   now,
		Status: models.PaymentOnTime,
	}
	profile.PaymentHistory = append(profile.PaymentHistory, entry)
	// totalDebt carries principal only; the interest share does not reduce it.
	profile.TotalDebt = decimal.Max(decimal.Zero, profile.TotalDebt.Sub(principal))
	profile.UpdatedAt = now

	if err := s.repo.Commit(ctx, repository.Changeset{
		Account:      &account,
		Transactions: []models.SavingsTransaction{tx},
		Profile:      &profile,
		Payments:     []models.PaymentHistoryEntry{entry},
		Loan:         &loan,
	}); err != nil {
		return models.Loan{}, err
	}

	s.metrics.AddRepaid(amount.InexactFloat64())
	s.log.Infof("Payment of %s on loan %s by worker %s, outstanding %s", amount, loan.ID, loan.WorkerID, loan.OutstandingBalance)
	evs := []events.Event{events.New(events.LoanPaymentReceived, loan.WorkerID, loan.ID, map[string]any{
		"amount":      amount.String(),
		"outstanding": loan.OutstandingBalance.String(),
	}, now)}
	if loan.Status == models.LoanStatusPaidOff {
		s.log.Infof("Loan %s paid off", loan.ID)
		evs = append(evs, events.New(events.LoanPaidOff, loan.WorkerID, loan.ID, nil, now))
	}
	s.publish(ctx, evs...)
	return loan, nil
}

// GetLoan returns a loan with its schedule
func (s *Service) GetLoan(ctx context.Context, id string) (models.Loan, error) {
	return s.repo.GetLoan(ctx, id)
}

// ListLoans returns the worker's loans, oldest first
func (s *Service) ListLoans(ctx context.Context, workerID string) ([]models.Loan, error) {
	if _, err := s.repo.GetWorker(ctx, workerID); err != nil {
		return nil, err
	}
	return s.repo.ListLoansByWorker(ctx, workerID)
}

// SendPaymentReminders emails every worker whose next installment is due
// within window, overdue ones included. It returns the number sent.
func (s *Service) SendPaymentReminders(ctx context.Context, window time.Duration) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	loans, err := s.repo.ListActiveLoans(ctx)
	if err != nil {
		return 0, err
	}

	horizon := s.now().Add(window)
	sent := 0
	for _, loan := range loans {
		next, ok := loan.NextInstallment()
		if !ok || next.DueDate.After(horizon) {
			continue
		}
		worker, err := s.repo.GetWorker(ctx, loan.WorkerID)
		if err != nil {
			s.log.Errorf("Reminder for loan %s skipped: %v", loan.ID, err)
			continue
		}
		if worker.Email == "" {
			continue
		}
		// Amount still owed on this installment after partial payments.
		due := next.TotalPayment
		covered := decimal.Zero
		for _, inst := range loan.Schedule {
			covered = covered.Add(inst.TotalPayment)
			if inst.Number == next.Number {
				due = covered.Sub(loan.AmountPaid)
				break
			}
		}
		if err := s.notifier.SendPaymentReminder(worker.Email, worker.Name, next.DueDate, due); err != nil {
			s.log.Errorf("Failed to send reminder for loan %s: %v", loan.ID, err)
			continue
		}
		sent++
	}
	s.log.Infof("Payment reminders sent: %d", sent)
	return sent, nil
}
