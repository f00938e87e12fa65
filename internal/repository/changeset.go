package repository

import (
	"context"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// Changeset groups the writes of one business operation. A store applies
// all of it or none of it.
type Changeset struct {
	Payroll      *models.PayrollRecord
	Production   *models.ProductionRecord
	Account      *models.SavingsAccount
	Transactions []models.SavingsTransaction // appended to Account's log
	Profile      *models.CreditProfile
	Payments     []models.PaymentHistoryEntry // appended to Profile's history
	Loan         *models.Loan
	NewLoan      bool
}

// Store is implemented by the PostgreSQL and in-memory repositories
type Store interface {
	CreateWorker(ctx context.Context, w models.Worker, acct models.SavingsAccount, profile models.CreditProfile) error
	GetWorker(ctx context.Context, id string) (models.Worker, error)
	ListWorkerIDs(ctx context.Context) ([]string, error)
	ListPayroll(ctx context.Context, workerID string) ([]models.PayrollRecord, error)
	ListProduction(ctx context.Context, workerID string) ([]models.ProductionRecord, error)
	GetSavingsAccount(ctx context.Context, workerID string) (models.SavingsAccount, error)
	GetCreditProfile(ctx context.Context, workerID string) (models.CreditProfile, error)
	GetLoan(ctx context.Context, id string) (models.Loan, error)
	ListLoansByWorker(ctx context.Context, workerID string) ([]models.Loan, error)
	ListActiveLoans(ctx context.Context) ([]models.Loan, error)
	Commit(ctx context.Context, cs Changeset) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*Memory)(nil)
)
