package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_CreateWorker(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO finance\.workers`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO finance\.savings_accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO finance\.credit_profiles`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := models.Worker{ID: "w-1", Name: "Achieng", StartDate: created, Status: models.WorkerStatusActive, CreatedAt: created}
	acct := models.SavingsAccount{ID: "a-1", WorkerID: "w-1", Balance: decimal.Zero, MinimumBalance: decimal.NewFromInt(100)}
	err := repo.CreateWorker(context.Background(), w, acct, models.NewCreditProfile("w-1", created))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateWorkerRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO finance\.workers`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO finance\.savings_accounts`).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.CreateWorker(context.Background(), models.Worker{ID: "w-1"}, models.SavingsAccount{ID: "a-1"}, models.NewCreditProfile("w-1", created))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create savings account")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetWorkerNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM finance\.workers`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetWorker(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListPayroll(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "worker_id", "pay_period", "gross_pay", "net_pay", "days_worked", "recorded_at"}).
		AddRow("p-1", "w-1", "2025-04", "20000.00", "18000.00", 22, created).
		AddRow("p-2", "w-1", "2025-05", "21000.00", "18500.00", 21, created.AddDate(0, 1, 0))
	mock.ExpectQuery(`FROM finance\.payroll_records`).WithArgs("w-1").WillReturnRows(rows)

	records, err := repo.ListPayroll(context.Background(), "w-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].GrossPay.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, 21, records[1].DaysWorked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CommitLoanPayment(t *testing.T) {
	repo, mock := newMockRepo(t)

	acct := models.SavingsAccount{ID: "a-1", WorkerID: "w-1", Balance: decimal.NewFromInt(4000)}
	tx := models.SavingsTransaction{ID: "t-1", Type: models.TxLoanRepayment, Amount: decimal.NewFromInt(1000)}
	loan := models.Loan{ID: "l-1", WorkerID: "w-1", OutstandingBalance: decimal.NewFromInt(4000), Status: models.LoanStatusActive}
	profile := models.NewCreditProfile("w-1", created)
	payment := models.PaymentHistoryEntry{LoanID: "l-1", Amount: decimal.NewFromInt(1000), Status: models.PaymentOnTime}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE finance\.savings_accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO finance\.savings_transactions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE finance\.loans`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO finance\.credit_profiles`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO finance\.payment_history`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Commit(context.Background(), Changeset{
		Account:      &acct,
		Transactions: []models.SavingsTransaction{tx},
		Loan:         &loan,
		Profile:      &profile,
		Payments:     []models.PaymentHistoryEntry{payment},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CommitMissingLoanRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE finance\.loans`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Commit(context.Background(), Changeset{Loan: &models.Loan{ID: "ghost"}})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
