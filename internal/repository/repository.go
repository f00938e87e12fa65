package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// Repository provides PostgreSQL persistence
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// inTx runs fn inside a transaction, rolling back on any error
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateWorker inserts a worker together with its savings account and
// initial credit profile
func (r *Repository) CreateWorker(ctx context.Context, w models.Worker, acct models.SavingsAccount, profile models.CreditProfile) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO finance.workers (id, name, email, phone, national_id, start_date, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			w.ID, w.Name, w.Email, w.Phone, w.NationalID, w.StartDate, w.Status, w.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create worker: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO finance.savings_accounts
				(id, worker_id, balance, currency, interest_rate, minimum_balance, last_interest_calculation, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			acct.ID, acct.WorkerID, acct.Balance, acct.Currency, acct.InterestRate, acct.MinimumBalance,
			acct.LastInterestCalculated, acct.CreatedAt, acct.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create savings account: %w", err)
		}
		return upsertProfile(ctx, tx, profile)
	})
}

// GetWorker retrieves a worker by ID
func (r *Repository) GetWorker(ctx context.Context, id string) (models.Worker, error) {
	var w models.Worker
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, national_id, start_date, status, created_at
		FROM finance.workers
		WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.Email, &w.Phone, &w.NationalID, &w.StartDate, &w.Status, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Worker{}, fmt.Errorf("worker %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Worker{}, fmt.Errorf("failed to find worker: %w", err)
	}
	return w, nil
}

// ListWorkerIDs returns every worker ID
func (r *Repository) ListWorkerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM finance.workers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan worker id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListPayroll returns a worker's payroll records in chronological order
func (r *Repository) ListPayroll(ctx context.Context, workerID string) ([]models.PayrollRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, worker_id, pay_period, gross_pay, net_pay, days_worked, recorded_at
		FROM finance.payroll_records
		WHERE worker_id = $1
		ORDER BY recorded_at, id`, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll: %w", err)
	}
	defer rows.Close()

	var out []models.PayrollRecord
	for rows.Next() {
		var p models.PayrollRecord
		if err := rows.Scan(&p.ID, &p.WorkerID, &p.PayPeriod, &p.GrossPay, &p.NetPay, &p.DaysWorked, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListProduction returns a worker's production records in chronological order
func (r *Repository) ListProduction(ctx context.Context, workerID string) ([]models.ProductionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, worker_id, task, productivity_score, quality_score, recorded_at
		FROM finance.production_records
		WHERE worker_id = $1
		ORDER BY recorded_at, id`, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list production: %w", err)
	}
	defer rows.Close()

	var out []models.ProductionRecord
	for rows.Next() {
		var p models.ProductionRecord
		if err := rows.Scan(&p.ID, &p.WorkerID, &p.Task, &p.ProductivityScore, &p.QualityScore, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan production record: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetSavingsAccount loads a worker's account with its transaction log
func (r *Repository) GetSavingsAccount(ctx context.Context, workerID string) (models.SavingsAccount, error) {
	var a models.SavingsAccount
	err := r.db.QueryRowContext(ctx, `
		SELECT id, worker_id, balance, currency, interest_rate, minimum_balance,
		       last_interest_calculation, created_at, updated_at
		FROM finance.savings_accounts
		WHERE worker_id = $1`, workerID).
		Scan(&a.ID, &a.WorkerID, &a.Balance, &a.Currency, &a.InterestRate, &a.MinimumBalance,
			&a.LastInterestCalculated, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SavingsAccount{}, fmt.Errorf("savings account for %s: %w", workerID, models.ErrNotFound)
	}
	if err != nil {
		return models.SavingsAccount{}, fmt.Errorf("failed to find savings account: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, type, amount, balance_after, description, reference, created_at
		FROM finance.savings_transactions
		WHERE account_id = $1
		ORDER BY seq`, a.ID)
	if err != nil {
		return models.SavingsAccount{}, fmt.Errorf("failed to list savings transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.SavingsTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.BalanceAfter, &t.Description, &t.Reference, &t.CreatedAt); err != nil {
			return models.SavingsAccount{}, fmt.Errorf("failed to scan savings transaction: %w", err)
		}
		a.Transactions = append(a.Transactions, t)
	}
	return a, rows.Err()
}

// GetCreditProfile loads a worker's credit profile and payment history
func (r *Repository) GetCreditProfile(ctx context.Context, workerID string) (models.CreditProfile, error) {
	var (
		p         models.CreditProfile
		breakdown []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT worker_id, credit_score, risk_tier, average_monthly_income, income_stability,
		       total_debt, breakdown, updated_at
		FROM finance.credit_profiles
		WHERE worker_id = $1`, workerID).
		Scan(&p.WorkerID, &p.CreditScore, &p.RiskTier, &p.AverageMonthlyIncome, &p.IncomeStability,
			&p.TotalDebt, &breakdown, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CreditProfile{}, fmt.Errorf("credit profile for %s: %w", workerID, models.ErrNotFound)
	}
	if err != nil {
		return models.CreditProfile{}, fmt.Errorf("failed to find credit profile: %w", err)
	}
	if len(breakdown) > 0 {
		p.Breakdown = &models.ScoreBreakdown{}
		if err := json.Unmarshal(breakdown, p.Breakdown); err != nil {
			return models.CreditProfile{}, fmt.Errorf("failed to decode score breakdown: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT loan_id, amount, paid_at, status
		FROM finance.payment_history
		WHERE worker_id = $1
		ORDER BY seq`, workerID)
	if err != nil {
		return models.CreditProfile{}, fmt.Errorf("failed to list payment history: %w", err)
	}
	defer rows.Close()

	p.PaymentHistory = []models.PaymentHistoryEntry{}
	for rows.Next() {
		var e models.PaymentHistoryEntry
		if err := rows.Scan(&e.LoanID, &e.Amount, &e.Date, &e.Status); err != nil {
			return models.CreditProfile{}, fmt.Errorf("failed to scan payment history: %w", err)
		}
		p.PaymentHistory = append(p.PaymentHistory, e)
	}
	return p, rows.Err()
}

const loanColumns = `id, worker_id, product_id, principal, interest_rate, term_months, monthly_payment,
		       outstanding_balance, amount_paid, status, hmac, created_at, updated_at`

// GetLoan loads a loan with its repayment schedule
func (r *Repository) GetLoan(ctx context.Context, id string) (models.Loan, error) {
	loans, err := r.queryLoans(ctx, `SELECT `+loanColumns+` FROM finance.loans WHERE id = $1`, id)
	if err != nil {
		return models.Loan{}, err
	}
	if len(loans) == 0 {
		return models.Loan{}, fmt.Errorf("loan %s: %w", id, models.ErrNotFound)
	}
	return loans[0], nil
}

// ListLoansByWorker returns a worker's loans, oldest first
func (r *Repository) ListLoansByWorker(ctx context.Context, workerID string) ([]models.Loan, error) {
	return r.queryLoans(ctx, `SELECT `+loanColumns+` FROM finance.loans WHERE worker_id = $1 ORDER BY created_at, id`, workerID)
}

// ListActiveLoans returns every loan still being repaid
func (r *Repository) ListActiveLoans(ctx context.Context) ([]models.Loan, error) {
	return r.queryLoans(ctx, `SELECT `+loanColumns+` FROM finance.loans WHERE status = $1 ORDER BY created_at, id`,
		models.LoanStatusActive)
}

func (r *Repository) queryLoans(ctx context.Context, query string, args ...any) ([]models.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}

	loans := []models.Loan{}
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.WorkerID, &l.ProductID, &l.Principal, &l.InterestRate, &l.TermMonths,
			&l.MonthlyPayment, &l.OutstandingBalance, &l.AmountPaid, &l.Status, &l.HMAC, &l.CreatedAt, &l.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read loans: %w", err)
	}
	rows.Close()

	for i := range loans {
		schedule, err := r.listInstallments(ctx, loans[i].ID)
		if err != nil {
			return nil, err
		}
		loans[i].Schedule = schedule
	}
	return loans, nil
}

func (r *Repository) listInstallments(ctx context.Context, loanID string) ([]models.Installment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number, due_date, principal_payment, interest_payment, total_payment, remaining_balance
		FROM finance.installments
		WHERE loan_id = $1
		ORDER BY number`, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var out []models.Installment
	for rows.Next() {
		var in models.Installment
		if err := rows.Scan(&in.Number, &in.DueDate, &in.PrincipalPayment, &in.InterestPayment, &in.TotalPayment, &in.RemainingBalance); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Commit writes a changeset in a single transaction
func (r *Repository) Commit(ctx context.Context, cs Changeset) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if p := cs.Payroll; p != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO finance.payroll_records (id, worker_id, pay_period, gross_pay, net_pay, days_worked, recorded_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.ID, p.WorkerID, p.PayPeriod, p.GrossPay, p.NetPay, p.DaysWorked, p.Timestamp); err != nil {
				return fmt.Errorf("failed to insert payroll record: %w", err)
			}
		}
		if p := cs.Production; p != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO finance.production_records (id, worker_id, task, productivity_score, quality_score, recorded_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				p.ID, p.WorkerID, p.Task, p.ProductivityScore, p.QualityScore, p.Timestamp); err != nil {
				return fmt.Errorf("failed to insert production record: %w", err)
			}
		}
		if a := cs.Account; a != nil {
			if err := updateAccount(ctx, tx, *a, cs.Transactions); err != nil {
				return err
			}
		}
		if l := cs.Loan; l != nil {
			if err := saveLoan(ctx, tx, *l, cs.NewLoan); err != nil {
				return err
			}
		}
		if p := cs.Profile; p != nil {
			if err := upsertProfile(ctx, tx, *p); err != nil {
				return err
			}
			for _, e := range cs.Payments {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO finance.payment_history (worker_id, loan_id, amount, paid_at, status)
					VALUES ($1, $2, $3, $4, $5)`,
					p.WorkerID, e.LoanID, e.Amount, e.Date, e.Status); err != nil {
					return fmt.Errorf("failed to insert payment history: %w", err)
				}
			}
		}
		return nil
	})
}

func updateAccount(ctx context.Context, tx *sql.Tx, a models.SavingsAccount, txs []models.SavingsTransaction) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE finance.savings_accounts
		SET balance = $2, last_interest_calculation = $3, updated_at = $4
		WHERE id = $1`,
		a.ID, a.Balance, a.LastInterestCalculated, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update savings account: %w", err)
	}
	if err := expectOneRow(res, "savings account "+a.ID); err != nil {
		return err
	}
	for _, t := range txs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO finance.savings_transactions (id, account_id, type, amount, balance_after, description, reference, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, a.ID, t.Type, t.Amount, t.BalanceAfter, t.Description, t.Reference, t.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert savings transaction: %w", err)
		}
	}
	return nil
}

func saveLoan(ctx context.Context, tx *sql.Tx, l models.Loan, isNew bool) error {
	if !isNew {
		res, err := tx.ExecContext(ctx, `
			UPDATE finance.loans
			SET outstanding_balance = $2, amount_paid = $3, status = $4, updated_at = $5
			WHERE id = $1`,
			l.ID, l.OutstandingBalance, l.AmountPaid, l.Status, l.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		return expectOneRow(res, "loan "+l.ID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO finance.loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.ID, l.WorkerID, l.ProductID, l.Principal, l.InterestRate, l.TermMonths, l.MonthlyPayment,
		l.OutstandingBalance, l.AmountPaid, l.Status, l.HMAC, l.CreatedAt, l.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	for _, in := range l.Schedule {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO finance.installments
				(loan_id, number, due_date, principal_payment, interest_payment, total_payment, remaining_balance)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, in.Number, in.DueDate, in.PrincipalPayment, in.InterestPayment, in.TotalPayment, in.RemainingBalance); err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", in.Number, err)
		}
	}
	return nil
}

func upsertProfile(ctx context.Context, db execer, p models.CreditProfile) error {
	var breakdown []byte
	if p.Breakdown != nil {
		var err error
		if breakdown, err = json.Marshal(p.Breakdown); err != nil {
			return fmt.Errorf("failed to encode score breakdown: %w", err)
		}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO finance.credit_profiles
			(worker_id, credit_score, risk_tier, average_monthly_income, income_stability, total_debt, breakdown, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (worker_id) DO UPDATE SET
			credit_score = EXCLUDED.credit_score,
			risk_tier = EXCLUDED.risk_tier,
			average_monthly_income = EXCLUDED.average_monthly_income,
			income_stability = EXCLUDED.income_stability,
			total_debt = EXCLUDED.total_debt,
			breakdown = EXCLUDED.breakdown,
			updated_at = EXCLUDED.updated_at`,
		p.WorkerID, p.CreditScore, p.RiskTier, p.AverageMonthlyIncome, p.IncomeStability, p.TotalDebt, breakdown, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save credit profile: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
