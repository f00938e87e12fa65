package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Dan9191/farmworker-finance/internal/models"
)

// Memory is a Store kept in process memory. Values are copied on the way
// in and out so callers never share state with the store.
type Memory struct {
	mu         sync.RWMutex
	workers    map[string]models.Worker
	payroll    map[string][]models.PayrollRecord
	production map[string][]models.ProductionRecord
	accounts   map[string]models.SavingsAccount
	profiles   map[string]models.CreditProfile
	loans      map[string]models.Loan
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		workers:    make(map[string]models.Worker),
		payroll:    make(map[string][]models.PayrollRecord),
		production: make(map[string][]models.ProductionRecord),
		accounts:   make(map[string]models.SavingsAccount),
		profiles:   make(map[string]models.CreditProfile),
		loans:      make(map[string]models.Loan),
	}
}

// CreateWorker stores a worker with its savings account and credit profile
func (m *Memory) CreateWorker(_ context.Context, w models.Worker, acct models.SavingsAccount, profile models.CreditProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workers[w.ID]; ok {
		return fmt.Errorf("worker %s already exists", w.ID)
	}
	m.workers[w.ID] = w
	m.accounts[w.ID] = acct.Clone()
	m.profiles[w.ID] = profile.Clone()
	return nil
}

// GetWorker retrieves a worker by ID
func (m *Memory) GetWorker(_ context.Context, id string) (models.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workers[id]
	if !ok {
		return models.Worker{}, fmt.Errorf("worker %s: %w", id, models.ErrNotFound)
	}
	return w, nil
}

// ListWorkerIDs returns every worker ID
func (m *Memory) ListWorkerIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.workers))
	for id := range m.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListPayroll returns a worker's payroll records in chronological order
func (m *Memory) ListPayroll(_ context.Context, workerID string) ([]models.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.PayrollRecord(nil), m.payroll[workerID]...), nil
}

// ListProduction returns a worker's production records in chronological order
func (m *Memory) ListProduction(_ context.Context, workerID string) ([]models.ProductionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ProductionRecord(nil), m.production[workerID]...), nil
}

// GetSavingsAccount returns a copy of a worker's account and its transaction log
func (m *Memory) GetSavingsAccount(_ context.Context, workerID string) (models.SavingsAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[workerID]
	if !ok {
		return models.SavingsAccount{}, fmt.Errorf("savings account for %s: %w", workerID, models.ErrNotFound)
	}
	return acct.Clone(), nil
}

// GetCreditProfile returns a copy of a worker's credit profile
func (m *Memory) GetCreditProfile(_ context.Context, workerID string) (models.CreditProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[workerID]
	if !ok {
		return models.CreditProfile{}, fmt.Errorf("credit profile for %s: %w", workerID, models.ErrNotFound)
	}
	return p.Clone(), nil
}

// GetLoan returns a copy of a loan with its schedule
func (m *Memory) GetLoan(_ context.Context, id string) (models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loans[id]
	if !ok {
		return models.Loan{}, fmt.Errorf("loan %s: %w", id, models.ErrNotFound)
	}
	return l.Clone(), nil
}

// ListLoansByWorker returns a worker's loans, oldest first
func (m *Memory) ListLoansByWorker(_ context.Context, workerID string) ([]models.Loan, error) {
	return m.listLoans(func(l models.Loan) bool { return l.WorkerID == workerID }), nil
}

// ListActiveLoans returns every loan still being repaid
func (m *Memory) ListActiveLoans(_ context.Context) ([]models.Loan, error) {
	return m.listLoans(func(l models.Loan) bool { return l.Status == models.LoanStatusActive }), nil
}

func (m *Memory) listLoans(keep func(models.Loan) bool) []models.Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Loan{}
	for _, l := range m.loans {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Commit checks every reference first and only then writes, so a failed
// commit leaves the store untouched.
func (m *Memory) Commit(_ context.Context, cs Changeset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkChangeset(cs); err != nil {
		return err
	}

	if cs.Payroll != nil {
		m.payroll[cs.Payroll.WorkerID] = append(m.payroll[cs.Payroll.WorkerID], *cs.Payroll)
	}
	if cs.Production != nil {
		m.production[cs.Production.WorkerID] = append(m.production[cs.Production.WorkerID], *cs.Production)
	}
	if cs.Account != nil {
		m.accounts[cs.Account.WorkerID] = cs.Account.Clone()
	}
	if cs.Profile != nil {
		m.profiles[cs.Profile.WorkerID] = cs.Profile.Clone()
	}
	if cs.Loan != nil {
		m.loans[cs.Loan.ID] = cs.Loan.Clone()
	}
	return nil
}

func (m *Memory) checkChangeset(cs Changeset) error {
	for _, workerID := range changesetWorkers(cs) {
		if _, ok := m.workers[workerID]; !ok {
			return fmt.Errorf("worker %s: %w", workerID, models.ErrNotFound)
		}
	}
	if cs.Loan != nil {
		_, exists := m.loans[cs.Loan.ID]
		if cs.NewLoan && exists {
			return fmt.Errorf("loan %s already exists", cs.Loan.ID)
		}
		if !cs.NewLoan && !exists {
			return fmt.Errorf("loan %s: %w", cs.Loan.ID, models.ErrNotFound)
		}
	}
	return nil
}

func changesetWorkers(cs Changeset) []string {
	var ids []string
	if cs.Payroll != nil {
		ids = append(ids, cs.Payroll.WorkerID)
	}
	if cs.Production != nil {
		ids = append(ids, cs.Production.WorkerID)
	}
	if cs.Account != nil {
		ids = append(ids, cs.Account.WorkerID)
	}
	if cs.Profile != nil {
		ids = append(ids, cs.Profile.WorkerID)
	}
	if cs.Loan != nil {
		ids = append(ids, cs.Loan.WorkerID)
	}
	return ids
}
