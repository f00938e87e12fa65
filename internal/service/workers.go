package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/events"
	"github.com/Dan9191/farmworker-finance/internal/models"
	"github.com/Dan9191/farmworker-finance/internal/repository"
	"github.com/Dan9191/farmworker-finance/internal/scoring"
	"github.com/Dan9191/farmworker-finance/internal/utils"
)

// Terms of the savings account opened at registration
var (
	SavingsInterestRate   = 0.05
	SavingsMinimumBalance = decimal.NewFromInt(100)
)

// NewWorker is the registration input
type NewWorker struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	NationalID string    `json:"nationalId"`
	StartDate  time.Time `json:"startDate"`
}

// RegisterWorker creates the worker with its savings account and initial
// credit profile in one step
func (s *Service) RegisterWorker(ctx context.Context, in NewWorker) (_ models.Worker, err error) {
	defer func() { s.metrics.ObserveOperation("register_worker", err) }()

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Worker{}, fmt.Errorf("%w: worker name is required", models.ErrInvalidRecord)
	}

	now := s.now()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}
	if in.StartDate.After(now) {
		return models.Worker{}, fmt.Errorf("%w: start date %s is in the future",
			models.ErrInvalidRecord, in.StartDate.Format(time.DateOnly))
	}

	encryptedID, err := utils.Encrypt(in.NationalID, s.config.EncryptionKeyBytes())
	if err != nil {
		return models.Worker{}, fmt.Errorf("failed to encrypt national ID: %w", err)
	}

	worker := models.Worker{
		ID:         uuid.New().String(),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		NationalID: encryptedID,
		StartDate:  in.StartDate,
		Status:     models.WorkerStatusActive,
		CreatedAt:  now,
	}
	account := models.SavingsAccount{
		ID:                     uuid.New().String(),
		WorkerID:               worker.ID,
		Balance:                decimal.Zero,
		Currency:               s.config.Currency,
		InterestRate:           SavingsInterestRate,
		MinimumBalance:         SavingsMinimumBalance,
		LastInterestCalculated: now,
		Transactions:           []models.SavingsTransaction{},
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	profile := models.NewCreditProfile(worker.ID, now)

	if err := s.repo.CreateWorker(ctx, worker, account, profile); err != nil {
		return models.Worker{}, err
	}

	s.log.Infof("Worker registered: %s (%s)", worker.ID, worker.Name)
	s.publish(ctx, events.New(events.WorkerRegistered, worker.ID, worker.ID,
		map[string]any{"accountId": account.ID}, now))

	worker.NationalID = in.NationalID
	return worker, nil
}

// GetWorker returns the worker with its national ID decrypted
func (s *Service) GetWorker(ctx context.Context, id string) (models.Worker, error) {
	worker, err := s.repo.GetWorker(ctx, id)
	if err != nil {
		return models.Worker{}, err
	}
	worker.NationalID, err = utils.Decrypt(worker.NationalID, s.config.EncryptionKeyBytes())
	if err != nil {
		return models.Worker{}, fmt.Errorf("failed to decrypt national ID: %w", err)
	}
	return worker, nil
}

// RecordPayroll ingests a payroll record and recomputes the credit profile
func (s *Service) RecordPayroll(ctx context.Context, rec models.PayrollRecord) (_ models.CreditProfile, err error) {
	defer func() { s.metrics.ObserveOperation("record_payroll", err) }()

	if err := rec.Validate(); err != nil {
		return models.CreditProfile{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	unlock := s.locks.lock(rec.WorkerID)
	defer unlock()

	profile, err := s.recompute(ctx, rec.WorkerID, &rec, nil)
	if err != nil {
		return models.CreditProfile{}, err
	}
	s.log.Infof("Payroll recorded for worker %s: period %s gross %s", rec.WorkerID, rec.PayPeriod, rec.GrossPay)
	return profile, nil
}

// RecordProduction ingests a production record and recomputes the credit
// profile
func (s *Service) RecordProduction(ctx context.Context, rec models.ProductionRecord) (_ models.CreditProfile, err error) {
	defer func() { s.metrics.ObserveOperation("record_production", err) }()

	if err := rec.Validate(); err != nil {
		return models.CreditProfile{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	unlock := s.locks.lock(rec.WorkerID)
	defer unlock()

	profile, err := s.recompute(ctx, rec.WorkerID, nil, &rec)
	if err != nil {
		return models.CreditProfile{}, err
	}
	s.log.Infof("Production recorded for worker %s: task %s", rec.WorkerID, rec.Task)
	return profile, nil
}

// RecalculateCreditProfile recomputes the profile from stored records only
func (s *Service) RecalculateCreditProfile(ctx context.Context, workerID string) (models.CreditProfile, error) {
	unlock := s.locks.lock(workerID)
	defer unlock()
	return s.recompute(ctx, workerID, nil, nil)
}

// GetCreditProfile returns the latest stored profile
func (s *Service) GetCreditProfile(ctx context.Context, workerID string) (models.CreditProfile, error) {
	return s.repo.GetCreditProfile(ctx, workerID)
}

// recompute reads the full history, adds the pending record and commits
// the record together with the new profile. Callers hold the worker lock.
func (s *Service) recompute(
	ctx context.Context,
	workerID string,
	payroll *models.PayrollRecord,
	production *models.ProductionRecord,
) (models.CreditProfile, error) {
	profile, err := s.repo.GetCreditProfile(ctx, workerID)
	if err != nil {
		return models.CreditProfile{}, err
	}
	payrollRecords, err := s.repo.ListPayroll(ctx, workerID)
	if err != nil {
		return models.CreditProfile{}, err
	}
	productionRecords, err := s.repo.ListProduction(ctx, workerID)
	if err != nil {
		return models.CreditProfile{}, err
	}
	account, err := s.repo.GetSavingsAccount(ctx, workerID)
	if err != nil {
		return models.CreditProfile{}, err
	}

	if payroll != nil {
		payrollRecords = append(payrollRecords, *payroll)
	}
	if production != nil {
		productionRecords = append(productionRecords, *production)
	}

	now := s.now()
	previous := profile.CreditScore
	updated := scoring.Recalculate(profile, scoring.Input{
		Payroll:        payrollRecords,
		Production:     productionRecords,
		SavingsBalance: account.Balance,
		Now:            now,
	})

	if err := s.repo.Commit(ctx, repository.Changeset{
		Payroll:    payroll,
		Production: production,
		Profile:    &updated,
	}); err != nil {
		return models.CreditProfile{}, err
	}

	s.log.Infof("Credit profile for worker %s: score %d -> %d (%s)", workerID, previous, updated.CreditScore, updated.RiskTier)
	s.publish(ctx, events.New(events.CreditProfileUpdated, workerID, workerID, map[string]any{
		"creditScore":   updated.CreditScore,
		"previousScore": previous,
		"riskLevel":     string(updated.RiskTier),
	}, now))
	return updated, nil
}
