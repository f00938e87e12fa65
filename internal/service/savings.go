package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Dan9191/farmworker-finance/internal/ledger"
	"github.com/Dan9191/farmworker-finance/internal/models"
	"github.com/Dan9191/farmworker-finance/internal/repository"
)

// GetSavingsAccount returns the worker's account with its transaction log
func (s *Service) GetSavingsAccount(ctx context.Context, workerID string) (models.SavingsAccount, error) {
	return s.repo.GetSavingsAccount(ctx, workerID)
}

// Deposit credits the worker's savings account
func (s *Service) Deposit(ctx context.Context, workerID string, amount decimal.Decimal, description string) (models.SavingsAccount, error) {
	return s.post(ctx, workerID, ledger.Deposit, ledger.Entry{
		Type:        models.TxDeposit,
		Amount:      amount,
		Description: description,
	})
}

// Withdraw debits the worker's savings account
func (s *Service) Withdraw(ctx context.Context, workerID string, amount decimal.Decimal, description string) (models.SavingsAccount, error) {
	return s.post(ctx, workerID, ledger.Withdraw, ledger.Entry{
		Type:        models.TxWithdrawal,
		Amount:      amount,
		Description: description,
	})
}

type postFunc func(*models.SavingsAccount, ledger.Entry, time.Time) (models.SavingsTransaction, error)

func (s *Service) post(ctx context.Context, workerID string, apply postFunc, e ledger.Entry) (_ models.SavingsAccount, err error) {
	defer func() { s.metrics.ObserveOperation(string(e.Type), err) }()

	unlock := s.locks.lock(workerID)
	defer unlock()

	account, err := s.repo.GetSavingsAccount(ctx, workerID)
	if err != nil {
		return models.SavingsAccount{}, err
	}
	tx, err := apply(&account, e, s.now())
	if err != nil {
		s.log.Warnf("Savings %s of %s rejected for worker %s: %v", e.Type, e.Amount, workerID, err)
		return models.SavingsAccount{}, err
	}
	if err := s.repo.Commit(ctx, repository.Changeset{
		Account:      &account,
		Transactions: []models.SavingsTransaction{tx},
	}); err != nil {
		return models.SavingsAccount{}, err
	}

	s.log.Infof("Savings %s for worker %s: %s, balance %s", tx.Type, workerID, tx.Amount, tx.BalanceAfter)
	return account, nil
}

// ApplyMonthlyInterest credits interest if a full period has passed. It
// reports whether interest was credited.
func (s *Service) ApplyMonthlyInterest(ctx context.Context, workerID string) (models.SavingsAccount, bool, error) {
	unlock := s.locks.lock(workerID)
	defer unlock()

	account, err := s.repo.GetSavingsAccount(ctx, workerID)
	if err != nil {
		return models.SavingsAccount{}, false, err
	}
	lastCalculated := account.LastInterestCalculated
	tx, credited := ledger.ApplyMonthlyInterest(&account, s.now())
	if account.LastInterestCalculated.Equal(lastCalculated) {
		return account, false, nil
	}

	cs := repository.Changeset{Account: &account}
	if credited {
		cs.Transactions = []models.SavingsTransaction{tx}
	}
	if err := s.repo.Commit(ctx, cs); err != nil {
		return models.SavingsAccount{}, false, err
	}

	if credited {
		s.log.Infof("Interest credited for worker %s: %s, balance %s", workerID, tx.Amount, tx.BalanceAfter)
	}
	return account, credited, nil
}

// sweepParallelism bounds how many accounts the interest sweep touches at
// once. Workers lock independently, so accounts can be credited in parallel.
const sweepParallelism = 8

// ApplyInterestAll runs ApplyMonthlyInterest for every worker and returns
// how many accounts were credited. A failing worker does not stop the
// sweep; a cancelled context does.
func (s *Service) ApplyInterestAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListWorkerIDs(ctx)
	if err != nil {
		return 0, err
	}

	var credited atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelism)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, ok, err := s.ApplyMonthlyInterest(gctx, id)
			if err != nil {
				s.log.Errorf("Interest sweep failed for worker %s: %v", id, err)
				return nil
			}
			if ok {
				credited.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	s.log.Infof("Interest sweep finished: %d of %d accounts credited", credited.Load(), len(ids))
	return int(credited.Load()), err
}
