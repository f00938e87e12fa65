// Package scheduler runs the periodic jobs: the monthly interest sweep and
// loan payment reminders.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/farmworker-finance/internal/config"
)

// Jobs is the work the scheduler triggers
type Jobs interface {
	ApplyInterestAll(ctx context.Context) (int, error)
	SendPaymentReminders(ctx context.Context, window time.Duration) (int, error)
}

// jobTimeout bounds a single run of either job
const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron           *cron.Cron
	jobs           Jobs
	log            *logrus.Logger
	reminderWindow time.Duration
}

// New registers both jobs on their configured cron schedules
func New(cfg *config.Config, jobs Jobs, log *logrus.Logger) (*Scheduler, error) {
	cronLog := cron.PrintfLogger(log)
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		jobs:           jobs,
		log:            log,
		reminderWindow: time.Duration(cfg.ReminderWindowDays) * 24 * time.Hour,
	}

	if _, err := s.cron.AddFunc(cfg.InterestSchedule, s.RunInterestSweep); err != nil {
		return nil, fmt.Errorf("invalid interest schedule %q: %w", cfg.InterestSchedule, err)
	}
	if _, err := s.cron.AddFunc(cfg.ReminderSchedule, s.RunReminders); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", cfg.ReminderSchedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before running jobs finished")
	}
}

// RunInterestSweep credits monthly interest on every due account
func (s *Scheduler) RunInterestSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	credited, err := s.jobs.ApplyInterestAll(ctx)
	if err != nil {
		s.log.Errorf("Interest sweep failed after %d accounts: %v", credited, err)
	}
}

// RunReminders emails workers with an installment due soon
func (s *Scheduler) RunReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.jobs.SendPaymentReminders(ctx, s.reminderWindow); err != nil {
		s.log.Errorf("Payment reminders failed: %v", err)
	}
}
