// Package service orchestrates the financial profile engine: it reads
// state from the store, runs the pure scoring, lending and ledger code,
// and commits each operation's writes as one changeset. Every mutation is
// serialized per worker.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/farmworker-finance/internal/config"
	"github.com/Dan9191/farmworker-finance/internal/events"
	"github.com/Dan9191/farmworker-finance/internal/lending"
	"github.com/Dan9191/farmworker-finance/internal/metrics"
	"github.com/Dan9191/farmworker-finance/internal/models"
	"github.com/Dan9191/farmworker-finance/internal/repository"
)

// TokenTTL is how long an operator token stays valid
const TokenTTL = 24 * time.Hour

// Notifier delivers worker-facing messages. It is optional.
type Notifier interface {
	SendPaymentReminder(to, name string, dueDate time.Time, amount decimal.Decimal) error
	SendLoanDisbursed(to, name string, principal, monthlyPayment decimal.Decimal, termMonths int) error
}

// Service handles business logic
type Service struct {
	repo      repository.Store
	log       *logrus.Logger
	config    *config.Config
	catalog   *lending.Catalog
	publisher events.Publisher
	notifier  Notifier
	metrics   *metrics.Metrics
	locks     *workerLocks
	now       func() time.Time
}

// NewService initializes a new service. notifier may be nil.
func NewService(
	repo repository.Store,
	log *logrus.Logger,
	cfg *config.Config,
	publisher events.Publisher,
	notifier Notifier,
) *Service {
	return &Service{
		repo:      repo,
		log:       log,
		config:    cfg,
		catalog:   lending.DefaultCatalog(),
		publisher: publisher,
		notifier:  notifier,
		locks:     newWorkerLocks(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics enables operation metrics
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Login authenticates the operator and returns a JWT token
func (s *Service) Login(username, password string) (string, error) {
	if username != s.config.AdminUsername {
		s.log.Warnf("Login rejected for %q", username)
		return "", models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password)); err != nil {
		s.log.Warnf("Login rejected for %q", username)
		return "", models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("Operator logged in: %s", username)
	return tokenString, nil
}

// publish sends events after a commit. The commit already happened, so a
// delivery failure is logged and swallowed.
func (s *Service) publish(ctx context.Context, evs ...events.Event) {
	if s.publisher == nil || len(evs) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, evs...); err != nil {
		s.log.Errorf("Failed to publish %d event(s) starting with %s: %v", len(evs), evs[0].Type, err)
	}
}

// workerLocks hands out one mutex per worker ID. An entry lives only while
// someone holds or waits on it.
type workerLocks struct {
	mu    sync.Mutex
	locks map[string]*workerLock
}

type workerLock struct {
	sync.Mutex
	refs int
}

func newWorkerLocks() *workerLocks {
	return &workerLocks{locks: make(map[string]*workerLock)}
}

// lock blocks until the worker's mutex is held and returns its release
func (w *workerLocks) lock(workerID string) func() {
	w.mu.Lock()
	l, ok := w.locks[workerID]
	if !ok {
		l = &workerLock{}
		w.locks[workerID] = l
	}
	l.refs++
	w.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		w.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(w.locks, workerID)
		}
		w.mu.Unlock()
	}
}

func (w *workerLocks) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.locks)
}
