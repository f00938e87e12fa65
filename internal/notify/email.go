package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/farmworker-finance/internal/config"
)

// sendFunc delivers a prepared email; swapped out in tests
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendPaymentReminder sends an upcoming installment reminder
func (s *Sender) SendPaymentReminder(to, name string, dueDate time.Time, amount decimal.Decimal) error {
	e := email.NewEmail()
	e.Subject = "Upcoming Loan Installment Reminder"
	e.Text = []byte(fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that your loan installment of %s %s is due on %s.\n"+
			"Please ensure sufficient funds are available in your savings account.\n"+
			"\nBest regards,\nFarmworker Finance",
		name, amount.StringFixed(2), s.cfg.Currency, dueDate.Format("2006-01-02"),
	))
	return s.deliver(to, e)
}

// SendLoanDisbursed confirms a loan has been paid into savings
func (s *Sender) SendLoanDisbursed(to, name string, principal, monthlyPayment decimal.Decimal, termMonths int) error {
	e := email.NewEmail()
	e.Subject = "Loan Disbursed"
	e.Text = []byte(fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your loan of %s %s has been deposited into your savings account.\n"+
			"Repayment: %d installments of %s %s, every 30 days.\n"+
			"\nBest regards,\nFarmworker Finance",
		name, principal.StringFixed(2), s.cfg.Currency,
		termMonths, monthlyPayment.StringFixed(2), s.cfg.Currency,
	))
	return s.deliver(to, e)
}

func (s *Sender) deliver(to string, e *email.Email) error {
	e.From = s.cfg.SenderEmail
	e.To = []string{to}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
