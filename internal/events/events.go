// Package events publishes domain events after state has been committed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	WorkerRegistered     = "worker.registered"
	CreditProfileUpdated = "credit_profile.updated"
	LoanDisbursed        = "loan.disbursed"
	LoanPaymentReceived  = "loan.payment_received"
	LoanPaidOff          = "loan.paid_off"
)

// Event is a fact about a worker's finances
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	WorkerID    string         `json:"workerId"`
	AggregateID string         `json:"aggregateId"`
	Payload     map[string]any `json:"payload,omitempty"`
	OccurredAt  time.Time      `json:"occurredAt"`
}

// New stamps an event with a fresh ID
func New(eventType, workerID, aggregateID string, payload map[string]any, at time.Time) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		WorkerID:    workerID,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  at,
	}
}

// Publisher delivers events to consumers
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}
