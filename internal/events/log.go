package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher writes events to the log when no broker is configured
type LogPublisher struct {
	log *logrus.Logger
}

// NewLogPublisher creates a log-backed publisher
func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, events ...Event) error {
	for _, e := range events {
		p.log.WithFields(logrus.Fields{
			"event_id":     e.ID,
			"event_type":   e.Type,
			"worker_id":    e.WorkerID,
			"aggregate_id": e.AggregateID,
		}).Info("Domain event")
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
