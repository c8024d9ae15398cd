package infrastructure

import (
	"context"

	"lambolotto/application"
	"lambolotto/domain/events"
	"lambolotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher holds events until flush, then publishes
// them to NATS. One instance backs one unit of work, so events are
// published only after the database transaction commits.
type NATSTransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

// NewNATSTransactionalPublisher creates a new transactional publisher
func NewNATSTransactionalPublisher(realPublisher interfaces.EventPublisher) application.TransactionalEventPublisher {
	return &NATSTransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without publishing it
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"pendingCount": len(p.pending),
	}).Debug("Buffering event until commit")

	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events. Called after a successful commit;
// individual failures are logged and do not block the rest.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(p.pending),
	}).Debug("Flushing pending events")

	for _, event := range p.pending {
		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	p.pending = p.pending[:0]
	return nil
}

// Discard clears all pending events without publishing them
func (p *NATSTransactionalPublisher) Discard() {
	log.WithFields(log.Fields{
		"discardedEventCount": len(p.pending),
	}).Debug("Discarding pending events")

	p.pending = p.pending[:0]
}
