package infrastructure

import (
	"fmt"

	"lambolotto/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeTicketsPurchased:
		return "lotto.tickets.purchased"
	case events.EventTypeCodeRedeemed:
		return "lotto.codes.redeemed"
	case events.EventTypeRoundCompleted:
		return "lotto.rounds.completed"
	case events.EventTypePrizeClaimed:
		return "lotto.prizes.claimed"
	case events.EventTypePrizeUnclaimed:
		return "lotto.prizes.unclaimed"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lotto.tickets.purchased",
		"lotto.codes.redeemed",
		"lotto.rounds.completed",
		"lotto.prizes.claimed",
		"lotto.prizes.unclaimed",
	}
}
