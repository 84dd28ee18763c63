package infrastructure

import (
	"fmt"

	"matka/events"
)

// EventSubjectMapper maps ledger events to NATS subjects
type EventSubjectMapper struct {
	prefix string
}

// NewEventSubjectMapper creates a mapper whose subjects start with prefix
func NewEventSubjectMapper(prefix string) *EventSubjectMapper {
	return &EventSubjectMapper{prefix: prefix}
}

// MapEventToSubject converts an event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.subject(event.Type())
}

func (m *EventSubjectMapper) subject(t events.EventType) string {
	var s string
	switch t {
	case events.EventTypeBalanceChange:
		s = "accounts.balance_changed"
	case events.EventTypeAccountOpened:
		s = "accounts.opened"
	case events.EventTypeWagerPlaced:
		s = "wagers.placed"
	case events.EventTypeWagerSettled:
		s = "wagers.settled"
	case events.EventTypeResultDeclared:
		s = "results.declared"
	default:
		s = fmt.Sprintf("unknown.%s", t)
	}
	return m.prefix + "." + s
}

// GetAllSubjects returns every subject the ledger publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	types := events.AllEventTypes()
	subjects := make([]string, 0, len(types))
	for _, t := range types {
		subjects = append(subjects, m.subject(t))
	}
	return subjects
}
