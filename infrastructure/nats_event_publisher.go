package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"matka/events"

	log "github.com/sirupsen/logrus"
)

// natsPublisher is the part of NATSClient the event publisher needs
type natsPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	EnsureStream(streamName string, subjects []string) error
	Close() error
}

// NATSEventPublisher exports committed ledger events to NATS
type NATSEventPublisher struct {
	client        natsPublisher
	subjectMapper *EventSubjectMapper
	stream        string
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(client *NATSClient, stream string) *NATSEventPublisher {
	return newNATSEventPublisher(client, stream)
}

func newNATSEventPublisher(client natsPublisher, stream string) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: NewEventSubjectMapper("matka"),
		stream:        stream,
	}
}

// EnsureStream makes sure the stream covering every ledger subject exists
func (p *NATSEventPublisher) EnsureStream() error {
	return p.client.EnsureStream(p.stream, p.subjectMapper.GetAllSubjects())
}

// Publish wraps the event in an envelope and publishes it on its subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	if err := p.client.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")
	return nil
}

// Close closes the underlying connection
func (p *NATSEventPublisher) Close() error {
	return p.client.Close()
}
