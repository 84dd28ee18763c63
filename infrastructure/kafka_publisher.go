package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"matka/events"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// messageWriter is the part of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher exports committed ledger events to a Kafka topic. Messages
// are keyed by account (or market for declarations) so each key stays ordered.
type KafkaEventPublisher struct {
	writer messageWriter
}

// NewKafkaWriter creates a writer for a comma separated broker list
func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// NewKafkaEventPublisher creates a publisher on top of a writer
func NewKafkaEventPublisher(w *kafka.Writer) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: w}
}

// messageKey partitions events by the entity they belong to
func messageKey(event events.Event) string {
	switch e := event.(type) {
	case events.BalanceChangeEvent:
		return "account:" + strconv.FormatInt(e.AccountID, 10)
	case events.AccountOpenedEvent:
		return "account:" + strconv.FormatInt(e.AccountID, 10)
	case events.WagerPlacedEvent:
		return "account:" + strconv.FormatInt(e.AccountID, 10)
	case events.WagerSettledEvent:
		return "account:" + strconv.FormatInt(e.AccountID, 10)
	case events.ResultDeclaredEvent:
		return "market:" + strconv.FormatInt(e.Outcome.MarketID, 10)
	default:
		return string(event.Type())
	}
}

// Publish writes the enveloped event to the topic
func (p *KafkaEventPublisher) Publish(ctx context.Context, event events.Event) error {
	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(messageKey(event)),
		Value: value,
		Time:  envelope.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(envelope.EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
	}).Debug("Published event to Kafka")
	return nil
}

// Close flushes and closes the writer
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
