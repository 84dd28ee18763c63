package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"matka/events"
	"matka/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

type mockNATS struct {
	mock.Mock
}

func (m *mockNATS) Publish(ctx context.Context, subject string, data []byte) error {
	return m.Called(ctx, subject, data).Error(0)
}

func (m *mockNATS) EnsureStream(streamName string, subjects []string) error {
	return m.Called(streamName, subjects).Error(0)
}

func (m *mockNATS) Close() error {
	return m.Called().Error(0)
}

func settledEvent() events.WagerSettledEvent {
	return events.WagerSettledEvent{
		WagerID:   11,
		AccountID: 7,
		MarketID:  3,
		BetType:   models.BetTypeSingle,
		Status:    models.WagerStatusWon,
		WinAmount: decimal.NewFromInt(950),
	}
}

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()
	m := NewEventSubjectMapper("matka")

	assert.Equal(t, "matka.wagers.settled", m.MapEventToSubject(settledEvent()))
	assert.Equal(t, "matka.results.declared", m.MapEventToSubject(events.ResultDeclaredEvent{}))

	subjects := m.GetAllSubjects()
	assert.Len(t, subjects, len(events.AllEventTypes()))
	for _, s := range subjects {
		assert.NotContains(t, s, "unknown")
	}
}

func TestNewEventEnvelope(t *testing.T) {
	t.Parallel()

	env, err := NewEventEnvelope(settledEvent())
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "wager_settled", env.EventType)
	assert.Equal(t, sourceService, env.SourceService)
	assert.WithinDuration(t, time.Now(), env.Timestamp, time.Minute)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "won", payload["status"])
	assert.Equal(t, "950", payload["win_amount"])

	other, err := NewEventEnvelope(settledEvent())
	require.NoError(t, err)
	assert.NotEqual(t, env.EventID, other.EventID)
}

func TestKafkaEventPublisher_Publish(t *testing.T) {
	t.Parallel()
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		var env EventEnvelope
		if err := json.Unmarshal(msgs[0].Value, &env); err != nil {
			return false
		}
		return string(msgs[0].Key) == "account:7" && env.EventType == "wager_settled"
	})).Return(nil)

	p := &KafkaEventPublisher{writer: w}
	require.NoError(t, p.Publish(context.Background(), settledEvent()))
	w.AssertExpectations(t)
}

func TestKafkaEventPublisher_WriteFailure(t *testing.T) {
	t.Parallel()
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

	p := &KafkaEventPublisher{writer: w}
	err := p.Publish(context.Background(), settledEvent())
	assert.ErrorContains(t, err, "leader not available")
}

func TestMessageKey(t *testing.T) {
	t.Parallel()
	declared := events.ResultDeclaredEvent{Outcome: models.Outcome{MarketID: 4}}
	assert.Equal(t, "market:4", messageKey(declared))
	assert.Equal(t, "account:9", messageKey(events.BalanceChangeEvent{AccountID: 9}))
}

func TestNATSEventPublisher(t *testing.T) {
	t.Parallel()
	client := new(mockNATS)
	client.On("EnsureStream", "MATKA", mock.MatchedBy(func(s []string) bool { return len(s) == 5 })).Return(nil)
	client.On("Publish", mock.Anything, "matka.wagers.settled", mock.Anything).Return(nil)

	p := newNATSEventPublisher(client, "MATKA")
	require.NoError(t, p.EnsureStream())
	require.NoError(t, p.Publish(context.Background(), settledEvent()))
	client.AssertExpectations(t)
}

type recordingSink struct {
	published chan events.Event
	err       error
}

func (s *recordingSink) Publish(ctx context.Context, event events.Event) error {
	s.published <- event
	return s.err
}

func (s *recordingSink) Close() error { return nil }

func TestRegisterExporter_ForwardsEveryEventType(t *testing.T) {
	t.Parallel()
	bus := events.NewBus()
	sink := &recordingSink{published: make(chan events.Event, 10), err: errors.New("sink down")}
	RegisterExporter(bus, sink)

	bus.Emit(context.Background(), settledEvent())
	bus.Emit(context.Background(), events.AccountOpenedEvent{AccountID: 1})
	bus.Wait()

	assert.Len(t, sink.published, 2)
}
