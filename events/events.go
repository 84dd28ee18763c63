package events

import (
	"context"
	"sync"
	"time"

	"matka/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountOpened  EventType = "account_opened"
	EventTypeWagerPlaced    EventType = "wager_placed"
	EventTypeWagerSettled   EventType = "wager_settled"
	EventTypeResultDeclared EventType = "result_declared"
)

// AllEventTypes lists every event the ledger emits.
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeBalanceChange,
		EventTypeAccountOpened,
		EventTypeWagerPlaced,
		EventTypeWagerSettled,
		EventTypeResultDeclared,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	AccountID       int64                  `json:"account_id"`
	OldBalance      decimal.Decimal        `json:"old_balance"`
	NewBalance      decimal.Decimal        `json:"new_balance"`
	ChangeAmount    decimal.Decimal        `json:"change_amount"`
	TransactionType models.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountOpenedEvent represents a newly registered account
type AccountOpenedEvent struct {
	AccountID      int64           `json:"account_id"`
	Username       string          `json:"username"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

func (e AccountOpenedEvent) Type() EventType {
	return EventTypeAccountOpened
}

// WagerPlacedEvent represents a stake accepted by wager intake
type WagerPlacedEvent struct {
	WagerID   int64           `json:"wager_id"`
	AccountID int64           `json:"account_id"`
	MarketID  int64           `json:"market_id"`
	BetType   models.BetType  `json:"bet_type"`
	Session   models.Session  `json:"session"`
	Date      time.Time       `json:"date"`
	Stake     decimal.Decimal `json:"stake"`
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// WagerSettledEvent represents one wager moving out of pending
type WagerSettledEvent struct {
	WagerID   int64              `json:"wager_id"`
	AccountID int64              `json:"account_id"`
	MarketID  int64              `json:"market_id"`
	BetType   models.BetType     `json:"bet_type"`
	Status    models.WagerStatus `json:"status"`
	WinAmount decimal.Decimal    `json:"win_amount"`
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// ResultDeclaredEvent represents a committed declaration and its settlement totals
type ResultDeclaredEvent struct {
	Outcome    models.Outcome  `json:"outcome"`
	Settled    int             `json:"settled"`
	Won        int             `json:"won"`
	Lost       int             `json:"lost"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Redeclared bool            `json:"redeclared"`
}

func (e ResultDeclaredEvent) Type() EventType {
	return EventTypeResultDeclared
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every event type the ledger emits
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range AllEventTypes() {
		b.Subscribe(t, handler)
	}
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously and a panicking handler is logged, not propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started so far has returned. Used on shutdown
// so exporters finish in-flight events.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits, then forwards them to the underlying bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Handlers outlive the request; don't hand them a context that is about to be cancelled.
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	log.WithField("eventCount", len(b.pending)).Debug("Flushed pending events")
	b.pending = nil
}

// Discard drops queued events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events.
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
