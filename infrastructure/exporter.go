package infrastructure

import (
	"context"
	"time"

	"matka/events"
	"matka/service"

	log "github.com/sirupsen/logrus"
)

// EventSink is an external destination for committed ledger events
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
	Close() error
}

const exportTimeout = 5 * time.Second

// RegisterExporter forwards every event on the bus to sink. Export failures
// are logged; the ledger state they describe is already committed.
func RegisterExporter(bus *events.Bus, sink EventSink) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		ctx, cancel := context.WithTimeout(ctx, exportTimeout)
		defer cancel()

		if err := sink.Publish(ctx, event); err != nil {
			log.WithError(err).WithField("eventType", event.Type()).Error("Failed to export event")
		}
	})
}

// RegisterOutcomeCacheRefresher writes every declared result into the cache so
// readers see it without a database round trip.
func RegisterOutcomeCacheRefresher(bus *events.Bus, cache service.OutcomeCache) {
	bus.Subscribe(events.EventTypeResultDeclared, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.ResultDeclaredEvent)
		if !ok {
			return
		}
		outcome := e.Outcome
		if err := cache.Set(ctx, &outcome); err != nil {
			log.WithError(err).WithField("marketID", outcome.MarketID).Warn("Failed to refresh outcome cache")
		}
	})
}
