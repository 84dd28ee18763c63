package cmd

import (
	"context"
	"fmt"

	"matka/config"
	"matka/database"
	"matka/events"
	"matka/infrastructure"
	"matka/metrics"
	"matka/repository"
	"matka/service"

	log "github.com/sirupsen/logrus"
)

// ledger is the wired core shared by the server and the admin commands.
type ledger struct {
	cfg     *config.Config
	db      *database.DB
	bus     *events.Bus
	redis   *infrastructure.RedisClient
	sink    infrastructure.EventSink
	metrics *metrics.LedgerMetrics

	wagers     service.WagerService
	settlement service.SettlementService
	accounts   service.LedgerService
	markets    service.MarketService
}

func newLedger(ctx context.Context, cfg *config.Config) (*ledger, error) {
	l := &ledger{cfg: cfg}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.LockTimeout = cfg.LockTimeout
	l.db = db

	l.bus = events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, l.bus)

	var (
		cache  service.OutcomeCache
		locker service.DeclarationLocker
	)
	if cfg.RedisAddr != "" {
		rc, err := infrastructure.NewRedisClient(ctx, infrastructure.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			l.close()
			return nil, err
		}
		l.redis = rc

		outcomeCache := infrastructure.NewRedisOutcomeCache(rc, cfg.OutcomeCacheTTL)
		infrastructure.RegisterOutcomeCacheRefresher(l.bus, outcomeCache)
		cache = outcomeCache
		locker = infrastructure.NewRedisDeclarationLocker(rc)
		log.WithField("addr", cfg.RedisAddr).Info("Outcome cache and declaration lock enabled")
	}

	sink, err := newEventSink(ctx, cfg)
	if err != nil {
		l.close()
		return nil, err
	}
	if sink != nil {
		infrastructure.RegisterExporter(l.bus, sink)
		l.sink = sink
	}

	l.metrics = metrics.NewLedgerMetrics()
	l.metrics.Subscribe(l.bus)

	l.wagers = service.NewWagerService(uowFactory, cfg)
	l.settlement = service.NewSettlementService(uowFactory, locker, cfg)
	l.accounts = service.NewLedgerService(uowFactory, cache, cfg)
	l.markets = service.NewMarketService(uowFactory, cfg)
	return l, nil
}

func newEventSink(ctx context.Context, cfg *config.Config) (infrastructure.EventSink, error) {
	switch cfg.EventSink {
	case config.EventSinkNATS:
		client := infrastructure.NewNATSClient(cfg.NATSURL)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher := infrastructure.NewNATSEventPublisher(client, cfg.NATSStream)
		if err := publisher.EnsureStream(); err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("failed to ensure NATS stream: %w", err)
		}
		log.WithFields(log.Fields{"url": cfg.NATSURL, "stream": cfg.NATSStream}).Info("Exporting events to NATS")
		return publisher, nil

	case config.EventSinkKafka:
		writer := infrastructure.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.WithFields(log.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("Exporting events to Kafka")
		return infrastructure.NewKafkaEventPublisher(writer), nil

	default:
		return nil, nil
	}
}

// health checks every store the ledger depends on.
func (l *ledger) health(ctx context.Context) error {
	if err := l.db.Health(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if l.redis != nil {
		if err := l.redis.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// seedMarkets upserts the configured market schedule.
func (l *ledger) seedMarkets(ctx context.Context) error {
	schedule, err := config.LoadSchedule(l.cfg.MarketSchedulePath)
	if err != nil {
		return err
	}
	markets, err := schedule.ToMarkets()
	if err != nil {
		return err
	}
	return l.markets.SeedMarkets(ctx, markets)
}

// close waits for in-flight event handlers, then releases connections.
func (l *ledger) close() {
	if l.bus != nil {
		l.bus.Wait()
	}
	if l.sink != nil {
		if err := l.sink.Close(); err != nil {
			log.WithError(err).Warn("Error closing event sink")
		}
	}
	if l.redis != nil {
		if err := l.redis.Close(); err != nil {
			log.WithError(err).Warn("Error closing redis client")
		}
	}
	if l.db != nil {
		log.Info("Closing database connection...")
		l.db.Close()
	}
}
