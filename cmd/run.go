package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"matka/api"
	"matka/config"
	"matka/database"
	"matka/metrics"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// ConfigureLogging applies the configured level and picks JSON output in production.
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run starts the ledger API and the metrics server and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	log.WithField("environment", cfg.Environment).Info("Starting matka ledger...")

	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return err
	}

	l, err := newLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer l.close()

	if err := l.seedMarkets(ctx); err != nil {
		return fmt.Errorf("failed to seed markets: %w", err)
	}

	server := api.NewServer(api.Dependencies{
		Wagers:        l.wagers,
		Settlement:    l.settlement,
		Ledger:        l.accounts,
		Markets:       l.markets,
		Health:        l.health,
		Metrics:       l.metrics,
		OperatorToken: cfg.OperatorToken,
		Location:      cfg.MarketTimezone,
	})
	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, l.metrics, l.health)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Listen(cfg.HTTPAddr); err != nil {
			return fmt.Errorf("http api: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.WithField("port", cfg.MetricsPort).Info("Metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Error shutting down HTTP API")
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Error shutting down metrics server")
		}
		return nil
	})

	log.WithFields(log.Fields{
		"addr":     cfg.HTTPAddr,
		"timezone": cfg.MarketTimezone.String(),
	}).Info("Ledger is running")

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Shutdown completed")
	return nil
}
