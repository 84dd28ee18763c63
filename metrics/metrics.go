package metrics

import (
	"context"
	"strconv"
	"time"

	"matka/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// LedgerMetrics holds the Prometheus instruments fed from the event bus
type LedgerMetrics struct {
	registry *prometheus.Registry

	accountsOpened   prometheus.Counter
	wagersPlaced     *prometheus.CounterVec
	stakeTotal       prometheus.Counter
	wagersSettled    *prometheus.CounterVec
	payoutTotal      prometheus.Counter
	resultsDeclared  *prometheus.CounterVec
	settlementBatch  prometheus.Histogram
	requestDuration  *prometheus.HistogramVec
	balanceMovements *prometheus.CounterVec
}

// NewLedgerMetrics creates and registers every instrument on a fresh registry
func NewLedgerMetrics() *LedgerMetrics {
	m := &LedgerMetrics{
		registry: prometheus.NewRegistry(),
		accountsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matka_accounts_opened_total",
			Help: "Accounts opened",
		}),
		wagersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matka_wagers_placed_total",
			Help: "Wagers accepted, by bet type",
		}, []string{"bet_type"}),
		stakeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matka_stake_amount_total",
			Help: "Sum of accepted stakes",
		}),
		wagersSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matka_wagers_settled_total",
			Help: "Wagers settled, by bet type and status",
		}, []string{"bet_type", "status"}),
		payoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matka_payout_amount_total",
			Help: "Sum of winnings credited",
		}),
		resultsDeclared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matka_results_declared_total",
			Help: "Result declarations, split by whether they repeated an earlier one",
		}, []string{"redeclared"}),
		settlementBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matka_settlement_batch_size",
			Help:    "Wagers settled per declaration",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matka_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		balanceMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matka_balance_changes_total",
			Help: "Balance changes, by transaction type",
		}, []string{"transaction_type"}),
	}

	m.registry.MustRegister(
		m.accountsOpened,
		m.wagersPlaced,
		m.stakeTotal,
		m.wagersSettled,
		m.payoutTotal,
		m.resultsDeclared,
		m.settlementBatch,
		m.requestDuration,
		m.balanceMovements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the instruments live on
func (m *LedgerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Subscribe feeds the instruments from committed events
func (m *LedgerMetrics) Subscribe(bus *events.Bus) {
	bus.SubscribeAll(m.handle)
}

func (m *LedgerMetrics) handle(_ context.Context, event events.Event) {
	switch e := event.(type) {
	case events.AccountOpenedEvent:
		m.accountsOpened.Inc()
	case events.WagerPlacedEvent:
		m.wagersPlaced.WithLabelValues(string(e.BetType)).Inc()
		m.stakeTotal.Add(e.Stake.InexactFloat64())
	case events.WagerSettledEvent:
		m.wagersSettled.WithLabelValues(string(e.BetType), string(e.Status)).Inc()
		m.payoutTotal.Add(e.WinAmount.InexactFloat64())
	case events.ResultDeclaredEvent:
		m.resultsDeclared.WithLabelValues(strconv.FormatBool(e.Redeclared)).Inc()
		m.settlementBatch.Observe(float64(e.Settled))
	case events.BalanceChangeEvent:
		m.balanceMovements.WithLabelValues(string(e.TransactionType)).Inc()
	}
}

// ObserveRequest records one HTTP request
func (m *LedgerMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
