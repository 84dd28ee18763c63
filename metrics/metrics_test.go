package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"matka/events"
	"matka/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMetrics_CountsEvents(t *testing.T) {
	t.Parallel()
	m := NewLedgerMetrics()
	bus := events.NewBus()
	m.Subscribe(bus)

	ctx := context.Background()
	bus.Emit(ctx, events.WagerPlacedEvent{BetType: models.BetTypeJodi, Stake: decimal.NewFromInt(10)})
	bus.Emit(ctx, events.WagerPlacedEvent{BetType: models.BetTypeJodi, Stake: decimal.NewFromInt(15)})
	bus.Emit(ctx, events.WagerSettledEvent{BetType: models.BetTypeJodi, Status: models.WagerStatusWon, WinAmount: decimal.NewFromInt(950)})
	bus.Emit(ctx, events.ResultDeclaredEvent{Settled: 2, Redeclared: false})
	bus.Wait()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.wagersPlaced.WithLabelValues("jodi")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.stakeTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wagersSettled.WithLabelValues("jodi", "won")))
	assert.Equal(t, 950.0, testutil.ToFloat64(m.payoutTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resultsDeclared.WithLabelValues("false")))
}

func TestMetricsServer(t *testing.T) {
	t.Parallel()
	m := NewLedgerMetrics()
	m.ObserveRequest("GET", "/api/health", 200, 3*time.Millisecond)

	healthy := NewMetricsServer("0", m, func(ctx context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "matka_http_request_duration_seconds"))

	sick := NewMetricsServer("0", m, func(ctx context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	sick.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}
