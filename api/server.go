package api

import (
	"context"
	"time"

	"matka/metrics"
	"matka/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
)

// Dependencies are the services and settings the HTTP API is built on.
type Dependencies struct {
	Wagers     service.WagerService
	Settlement service.SettlementService
	Ledger     service.LedgerService
	Markets    service.MarketService

	// Health reports whether the backing stores are reachable. Optional.
	Health  func(ctx context.Context) error
	Metrics *metrics.LedgerMetrics

	OperatorToken string
	Location      *time.Location
	Now           func() time.Time
}

// Server is the public HTTP API.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

func NewServer(deps Dependencies) *Server {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:               "matka-ledger",
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	s := &Server{app: app, deps: deps}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(RequestLogger(s.deps.Metrics))
	s.app.Use(recover.New())

	api := s.app.Group("/api")
	api.Get("/health", s.health)
	api.Post("/accounts", s.openAccount)
	api.Get("/markets", s.listMarkets)
	api.Get("/rates", s.listRates)
	api.Get("/markets/:id/outcomes/:date", s.getOutcome)

	me := api.Group("/me", AccountAuth)
	me.Get("/balance", s.getBalance)
	me.Get("/wagers", s.listWagers)
	me.Get("/wagers/:id", s.getWager)
	me.Get("/history", s.balanceHistory)

	api.Post("/wagers", AccountAuth, s.placeWager)

	operator := OperatorAuth(s.deps.OperatorToken)
	api.Post("/markets/:id/outcomes", operator, s.declareResult)
	api.Patch("/markets/:id", operator, s.setMarketActive)
}

func (s *Server) now() time.Time {
	return s.deps.Now()
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	log.WithField("addr", addr).Info("HTTP API listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
