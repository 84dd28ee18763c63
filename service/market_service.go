package service

import (
	"context"
	"time"

	"matka/config"
	"matka/models"

	log "github.com/sirupsen/logrus"
)

type marketService struct {
	uowFactory UnitOfWorkFactory
	location   *time.Location
	timeout    time.Duration
}

// NewMarketService creates the market schedule service
func NewMarketService(uowFactory UnitOfWorkFactory, cfg *config.Config) MarketService {
	loc := cfg.MarketTimezone
	if loc == nil {
		loc = time.UTC
	}
	return &marketService{
		uowFactory: uowFactory,
		location:   loc,
		timeout:    cfg.LedgerTimeout,
	}
}

// SeedMarkets upserts the schedule table by market name.
func (s *marketService) SeedMarkets(ctx context.Context, markets []*models.Market) error {
	for _, m := range markets {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for _, m := range markets {
		if err := uow.MarketRepository().Upsert(ctx, m); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}
	log.WithField("count", len(markets)).Info("Market schedule seeded")
	return nil
}

// ListMarkets returns every market with its status at now and today's result.
func (s *marketService) ListMarkets(ctx context.Context, now time.Time) ([]*models.MarketView, error) {
	local := now.In(s.location)
	today := models.DateOnly(local)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	markets, err := uow.MarketRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	outcomes, err := uow.OutcomeRepository().GetByDate(ctx, today)
	if err != nil {
		return nil, err
	}

	results := make(map[int64]string, len(outcomes))
	for _, o := range outcomes {
		if o.Declared {
			results[o.MarketID] = o.Display()
		}
	}

	views := make([]*models.MarketView, 0, len(markets))
	for _, m := range markets {
		result, ok := results[m.ID]
		if !ok {
			result = "***-**-***"
		}
		views = append(views, &models.MarketView{
			Market: *m,
			Status: m.StatusAt(local),
			Result: result,
		})
	}
	return views, nil
}

// SetMarketActive toggles whether a market accepts wagers.
func (s *marketService) SetMarketActive(ctx context.Context, marketID int64, active bool) (*models.Market, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, models.NewError(models.KindUnknownMarket, "market %d does not exist", marketID)
	}

	if err := uow.MarketRepository().SetActive(ctx, marketID, active); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	market.Active = active
	log.WithFields(log.Fields{
		"market": market.Name,
		"active": active,
	}).Info("Market activation changed")
	return market, nil
}
