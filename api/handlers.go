package api

import (
	"context"
	"strconv"

	"matka/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OutcomeResponse is a declared result with its board rendering.
type OutcomeResponse struct {
	*models.Outcome
	Display string `json:"display"`
}

// PlacedWagerResponse is an accepted wager with what it pays on a win.
type PlacedWagerResponse struct {
	*models.Wager
	PotentialPayout decimal.Decimal `json:"potential_payout"`
}

// RateResponse is one row of the payout table.
type RateResponse struct {
	BetType models.BetType  `json:"bet_type"`
	Rate    decimal.Decimal `json:"rate"`
}

// BalanceResponse is an account's current balance.
type BalanceResponse struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.deps.Health != nil {
		if err := s.deps.Health(c.UserContext()); err != nil {
			return JSONError(c, fiber.StatusServiceUnavailable, "unavailable", err.Error())
		}
	}
	return JSONSuccess(c, fiber.StatusOK, "ok", nil)
}

func (s *Server) openAccount(c *fiber.Ctx) error {
	var req OpenAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, models.WrapError(models.KindInvalidInput, err, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return handleError(c, err)
	}

	account, err := s.deps.Ledger.OpenAccount(c.UserContext(), req.Username)
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusCreated, "account opened", account)
}

func (s *Server) getBalance(c *fiber.Ctx) error {
	id := accountID(c)
	balance, err := s.deps.Ledger.GetBalance(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusOK, "balance", BalanceResponse{AccountID: id, Balance: balance})
}

func (s *Server) listWagers(c *fiber.Ctx) error {
	wagers, err := s.deps.Ledger.GetWagerHistory(c.UserContext(), accountID(c), c.QueryInt("limit", 0))
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusOK, "wagers", wagers)
}

func (s *Server) getWager(c *fiber.Ctx) error {
	wagerID, err := pathID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	wager, err := s.deps.Ledger.GetWager(c.UserContext(), accountID(c), wagerID)
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusOK, "wager", wager)
}

func (s *Server) balanceHistory(c *fiber.Ctx) error {
	history, err := s.deps.Ledger.GetBalanceHistory(c.UserContext(), accountID(c), c.QueryInt("limit", 0))
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusOK, "balance history", history)
}

func (s *Server) placeWager(c *fiber.Ctx) error {
	var req PlaceWagerRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, models.WrapError(models.KindInvalidInput, err, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return handleError(c, err)
	}
	svcReq, err := req.ToService(accountID(c), s.now(), s.deps.Location)
	if err != nil {
		return handleError(c, err)
	}

	wager, err := s.deps.Wagers.PlaceWager(c.UserContext(), svcReq)
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusCreated, "wager placed",
		PlacedWagerResponse{Wager: wager, PotentialPayout: wager.PotentialPayout()})
}

func (s *Server) listRates(c *fiber.Ctx) error {
	betTypes := models.BetTypes()
	rates := make([]RateResponse, 0, len(betTypes))
	for _, bt := range betTypes {
		rate, err := models.LookupRate(bt)
		if err != nil {
			return handleError(c, err)
		}
		rates = append(rates, RateResponse{BetType: bt, Rate: rate})
	}
	return JSONSuccess(c, fiber.StatusOK, "rates", rates)
}

func (s *Server) listMarkets(c *fiber.Ctx) error {
	views, err := s.deps.Markets.ListMarkets(c.UserContext(), s.now().In(s.deps.Location))
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusOK, "markets", views)
}

func (s *Server) getOutcome(c *fiber.Ctx) error {
	marketID, err := pathID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	date, err := resolveDate(c.Params("date"), s.now(), s.deps.Location)
	if err != nil {
		return handleError(c, err)
	}

	outcome, err := s.deps.Ledger.GetOutcome(c.UserContext(), marketID, date)
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusOK, "outcome", OutcomeResponse{Outcome: outcome, Display: outcome.Display()})
}

func (s *Server) declareResult(c *fiber.Ctx) error {
	marketID, err := pathID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var req DeclareResultRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, models.WrapError(models.KindInvalidInput, err, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return handleError(c, err)
	}
	svcReq, err := req.ToService(marketID, s.now(), s.deps.Location)
	if err != nil {
		return handleError(c, err)
	}

	// A declaration is not abandoned when the operator's connection drops.
	ctx := context.WithoutCancel(c.UserContext())
	result, err := s.deps.Settlement.DeclareResult(ctx, svcReq)
	if err != nil {
		return handleError(c, err)
	}

	message := "result declared"
	if result.Redeclared {
		message = "result already declared"
	}
	return JSONSuccess(c, fiber.StatusOK, message, result)
}

func (s *Server) setMarketActive(c *fiber.Ctx) error {
	marketID, err := pathID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var req SetMarketActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, models.WrapError(models.KindInvalidInput, err, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return handleError(c, err)
	}

	market, err := s.deps.Markets.SetMarketActive(c.UserContext(), marketID, *req.Active)
	if err != nil {
		return handleError(c, err)
	}
	return JSONSuccess(c, fiber.StatusOK, "market updated", market)
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewError(models.KindInvalidInput, "%s must be a positive integer", name)
	}
	return id, nil
}
