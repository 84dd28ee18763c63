package cmd

import (
	"context"
	"fmt"
	"strconv"

	"matka/config"
	"matka/models"
	"matka/service"

	log "github.com/sirupsen/logrus"
)

// Declare declares a result from the command line and settles the day's wagers.
// Usage: declare <market-id> <YYYY-MM-DD> <open-panel> <close-panel>
func Declare(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: matka declare <market-id> <YYYY-MM-DD> <open-panel> <close-panel>")
	}
	marketID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid market id %q", args[0])
	}
	date, err := models.ParseDate(args[1])
	if err != nil {
		return err
	}

	l, err := newLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer l.close()

	result, err := l.settlement.DeclareResult(ctx, service.DeclareResultRequest{
		MarketID:   marketID,
		Date:       date,
		OpenPanel:  args[2],
		ClosePanel: args[3],
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"marketID":   marketID,
		"date":       args[1],
		"result":     result.Outcome.Display(),
		"settled":    result.Settled,
		"won":        result.Won,
		"lost":       result.Lost,
		"totalPaid":  result.TotalPaid.StringFixed(2),
		"redeclared": result.Redeclared,
	}).Info("Result declared")
	return nil
}

// OpenAccount registers a player from the command line.
// Usage: open-account <username>
func OpenAccount(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: matka open-account <username>")
	}

	l, err := newLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer l.close()

	account, err := l.accounts.OpenAccount(ctx, args[0])
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"username":  account.Username,
		"balance":   account.Balance.StringFixed(2),
	}).Info("Account opened")
	return nil
}
