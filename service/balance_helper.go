package service

import (
	"context"
	"fmt"

	"matka/events"
	"matka/models"
)

// RecordBalanceChange records a balance history entry and emits appropriate events.
// Every single balance mutation in the ledger goes through here.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}
	publishBalanceChange(uow, history)
	return nil
}

// RecordBalanceChanges is RecordBalanceChange for a batch of entries, written in one round trip.
func RecordBalanceChanges(ctx context.Context, uow UnitOfWork, histories []*models.BalanceHistory) error {
	if len(histories) == 0 {
		return nil
	}
	if err := uow.BalanceHistoryRepository().RecordBatch(ctx, histories); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}
	for _, history := range histories {
		publishBalanceChange(uow, history)
	}
	return nil
}

func publishBalanceChange(uow UnitOfWork, history *models.BalanceHistory) {
	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       history.AccountID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		username, _ := history.TransactionMetadata["username"].(string)
		uow.EventBus().Publish(events.AccountOpenedEvent{
			AccountID:      history.AccountID,
			Username:       username,
			InitialBalance: history.BalanceAfter,
		})
	}
}

func relatedWager(id int64) (*int64, *models.RelatedType) {
	rt := models.RelatedTypeWager
	return &id, &rt
}
