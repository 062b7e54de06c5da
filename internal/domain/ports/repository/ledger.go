package repository

import (
	"context"

	"tariff-billing-service/internal/domain/model"
)

type LedgerRepository interface {
	Append(ctx context.Context, tx Tx, e *model.LedgerEntry) error
	ListByAccount(ctx context.Context, tx Tx, accountID string, limit int) ([]*model.LedgerEntry, error)
}
