package repository

import (
	"context"

	"tariff-billing-service/internal/domain/model"
)

type TarifRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Tarif) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Tarif, error)
	List(ctx context.Context, tx Tx) ([]*model.Tarif, error)
	ListByGroup(ctx context.Context, tx Tx, groupID int) ([]*model.Tarif, error)
}
