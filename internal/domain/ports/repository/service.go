package repository

import (
	"context"
	"time"

	"tariff-billing-service/internal/domain/model"
)

// ServiceRepository loads and stores the subscription aggregate. Finders
// hydrate the owned Account and attached Tarif; Save persists only the
// service row itself — the account travels through AccountRepository in
// the same transaction.
type ServiceRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Service) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Service, error)
	// FindDue returns active services whose payday is on or before asOf.
	FindDue(ctx context.Context, tx Tx, asOf time.Time) ([]*model.Service, error)
	// FindUpcoming returns active services whose payday falls within the
	// given number of days from asOf.
	FindUpcoming(ctx context.Context, tx Tx, asOf time.Time, withinDays int) ([]*model.Service, error)
	CountActive(ctx context.Context, tx Tx) (int, error)
}
