package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tariff-billing-service/internal/domain"
	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/repository"
)

// Ensure serviceRepo implements repository.ServiceRepository
var _ repository.ServiceRepository = (*serviceRepo)(nil)

type serviceRepo struct {
	pool *pgxpool.Pool
}

func NewServiceRepo(pool *pgxpool.Pool) *serviceRepo {
	return &serviceRepo{pool: pool}
}

// Finders hydrate the whole aggregate in one round trip: the service
// row, its account and the attached tarif (NULL tarif_id = dormant).
const serviceSelect = `
SELECT s.id, s.group_id, s.payday, s.paid_for, s.tarif_id,
       a.id, a.name, a.balance, a.credit_allowed, a.credit_granted_at, a.credit_active_until, a.access_granted, a.notify_chat_id, a.created_at,
       t.id, t.group_id, t.name, t.price, t.pay_period_months, t.base_price_per_day, t.speed_mbit, t.type, t.created_at
  FROM services s
  JOIN accounts a ON a.id = s.account_id
  LEFT JOIN tarifs t ON t.id = s.tarif_id`

// Save persists the service row only; the account travels through
// AccountRepository inside the same transaction.
func (r *serviceRepo) Save(ctx context.Context, tx repository.Tx, s *model.Service) error {
	var tarifID *int64
	if s.IsActive() {
		tarifID = &s.Tarif.ID
	}
	const q = `
INSERT INTO services (id, group_id, account_id, tarif_id, payday, paid_for)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  tarif_id=$4, payday=$5, paid_for=$6;`
	if _, err := execSQL(ctx, r.pool, tx, q, s.ID, s.GroupID, s.Account.ID, tarifID, s.Payday, s.PaidFor); err != nil {
		return fmt.Errorf("save service: %w", err)
	}
	return nil
}

func (r *serviceRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Service, error) {
	q := serviceSelect + ` WHERE s.id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	s, err := scanService(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find service: %w", err)
	}
	return s, nil
}

func (r *serviceRepo) FindDue(ctx context.Context, tx repository.Tx, asOf time.Time) ([]*model.Service, error) {
	q := serviceSelect + `
 WHERE s.tarif_id IS NOT NULL
   AND s.payday <= $1
 ORDER BY s.payday ASC;`
	return r.list(ctx, tx, q, asOf)
}

func (r *serviceRepo) FindUpcoming(ctx context.Context, tx repository.Tx, asOf time.Time, withinDays int) ([]*model.Service, error) {
	q := serviceSelect + `
 WHERE s.tarif_id IS NOT NULL
   AND s.payday > $1
   AND s.payday <= $1 + ($2::int * INTERVAL '1 day')
 ORDER BY s.payday ASC;`
	return r.list(ctx, tx, q, asOf, withinDays)
}

func (r *serviceRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM services WHERE tarif_id IS NOT NULL;`
	row, err := queryRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count active services: %w", err)
	}
	return n, nil
}

func (r *serviceRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Service, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []*model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanService(row pgx.Row) (*model.Service, error) {
	var (
		s       model.Service
		tarifID *int64

		acc         model.Account
		balance     int64
		allowed     bool
		grantedAt   *time.Time
		activeUntil *time.Time

		tID        *int64
		tGroupID   *int
		tName      *string
		tPrice     *int64
		tMonths    *int
		tBasePPD   *int64
		tSpeed     *int
		tType      *string
		tCreatedAt *time.Time
	)
	if err := row.Scan(
		&s.ID, &s.GroupID, &s.Payday, &s.PaidFor, &tarifID,
		&acc.ID, &acc.Name, &balance, &allowed, &grantedAt, &activeUntil, &acc.AccessGranted, &acc.NotifyChatID, &acc.CreatedAt,
		&tID, &tGroupID, &tName, &tPrice, &tMonths, &tBasePPD, &tSpeed, &tType, &tCreatedAt,
	); err != nil {
		return nil, err
	}

	acc.Balance = model.NewBalance(balance)
	acc.CreditAccess = &model.CreditAccess{Allowed: allowed}
	if grantedAt != nil {
		acc.CreditAccess.GrantedAt = *grantedAt
	}
	if activeUntil != nil {
		acc.CreditAccess.ActiveUntil = *activeUntil
	}
	s.Account = &acc

	if tID == nil {
		s.Tarif = model.InactiveTarif()
	} else {
		s.Tarif = &model.Tarif{
			ID:              *tID,
			GroupID:         *tGroupID,
			Name:            *tName,
			Price:           *tPrice,
			PayPeriodMonths: *tMonths,
			BasePricePerDay: *tBasePPD,
			SpeedMbit:       *tSpeed,
			Type:            *tType,
			CreatedAt:       *tCreatedAt,
		}
	}
	return &s, nil
}
