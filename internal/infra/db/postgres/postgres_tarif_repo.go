package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tariff-billing-service/internal/domain"
	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/repository"
)

// Ensure tarifRepo implements repository.TarifRepository
var _ repository.TarifRepository = (*tarifRepo)(nil)

type tarifRepo struct {
	pool *pgxpool.Pool
}

func NewTarifRepo(pool *pgxpool.Pool) *tarifRepo {
	return &tarifRepo{pool: pool}
}

const tarifColumns = `id, group_id, name, price, pay_period_months, base_price_per_day, speed_mbit, type, created_at`

// Save inserts a new tarif (id assigned by the database when zero) or
// updates an existing one.
func (r *tarifRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tarif) error {
	if t.ID == 0 {
		const q = `
INSERT INTO tarifs (group_id, name, price, pay_period_months, base_price_per_day, speed_mbit, type, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id;`
		row, err := queryRow(ctx, r.pool, tx, q, t.GroupID, t.Name, t.Price, t.PayPeriodMonths, t.BasePricePerDay, t.SpeedMbit, t.Type, t.CreatedAt)
		if err != nil {
			return err
		}
		if err := row.Scan(&t.ID); err != nil {
			return fmt.Errorf("insert tarif: %w", err)
		}
		return nil
	}

	const q = `
INSERT INTO tarifs (id, group_id, name, price, pay_period_months, base_price_per_day, speed_mbit, type, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  group_id=$2, name=$3, price=$4, pay_period_months=$5, base_price_per_day=$6, speed_mbit=$7, type=$8;`
	if _, err := execSQL(ctx, r.pool, tx, q, t.ID, t.GroupID, t.Name, t.Price, t.PayPeriodMonths, t.BasePricePerDay, t.SpeedMbit, t.Type, t.CreatedAt); err != nil {
		return fmt.Errorf("save tarif: %w", err)
	}
	return nil
}

func (r *tarifRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Tarif, error) {
	const q = `SELECT ` + tarifColumns + ` FROM tarifs WHERE id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	t, err := scanTarif(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find tarif: %w", err)
	}
	return t, nil
}

func (r *tarifRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Tarif, error) {
	const q = `SELECT ` + tarifColumns + ` FROM tarifs ORDER BY id;`
	return r.list(ctx, tx, q)
}

func (r *tarifRepo) ListByGroup(ctx context.Context, tx repository.Tx, groupID int) ([]*model.Tarif, error) {
	const q = `SELECT ` + tarifColumns + ` FROM tarifs WHERE group_id=$1 ORDER BY id;`
	return r.list(ctx, tx, q, groupID)
}

func (r *tarifRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Tarif, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tarifs: %w", err)
	}
	defer rows.Close()

	var out []*model.Tarif
	for rows.Next() {
		t, err := scanTarif(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanTarif(row pgx.Row) (*model.Tarif, error) {
	var t model.Tarif
	if err := row.Scan(
		&t.ID,
		&t.GroupID,
		&t.Name,
		&t.Price,
		&t.PayPeriodMonths,
		&t.BasePricePerDay,
		&t.SpeedMbit,
		&t.Type,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
