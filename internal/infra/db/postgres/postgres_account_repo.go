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

// Ensure accountRepo implements repository.AccountRepository
var _ repository.AccountRepository = (*accountRepo)(nil)

type accountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *accountRepo {
	return &accountRepo{pool: pool}
}

const accountColumns = `id, name, balance, credit_allowed, credit_granted_at, credit_active_until, access_granted, notify_chat_id, created_at`

func (r *accountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const q = `
INSERT INTO accounts (id, name, balance, credit_allowed, credit_granted_at, credit_active_until, access_granted, notify_chat_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  name=$2, balance=$3, credit_allowed=$4, credit_granted_at=$5, credit_active_until=$6, access_granted=$7, notify_chat_id=$8;`

	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID,
		a.Name,
		a.Balance.Amount,
		a.CreditAccess.Allowed,
		nullTime(a.CreditAccess.GrantedAt),
		nullTime(a.CreditAccess.ActiveUntil),
		a.AccessGranted,
		a.NotifyChatID,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (r *accountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	a, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		a           model.Account
		balance     int64
		allowed     bool
		grantedAt   *time.Time
		activeUntil *time.Time
	)
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&balance,
		&allowed,
		&grantedAt,
		&activeUntil,
		&a.AccessGranted,
		&a.NotifyChatID,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Balance = model.NewBalance(balance)
	a.CreditAccess = &model.CreditAccess{Allowed: allowed}
	if grantedAt != nil {
		a.CreditAccess.GrantedAt = *grantedAt
	}
	if activeUntil != nil {
		a.CreditAccess.ActiveUntil = *activeUntil
	}
	return &a, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
