package usecase

import (
	"context"
	"time"

	"tariff-billing-service/internal/domain"
	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/repository"
	"tariff-billing-service/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase exposes billing-account operations: balance top-ups,
// credit-access grants and the ledger trail.
type AccountUseCase interface {
	Create(ctx context.Context, name string, notifyChatID int64) (*model.Account, error)
	Get(ctx context.Context, id string) (*model.Account, error)
	TopUp(ctx context.Context, id string, amount int64) (*model.Account, error)
	GrantCredit(ctx context.Context, id string, days int) (*model.Account, error)
	Ledger(ctx context.Context, id string, limit int) ([]*model.LedgerEntry, error)
}

type accountUC struct {
	accounts repository.AccountRepository
	ledger   repository.LedgerRepository
	tm       repository.TransactionManager
	now      Clock
	log      *zerolog.Logger
}

func NewAccountUseCase(accounts repository.AccountRepository, ledger repository.LedgerRepository, tm repository.TransactionManager, now Clock, logger *zerolog.Logger) *accountUC {
	if now == nil {
		now = time.Now
	}
	return &accountUC{accounts: accounts, ledger: ledger, tm: tm, now: now, log: logger}
}

func (u *accountUC) Create(ctx context.Context, name string, notifyChatID int64) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Create")()

	a, err := model.NewAccount("", name)
	if err != nil {
		return nil, err
	}
	a.NotifyChatID = notifyChatID
	if err := u.accounts.Save(ctx, repository.NoTX, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (u *accountUC) Get(ctx context.Context, id string) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Get")()
	return u.accounts.FindByID(ctx, repository.NoTX, id)
}

func (u *accountUC) TopUp(ctx context.Context, id string, amount int64) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.TopUp")()

	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	var acc *model.Account
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.accounts.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		now := u.now()
		a.Balance.Add(amount)
		// A settled balance restores the credit allowance.
		if a.Balance.IsPositive() {
			a.CreditAccess.Restore()
		}
		a.UpdateAccessGranted(now)
		if err := u.accounts.Save(ctx, tx, a); err != nil {
			return err
		}
		if err := u.ledger.Append(ctx, tx, &model.LedgerEntry{
			ID:        ulid.Make().String(),
			AccountID: a.ID,
			Amount:    amount,
			Kind:      model.LedgerKindTopUp,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		acc = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().Str("account_id", id).Int64("amount", amount).Msg("balance topped up")
	return acc, nil
}

func (u *accountUC) GrantCredit(ctx context.Context, id string, days int) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.GrantCredit")()

	var acc *model.Account
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.accounts.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		now := u.now()
		if err := a.CreditAccess.Grant(now, days); err != nil {
			return err
		}
		a.UpdateAccessGranted(now)
		if err := u.accounts.Save(ctx, tx, a); err != nil {
			return err
		}
		acc = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().Str("account_id", id).Int("days", days).Msg("credit access granted")
	return acc, nil
}

func (u *accountUC) Ledger(ctx context.Context, id string, limit int) ([]*model.LedgerEntry, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Ledger")()
	return u.ledger.ListByAccount(ctx, repository.NoTX, id, limit)
}
