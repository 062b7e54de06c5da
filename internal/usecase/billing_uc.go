package usecase

import (
	"context"
	"time"

	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/repository"
	"tariff-billing-service/internal/infra/logging"
	"tariff-billing-service/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ BillingUseCase = (*billingUC)(nil)

// BillingUseCase runs periodic renewal billing: services whose payday
// has arrived are charged the next period. Safe to call concurrently —
// each service is renewed under its own lock, and a renewal that fails
// does not stop the sweep.
type BillingUseCase interface {
	ChargeDue(ctx context.Context) (int, error)
	UpcomingRenewals(ctx context.Context, withinDays int) ([]*model.Service, error)
}

type billingUC struct {
	services repository.ServiceRepository
	accounts repository.AccountRepository
	ledger   repository.LedgerRepository
	tm       repository.TransactionManager
	locker   Locker
	policy   model.BillingPolicy
	lockTTL  time.Duration
	now      Clock
	log      *zerolog.Logger
}

func NewBillingUseCase(
	services repository.ServiceRepository,
	accounts repository.AccountRepository,
	ledger repository.LedgerRepository,
	tm repository.TransactionManager,
	locker Locker,
	policy model.BillingPolicy,
	lockTTL time.Duration,
	now Clock,
	logger *zerolog.Logger,
) *billingUC {
	if now == nil {
		now = time.Now
	}
	return &billingUC{
		services: services,
		accounts: accounts,
		ledger:   ledger,
		tm:       tm,
		locker:   locker,
		policy:   policy,
		lockTTL:  lockTTL,
		now:      now,
		log:      logger,
	}
}

func (u *billingUC) ChargeDue(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "BillingUC.ChargeDue")()

	due, err := u.services.FindDue(ctx, repository.NoTX, u.now())
	if err != nil {
		return 0, err
	}

	charged := 0
	for _, s := range due {
		if err := u.renewOne(ctx, s.ID); err != nil {
			u.log.Error().Err(err).Int64("service_id", s.ID).Msg("renewal failed")
			continue
		}
		charged++
	}

	if n, err := u.services.CountActive(ctx, repository.NoTX); err == nil {
		metrics.SetActiveServices(n)
	}
	return charged, nil
}

// renewOne re-reads the service inside its own lock and transaction: the
// sweep list may be stale by the time a given service is processed.
func (u *billingUC) renewOne(ctx context.Context, serviceID int64) error {
	token, err := u.locker.TryLock(ctx, serviceLockKey(serviceID), u.lockTTL)
	if err != nil {
		return err
	}
	defer func() { _ = u.locker.Unlock(ctx, serviceLockKey(serviceID), token) }()

	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	return u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		s, err := u.services.FindByID(ctx, tx, serviceID)
		if err != nil {
			return err
		}
		now := u.now()
		if !s.IsActive() || s.Payday.After(now) {
			return nil // stopped or already renewed since the sweep
		}
		charge, err := s.Renew(now, u.policy)
		if err != nil {
			return err
		}
		if err := u.services.Save(ctx, tx, s); err != nil {
			return err
		}
		if err := u.accounts.Save(ctx, tx, s.Account); err != nil {
			return err
		}
		if err := u.ledger.Append(ctx, tx, &model.LedgerEntry{
			ID:        ulid.Make().String(),
			AccountID: s.Account.ID,
			ServiceID: s.ID,
			Amount:    -charge,
			Kind:      model.LedgerKindRenewal,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		metrics.IncRenewalCharged()
		return nil
	})
}

func (u *billingUC) UpcomingRenewals(ctx context.Context, withinDays int) ([]*model.Service, error) {
	defer logging.TraceDuration(u.log, "BillingUC.UpcomingRenewals")()
	return u.services.FindUpcoming(ctx, repository.NoTX, u.now(), withinDays)
}
