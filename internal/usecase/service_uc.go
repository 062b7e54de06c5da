package usecase

import (
	"context"
	"fmt"
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
var _ ServiceUseCase = (*serviceUC)(nil)

// ServiceUseCase exposes the subscription lifecycle operations. Every
// mutator runs under a per-service lock and a serializable transaction:
// the service row, the account balance and the ledger move together or
// not at all.
type ServiceUseCase interface {
	StartTarif(ctx context.Context, serviceID, tarifID int64) (*model.Service, error)
	StopTarif(ctx context.Context, serviceID int64) (*model.Service, error)
	ChangeTarif(ctx context.Context, serviceID, tarifID int64) (*model.Service, error)
	Info(ctx context.Context, serviceID int64) (*model.ServiceInfo, error)
	AvailableTarifs(ctx context.Context, serviceID int64) ([]*model.Tarif, error)
}

type serviceUC struct {
	services repository.ServiceRepository
	tarifs   repository.TarifRepository
	accounts repository.AccountRepository
	ledger   repository.LedgerRepository
	tm       repository.TransactionManager
	locker   Locker
	policy   model.BillingPolicy
	lockTTL  time.Duration
	now      Clock
	log      *zerolog.Logger
}

func NewServiceUseCase(
	services repository.ServiceRepository,
	tarifs repository.TarifRepository,
	accounts repository.AccountRepository,
	ledger repository.LedgerRepository,
	tm repository.TransactionManager,
	locker Locker,
	policy model.BillingPolicy,
	lockTTL time.Duration,
	now Clock,
	logger *zerolog.Logger,
) *serviceUC {
	if now == nil {
		now = time.Now
	}
	return &serviceUC{
		services: services,
		tarifs:   tarifs,
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

func serviceLockKey(serviceID int64) string {
	return fmt.Sprintf("billing:service:%d", serviceID)
}

// withServiceLock serializes the unit of work against other mutators of
// the same service, then runs it inside a serializable transaction.
func (u *serviceUC) withServiceLock(ctx context.Context, serviceID int64, fn func(ctx context.Context, tx repository.Tx) error) error {
	token, err := u.locker.TryLock(ctx, serviceLockKey(serviceID), u.lockTTL)
	if err != nil {
		return err
	}
	defer func() { _ = u.locker.Unlock(ctx, serviceLockKey(serviceID), token) }()

	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	return u.tm.WithTx(ctx, txOpts, fn)
}

func (u *serviceUC) persist(ctx context.Context, tx repository.Tx, s *model.Service, amount int64, kind model.LedgerKind, at time.Time) error {
	if err := u.services.Save(ctx, tx, s); err != nil {
		return err
	}
	if err := u.accounts.Save(ctx, tx, s.Account); err != nil {
		return err
	}
	return u.ledger.Append(ctx, tx, &model.LedgerEntry{
		ID:        ulid.Make().String(),
		AccountID: s.Account.ID,
		ServiceID: s.ID,
		Amount:    amount,
		Kind:      kind,
		CreatedAt: at,
	})
}

func (u *serviceUC) StartTarif(ctx context.Context, serviceID, tarifID int64) (*model.Service, error) {
	defer logging.TraceDuration(u.log, "ServiceUC.StartTarif")()

	var svc *model.Service
	err := u.withServiceLock(ctx, serviceID, func(ctx context.Context, tx repository.Tx) error {
		s, err := u.services.FindByID(ctx, tx, serviceID)
		if err != nil {
			return err
		}
		nt, err := u.tarifs.FindByID(ctx, tx, tarifID)
		if err != nil {
			return err
		}
		now := u.now()
		if err := s.StartTarif(now, u.policy, nt); err != nil {
			return err
		}
		if err := u.persist(ctx, tx, s, -nt.Price, model.LedgerKindCharge, now); err != nil {
			return err
		}
		svc = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncTarifStarted()
	u.log.Info().Int64("service_id", serviceID).Int64("tarif_id", tarifID).Msg("tarif started")
	return svc, nil
}

func (u *serviceUC) StopTarif(ctx context.Context, serviceID int64) (*model.Service, error) {
	defer logging.TraceDuration(u.log, "ServiceUC.StopTarif")()

	var (
		svc        *model.Service
		settlement int64
	)
	err := u.withServiceLock(ctx, serviceID, func(ctx context.Context, tx repository.Tx) error {
		s, err := u.services.FindByID(ctx, tx, serviceID)
		if err != nil {
			return err
		}
		now := u.now()
		settlement, err = s.StopTarif(now, u.policy)
		if err != nil {
			return err
		}
		if err := u.persist(ctx, tx, s, settlement, model.LedgerKindSettlement, now); err != nil {
			return err
		}
		svc = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncTarifStopped()
	metrics.ObserveStopSettlement(settlement)
	u.log.Info().Int64("service_id", serviceID).Int64("settlement", settlement).Msg("tarif stopped")
	return svc, nil
}

func (u *serviceUC) ChangeTarif(ctx context.Context, serviceID, tarifID int64) (*model.Service, error) {
	defer logging.TraceDuration(u.log, "ServiceUC.ChangeTarif")()

	var (
		svc    *model.Service
		change int64
	)
	err := u.withServiceLock(ctx, serviceID, func(ctx context.Context, tx repository.Tx) error {
		s, err := u.services.FindByID(ctx, tx, serviceID)
		if err != nil {
			return err
		}
		nt, err := u.tarifs.FindByID(ctx, tx, tarifID)
		if err != nil {
			return err
		}
		now := u.now()
		change, err = s.ChangeTarif(now, nt)
		if err != nil {
			return err
		}
		if err := u.persist(ctx, tx, s, -change, model.LedgerKindChange, now); err != nil {
			return err
		}
		svc = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncTarifChanged()
	u.log.Info().Int64("service_id", serviceID).Int64("tarif_id", tarifID).Int64("change", change).Msg("tarif changed")
	return svc, nil
}

func (u *serviceUC) Info(ctx context.Context, serviceID int64) (*model.ServiceInfo, error) {
	defer logging.TraceDuration(u.log, "ServiceUC.Info")()

	s, err := u.services.FindByID(ctx, repository.NoTX, serviceID)
	if err != nil {
		return nil, err
	}
	info := s.Info()
	return &info, nil
}

func (u *serviceUC) AvailableTarifs(ctx context.Context, serviceID int64) ([]*model.Tarif, error) {
	defer logging.TraceDuration(u.log, "ServiceUC.AvailableTarifs")()

	s, err := u.services.FindByID(ctx, repository.NoTX, serviceID)
	if err != nil {
		return nil, err
	}
	candidates, err := u.tarifs.ListByGroup(ctx, repository.NoTX, s.GroupID)
	if err != nil {
		return nil, err
	}
	return s.AvailableTarifs(candidates), nil
}
