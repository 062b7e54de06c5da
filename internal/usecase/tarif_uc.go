package usecase

import (
	"context"

	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/repository"
	"tariff-billing-service/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ TarifUseCase = (*tarifUC)(nil)

// TarifUseCase exposes plan management for the admin API and seeding.
type TarifUseCase interface {
	Create(ctx context.Context, groupID int, name string, price int64, payPeriodMonths int, basePricePerDay int64, speedMbit int, typ string) (*model.Tarif, error)
	Get(ctx context.Context, id int64) (*model.Tarif, error)
	List(ctx context.Context) ([]*model.Tarif, error)
	ListByGroup(ctx context.Context, groupID int) ([]*model.Tarif, error)
}

type tarifUC struct {
	tarifs repository.TarifRepository
	log    *zerolog.Logger
}

func NewTarifUseCase(tarifs repository.TarifRepository, logger *zerolog.Logger) *tarifUC {
	return &tarifUC{tarifs: tarifs, log: logger}
}

func (u *tarifUC) Create(ctx context.Context, groupID int, name string, price int64, payPeriodMonths int, basePricePerDay int64, speedMbit int, typ string) (*model.Tarif, error) {
	defer logging.TraceDuration(u.log, "TarifUC.Create")()

	// The repository assigns the id on insert; validate everything else
	// through the model constructor with a placeholder id.
	t, err := model.NewTarif(1, groupID, name, price, payPeriodMonths, basePricePerDay, speedMbit, typ)
	if err != nil {
		return nil, err
	}
	t.ID = 0
	if err := u.tarifs.Save(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	u.log.Info().Int64("tarif_id", t.ID).Str("name", t.Name).Msg("tarif created")
	return t, nil
}

func (u *tarifUC) Get(ctx context.Context, id int64) (*model.Tarif, error) {
	return u.tarifs.FindByID(ctx, repository.NoTX, id)
}

func (u *tarifUC) List(ctx context.Context) ([]*model.Tarif, error) {
	return u.tarifs.List(ctx, repository.NoTX)
}

func (u *tarifUC) ListByGroup(ctx context.Context, groupID int) ([]*model.Tarif, error) {
	return u.tarifs.ListByGroup(ctx, repository.NoTX, groupID)
}
