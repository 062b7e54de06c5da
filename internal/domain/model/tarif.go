package model

import (
	"time"

	"tariff-billing-service/internal/domain"
)

// Tarif is a pricing plan: a price for one pay period, a month-based
// period length, and a connection speed. Once attached to a Service it
// is treated as immutable.
type Tarif struct {
	ID              int64
	GroupID         int
	Name            string
	Price           int64 // total for one pay period, minor currency units
	PayPeriodMonths int
	BasePricePerDay int64 // list rate used for usage settlement
	SpeedMbit       int
	Type            string
	CreatedAt       time.Time
}

// inactiveTarifID marks the sentinel plan of a dormant service.
const inactiveTarifID int64 = 0

// InactiveTarif returns the sentinel assigned while no plan is active.
func InactiveTarif() *Tarif {
	return &Tarif{ID: inactiveTarifID, Name: "inactive"}
}

func (t *Tarif) IsInactive() bool { return t == nil || t.ID == inactiveTarifID }

// PeriodDays is the plan period length in days under the month-to-days
// approximation.
func (t *Tarif) PeriodDays() int { return t.PayPeriodMonths * daysInMonth }

// PricePerDay derives the effective per-day price of the plan.
func (t *Tarif) PricePerDay() int64 {
	if t.PeriodDays() == 0 {
		return 0
	}
	return t.Price / int64(t.PeriodDays())
}

// CompareWithNew checks whether the candidate may replace this plan.
// The candidate must be a concrete plan, and re-attaching the plan that
// is already active is rejected.
func (t *Tarif) CompareWithNew(candidate *Tarif) error {
	if candidate.IsInactive() {
		return domain.ErrTarifIncompatible
	}
	if !t.IsInactive() && t.ID == candidate.ID {
		return domain.ErrTarifIncompatible
	}
	return nil
}

// IsCompatibleWithNew is the query form of CompareWithNew.
func (t *Tarif) IsCompatibleWithNew(candidate *Tarif) bool {
	return t.CompareWithNew(candidate) == nil
}

// NewTarif validates and constructs a plan.
func NewTarif(id int64, groupID int, name string, price int64, payPeriodMonths int, basePricePerDay int64, speedMbit int, typ string) (*Tarif, error) {
	if id <= 0 || name == "" || price <= 0 || payPeriodMonths <= 0 || basePricePerDay < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Tarif{
		ID:              id,
		GroupID:         groupID,
		Name:            name,
		Price:           price,
		PayPeriodMonths: payPeriodMonths,
		BasePricePerDay: basePricePerDay,
		SpeedMbit:       speedMbit,
		Type:            typ,
		CreatedAt:       time.Now(),
	}, nil
}
