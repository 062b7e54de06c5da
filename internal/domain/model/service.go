package model

import (
	"time"

	"tariff-billing-service/internal/domain"
)

// Service is the subscription aggregate: one account, one attached plan
// (or the inactive sentinel while dormant), the date the current period
// is due, and whether the last charge left the balance non-negative.
//
// All plan lifecycle logic lives here. Callers pass the current moment
// and the billing policy in, so the arithmetic is deterministic and the
// aggregate never reaches for the wall clock. The caller is responsible
// for persisting the service and its account as one unit of work and
// for serializing concurrent operations on the same service.
type Service struct {
	ID      int64
	GroupID int // immutable; only tarifs of this group may be attached
	Account *Account
	Tarif   *Tarif
	Payday  time.Time
	PaidFor bool
}

func NewService(id int64, groupID int, account *Account, tarif *Tarif, payday time.Time) (*Service, error) {
	if id <= 0 || account.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if tarif == nil {
		tarif = InactiveTarif()
	}
	return &Service{
		ID:      id,
		GroupID: groupID,
		Account: account,
		Tarif:   tarif,
		Payday:  toDate(payday),
		PaidFor: false,
	}, nil
}

func (s *Service) IsActive() bool { return !s.Tarif.IsInactive() }

// StartTarif attaches a plan to a dormant service: charges the full
// period price, computes the next payday and records whether the period
// is paid for. The new period anchors at the old payday, or at today
// when the service has been dormant for longer than the latency window.
func (s *Service) StartTarif(now time.Time, p BillingPolicy, newTarif *Tarif) error {
	if s.IsActive() {
		return domain.NewDomainLogicError(s.ID, domain.ErrTarifAlreadyActive)
	}
	if newTarif == nil || newTarif.GroupID != s.GroupID {
		return domain.NewDomainLogicError(s.ID, domain.ErrTarifGroupMismatch)
	}
	if err := s.Tarif.CompareWithNew(newTarif); err != nil {
		return domain.NewDomainLogicError(s.ID, err)
	}

	s.Account.Balance.Sub(newTarif.Price)
	paidFor := s.Account.Balance.IsPositive()

	anchor := s.Payday
	if toDate(now).AddDate(0, 0, -p.LatencyDays).After(s.Payday) {
		anchor = toDate(now)
	}
	anchor = advanceOffForbiddenDay(anchor, p)

	s.Tarif = newTarif
	s.Payday = anchor.AddDate(0, newTarif.PayPeriodMonths, 0)
	s.PaidFor = paidFor
	s.Account.UpdateAccessGranted(now)
	return nil
}

// StopTarif detaches the current plan, settling the unused remainder of
// the period against the balance. Returns the settlement amount that was
// applied (positive = refund).
func (s *Service) StopTarif(now time.Time, p BillingPolicy) (int64, error) {
	if !s.IsActive() {
		return 0, domain.NewDomainLogicError(s.ID, domain.ErrNoActiveTarif)
	}

	settlement := s.calculateChangeForStop(now)
	s.Account.Balance.Add(settlement)
	s.Payday = s.newPayday(now)
	s.PaidFor = false
	s.Tarif = InactiveTarif()
	s.Account.UpdateAccessGranted(now)
	return settlement, nil
}

// calculateChangeForStop picks one of three mutually exclusive cases:
//
//   - the period was paid for: refund the unused part of the price,
//     never going below zero;
//   - it was not paid but a deferred-access window overlapped the
//     period: settle against the days consumed on credit, which may
//     come out negative and charge further debt;
//   - neither: nothing was consumed, refund the full price.
//
// TODO: case B counts days used while case A effectively counts days
// left; the asymmetry (and the missing floor in case B) is preserved
// pending business sign-off.
func (s *Service) calculateChangeForStop(now time.Time) int64 {
	switch {
	case s.PaidFor:
		periodStart := s.Payday.AddDate(0, -s.Tarif.PayPeriodMonths, 0)
		daysUsed := daysBetween(periodStart, tomorrow(now))
		settlement := s.Tarif.Price - s.Tarif.BasePricePerDay*int64(daysUsed)
		if settlement < 0 {
			settlement = 0
		}
		return settlement
	case s.creditAccessWasUsed():
		daysUsed := s.Account.CreditAccess.DaysUsed(now)
		return s.Tarif.Price - s.Tarif.BasePricePerDay*int64(daysUsed)
	default:
		return s.Tarif.Price
	}
}

// creditAccessWasUsed reports whether a previously granted deferred
// access window overlapped the current period.
func (s *Service) creditAccessWasUsed() bool {
	ca := s.Account.CreditAccess
	periodStart := s.Payday.AddDate(0, -s.Tarif.PayPeriodMonths, 0)
	return !ca.CanTake() && periodStart.Before(ca.ActiveUntil)
}

// newPayday ends the period tomorrow when it was paid for or consumed on
// credit; otherwise the period is unwound entirely, as if never started.
func (s *Service) newPayday(now time.Time) time.Time {
	if s.PaidFor || s.creditAccessWasUsed() {
		return tomorrow(now)
	}
	return s.Payday.AddDate(0, -s.Tarif.PayPeriodMonths, 0)
}

// ChangeTarif switches an active service to another plan of the same
// group, charging the prorated difference for the rest of the current
// period plus the period-length delta. Returns the charged amount
// (negative = credit). The payday is re-anchored by the period delta
// without the forbidden-day adjustment that StartTarif applies.
func (s *Service) ChangeTarif(now time.Time, newTarif *Tarif) (int64, error) {
	if !s.IsActive() {
		return 0, domain.NewDomainLogicError(s.ID, domain.ErrNoActiveTarif)
	}
	if newTarif == nil || newTarif.GroupID != s.GroupID {
		return 0, domain.NewDomainLogicError(s.ID, domain.ErrTarifGroupMismatch)
	}
	if err := s.Tarif.CompareWithNew(newTarif); err != nil {
		return 0, domain.NewDomainLogicError(s.ID, err)
	}

	change := s.calculateChange(now, newTarif)
	s.Account.Balance.Sub(change)
	s.Account.UpdateAccessGranted(now)
	s.Payday = s.Payday.AddDate(0, newTarif.PayPeriodMonths-s.Tarif.PayPeriodMonths, 0)
	s.Tarif = newTarif
	return change, nil
}

// calculateChange prices the switch: the per-day rate delta over the
// days remaining in the current period, plus the new rate over the
// period-length delta (months approximated to 30 days).
func (s *Service) calculateChange(now time.Time, newTarif *Tarif) int64 {
	firstPartInDays := daysBetween(toDate(now), s.Payday)
	secondPartInDays := (newTarif.PayPeriodMonths - s.Tarif.PayPeriodMonths) * daysInMonth

	firstPart := (newTarif.PricePerDay() - s.Tarif.PricePerDay()) * int64(firstPartInDays)
	secondPart := newTarif.PricePerDay() * int64(secondPartInDays)
	return firstPart + secondPart
}

// Renew charges the next period when the payday arrives: debits the full
// period price, records whether the charge left the balance non-negative
// and rolls the payday forward off any forbidden anchor day.
func (s *Service) Renew(now time.Time, p BillingPolicy) (int64, error) {
	if !s.IsActive() {
		return 0, domain.NewDomainLogicError(s.ID, domain.ErrNoActiveTarif)
	}

	s.Account.Balance.Sub(s.Tarif.Price)
	s.PaidFor = s.Account.Balance.IsPositive()
	anchor := advanceOffForbiddenDay(s.Payday, p)
	s.Payday = anchor.AddDate(0, s.Tarif.PayPeriodMonths, 0)
	s.Account.UpdateAccessGranted(now)
	return s.Tarif.Price, nil
}

// AvailableTarifs filters candidates down to plans this service could
// switch to or start: same group and compatible with the current plan.
func (s *Service) AvailableTarifs(candidates []*Tarif) []*Tarif {
	out := make([]*Tarif, 0, len(candidates))
	for _, c := range candidates {
		if c.GroupID == s.GroupID && s.Tarif.IsCompatibleWithNew(c) {
			out = append(out, c)
		}
	}
	return out
}

// ServiceInfo is the external projection of a service.
type ServiceInfo struct {
	ID      int64     `json:"id"`
	GroupID int       `json:"group_id"`
	Tarif   TarifInfo `json:"tarif_info"`
	Payday  string    `json:"payday"` // YYYY-MM-DD
	PaidFor bool      `json:"paid_for"`
}

// TarifInfo is the external projection of a plan.
type TarifInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Duration int    `json:"duration"` // months
	Speed    int    `json:"speed"`    // Mbit/s
	Type     string `json:"type"`
}

func (t *Tarif) Info() TarifInfo {
	return TarifInfo{
		ID:       t.ID,
		Name:     t.Name,
		Price:    t.Price,
		Duration: t.PayPeriodMonths,
		Speed:    t.SpeedMbit,
		Type:     t.Type,
	}
}

func (s *Service) Info() ServiceInfo {
	return ServiceInfo{
		ID:      s.ID,
		GroupID: s.GroupID,
		Tarif:   s.Tarif.Info(),
		Payday:  s.Payday.Format("2006-01-02"),
		PaidFor: s.PaidFor,
	}
}
