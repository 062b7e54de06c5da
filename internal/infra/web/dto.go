package web

import "tariff-billing-service/internal/domain/model"

// TarifDTO is the transfer shape of a pricing plan.
type TarifDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Duration int    `json:"duration"` // months
	Speed    int    `json:"speed"`    // Mbit/s
	Type     string `json:"type"`
}

func tarifToDTO(t *model.Tarif) TarifDTO {
	return TarifDTO{
		ID:       t.ID,
		Name:     t.Name,
		Price:    t.Price,
		Duration: t.PayPeriodMonths,
		Speed:    t.SpeedMbit,
		Type:     t.Type,
	}
}

func tarifsToDTO(ts []*model.Tarif) []TarifDTO {
	out := make([]TarifDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, tarifToDTO(t))
	}
	return out
}

type AccountDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Balance       int64  `json:"balance"`
	AccessGranted bool   `json:"access_granted"`
	CreditAllowed bool   `json:"credit_allowed"`
}

func accountToDTO(a *model.Account) AccountDTO {
	return AccountDTO{
		ID:            a.ID,
		Name:          a.Name,
		Balance:       a.Balance.Amount,
		AccessGranted: a.AccessGranted,
		CreditAllowed: a.CreditAccess.CanTake(),
	}
}

type LedgerEntryDTO struct {
	ID        string `json:"id"`
	ServiceID int64  `json:"service_id,omitempty"`
	Amount    int64  `json:"amount"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
}

func ledgerToDTO(es []*model.LedgerEntry) []LedgerEntryDTO {
	out := make([]LedgerEntryDTO, 0, len(es))
	for _, e := range es {
		out = append(out, LedgerEntryDTO{
			ID:        e.ID,
			ServiceID: e.ServiceID,
			Amount:    e.Amount,
			Kind:      string(e.Kind),
			CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
