package model

import (
	"time"

	"tariff-billing-service/internal/domain"

	"github.com/google/uuid"
)

// Account is the billing account behind a service. It owns exactly one
// Balance and one CreditAccess; both are mutated in place inside the
// unit of work of the operation that touches them.
type Account struct {
	ID            string // UUID
	Name          string
	Balance       *Balance
	CreditAccess  *CreditAccess
	AccessGranted bool
	NotifyChatID  int64 // Telegram chat for billing notifications, 0 = none
	CreatedAt     time.Time
}

func NewAccount(id, name string) (*Account, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Account{
		ID:           id,
		Name:         name,
		Balance:      NewBalance(0),
		CreditAccess: NewCreditAccess(),
		CreatedAt:    time.Now(),
	}, nil
}

// UpdateAccessGranted recomputes the derived access flag from the
// balance sign and the credit state. Callers persist the account
// afterwards; the flag itself is never read back by billing logic.
func (a *Account) UpdateAccessGranted(now time.Time) {
	a.AccessGranted = a.Balance.IsPositive() || a.CreditAccess.ActiveAt(now)
}

func (a *Account) IsZero() bool { return a == nil || a.ID == "" }
