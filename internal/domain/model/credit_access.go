package model

import (
	"time"

	"tariff-billing-service/internal/domain"
)

// CreditAccess tracks the deferred-payment grace mechanism: whether a
// new grace window may be granted now, and the bounds of a previously
// granted one.
type CreditAccess struct {
	Allowed     bool      // a new window may be granted
	GrantedAt   time.Time // zero until a window was granted
	ActiveUntil time.Time // end of the granted window, zero if never granted
}

func NewCreditAccess() *CreditAccess { return &CreditAccess{Allowed: true} }

// CanTake reports whether deferred access may currently be granted.
func (c *CreditAccess) CanTake() bool { return c.Allowed }

// Grant opens a deferred-access window of the given length. A window can
// only be opened while CanTake is true; granting consumes the allowance
// until it is explicitly restored.
func (c *CreditAccess) Grant(now time.Time, days int) error {
	if !c.Allowed || days <= 0 {
		return domain.ErrCreditNotAllowed
	}
	c.Allowed = false
	c.GrantedAt = now
	c.ActiveUntil = now.AddDate(0, 0, days)
	return nil
}

// Restore re-enables granting once the outstanding window is settled.
func (c *CreditAccess) Restore() { c.Allowed = true }

// ActiveAt reports whether a granted window still covers the given moment.
func (c *CreditAccess) ActiveAt(now time.Time) bool {
	return !c.ActiveUntil.IsZero() && now.Before(c.ActiveUntil)
}

// DaysUsed counts the days consumed under deferred access up to now,
// capped at the end of the granted window.
func (c *CreditAccess) DaysUsed(now time.Time) int {
	if c.GrantedAt.IsZero() {
		return 0
	}
	end := now
	if end.After(c.ActiveUntil) {
		end = c.ActiveUntil
	}
	if end.Before(c.GrantedAt) {
		return 0
	}
	return daysBetween(c.GrantedAt, end)
}
