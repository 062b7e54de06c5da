package model

import "time"

type LedgerKind string

const (
	LedgerKindCharge     LedgerKind = "charge"     // full period price on start
	LedgerKindSettlement LedgerKind = "settlement" // refund/debt on stop
	LedgerKindChange     LedgerKind = "change"     // prorated plan switch
	LedgerKindRenewal    LedgerKind = "renewal"    // periodic payday charge
	LedgerKindTopUp      LedgerKind = "topup"      // manual balance credit
)

// LedgerEntry is the historical trail of every balance mutation made by
// a billing operation. Amount is signed from the account's point of
// view: positive credits the balance, negative debits it.
type LedgerEntry struct {
	ID        string // ULID, sortable by creation time
	AccountID string
	ServiceID int64 // 0 for entries not tied to a service (top-ups)
	Amount    int64
	Kind      LedgerKind
	CreatedAt time.Time
}
