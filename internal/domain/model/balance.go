package model

// Balance holds a signed monetary amount in minor currency units
// (integer, to avoid float errors). It is owned by exactly one Account
// and must only be mutated inside the unit of work of the aggregate
// that references it.
type Balance struct {
	Amount int64
}

func NewBalance(amount int64) *Balance { return &Balance{Amount: amount} }

func (b *Balance) Add(v int64) { b.Amount += v }

func (b *Balance) Sub(v int64) { b.Amount -= v }

// IsPositive reports whether the balance is non-negative. A zero balance
// counts as positive: the account paid exactly what was due.
func (b *Balance) IsPositive() bool { return b.Amount >= 0 }
