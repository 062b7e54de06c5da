//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"tariff-billing-service/internal/domain"
	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func copyAccount(a *model.Account) *model.Account {
	cp := *a
	b := *a.Balance
	cp.Balance = &b
	ca := *a.CreditAccess
	cp.CreditAccess = &ca
	return &cp
}

func copyService(s *model.Service) *model.Service {
	cp := *s
	cp.Account = copyAccount(s.Account)
	t := *s.Tarif
	cp.Tarif = &t
	return &cp
}

// memAccountRepo is a small in-memory implementation used by unit tests.
type memAccountRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Account
	saveErr error // used by tests to simulate save failures
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{store: make(map[string]*model.Account)}
}

func (m *memAccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[a.ID] = copyAccount(a)
	return nil
}

func (m *memAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyAccount(a), nil
}

// memTarifRepo assigns ids on insert, mirroring the SQL repository.
type memTarifRepo struct {
	mu     sync.RWMutex
	store  map[int64]*model.Tarif
	nextID int64
}

func newMemTarifRepo() *memTarifRepo {
	return &memTarifRepo{store: make(map[int64]*model.Tarif), nextID: 1}
}

func (m *memTarifRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tarif) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.nextID
		m.nextID++
	}
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *memTarifRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Tarif, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTarifRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Tarif, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Tarif, 0, len(m.store))
	for _, t := range m.store {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memTarifRepo) ListByGroup(ctx context.Context, tx repository.Tx, groupID int) ([]*model.Tarif, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Tarif
	for _, t := range m.store {
		if t.GroupID == groupID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memServiceRepo hydrates the owned account from the account repo on
// reads, the way the SQL repository joins it.
type memServiceRepo struct {
	mu       sync.RWMutex
	store    map[int64]*model.Service
	accounts *memAccountRepo
	// dueOverride, when set, is returned by FindDue as-is so tests can
	// hand the sweep a stale listing.
	dueOverride []*model.Service
}

func newMemServiceRepo(accounts *memAccountRepo) *memServiceRepo {
	return &memServiceRepo{store: make(map[int64]*model.Service), accounts: accounts}
}

func (m *memServiceRepo) Save(ctx context.Context, tx repository.Tx, s *model.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[s.ID] = copyService(s)
	return nil
}

func (m *memServiceRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyService(s)
	if acc, err := m.accounts.FindByID(ctx, tx, s.Account.ID); err == nil {
		cp.Account = acc
	}
	return cp, nil
}

func (m *memServiceRepo) FindDue(ctx context.Context, tx repository.Tx, asOf time.Time) ([]*model.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dueOverride != nil {
		return m.dueOverride, nil
	}
	var out []*model.Service
	for _, s := range m.store {
		if s.IsActive() && !s.Payday.After(asOf) {
			out = append(out, copyService(s))
		}
	}
	return out, nil
}

func (m *memServiceRepo) FindUpcoming(ctx context.Context, tx repository.Tx, asOf time.Time, withinDays int) ([]*model.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cut := asOf.AddDate(0, 0, withinDays)
	var out []*model.Service
	for _, s := range m.store {
		if s.IsActive() && s.Payday.After(asOf) && !s.Payday.After(cut) {
			out = append(out, copyService(s))
		}
	}
	return out, nil
}

func (m *memServiceRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, s := range m.store {
		if s.IsActive() {
			cnt++
		}
	}
	return cnt, nil
}

// memLedgerRepo records entries in append order.
type memLedgerRepo struct {
	mu      sync.RWMutex
	entries []*model.LedgerEntry
}

func newMemLedgerRepo() *memLedgerRepo { return &memLedgerRepo{} }

func (m *memLedgerRepo) Append(ctx context.Context, tx repository.Tx, e *model.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memLedgerRepo) ListByAccount(ctx context.Context, tx repository.Tx, accountID string, limit int) ([]*model.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].AccountID == accountID {
			cp := *m.entries[i]
			out = append(out, &cp)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memLedgerRepo) byKind(kind model.LedgerKind) []*model.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.LedgerEntry
	for _, e := range m.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// mockTxManager runs the callback with a nil handle; the in-memory
// repositories ignore it.
type mockTxManager struct {
	beginErr error
}

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx, nil)
}

// mockLocker records lock traffic and can simulate contention.
type mockLocker struct {
	mu       sync.Mutex
	lockErr  error
	locked   []string
	unlocked []string
}

func (m *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockErr != nil {
		return "", m.lockErr
	}
	m.locked = append(m.locked, key)
	return "token", nil
}

func (m *mockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked = append(m.unlocked, key)
	return nil
}

// mockNotifier captures sent messages; sendErr fails every send.
type mockNotifier struct {
	mu      sync.Mutex
	sent    map[int64][]string
	sendErr error
}

func newMockNotifier() *mockNotifier { return &mockNotifier{sent: make(map[int64][]string)} }

func (m *mockNotifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}

// mockBilling feeds a fixed upcoming list to the notification use case.
type mockBilling struct {
	upcoming    []*model.Service
	upcomingErr error
}

func (m *mockBilling) ChargeDue(ctx context.Context) (int, error) { return 0, nil }

func (m *mockBilling) UpcomingRenewals(ctx context.Context, withinDays int) ([]*model.Service, error) {
	if m.upcomingErr != nil {
		return nil, m.upcomingErr
	}
	return m.upcoming, nil
}
