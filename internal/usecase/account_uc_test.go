//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"tariff-billing-service/internal/domain"
	"tariff-billing-service/internal/domain/model"
)

func newAccountUCFixture(t *testing.T, now time.Time) (*accountUC, *memAccountRepo, *memLedgerRepo) {
	t.Helper()
	accounts := newMemAccountRepo()
	ledger := newMemLedgerRepo()
	uc := NewAccountUseCase(accounts, ledger, &mockTxManager{}, fixedClock(now), newTestLogger())
	return uc, accounts, ledger
}

func TestAccountUCCreate(t *testing.T) {
	ctx := context.Background()
	uc, accounts, _ := newAccountUCFixture(t, date(2026, time.March, 10))

	t.Run("should create and persist an account", func(t *testing.T) {
		a, err := uc.Create(ctx, "subscriber", 111)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if a.NotifyChatID != 111 {
			t.Errorf("expected notify chat 111, but got %d", a.NotifyChatID)
		}
		if _, err := accounts.FindByID(ctx, nil, a.ID); err != nil {
			t.Errorf("expected account to be stored, but got: %v", err)
		}
	})

	t.Run("should fail on an empty name", func(t *testing.T) {
		if _, err := uc.Create(ctx, "", 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

func TestAccountUCTopUp(t *testing.T) {
	ctx := context.Background()
	now := date(2026, time.March, 10)

	t.Run("should credit the balance and restore the credit allowance", func(t *testing.T) {
		uc, accounts, ledger := newAccountUCFixture(t, now)
		a, err := uc.Create(ctx, "subscriber", 0)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		// drive the account into debt with a consumed credit window
		stored, _ := accounts.FindByID(ctx, nil, a.ID)
		stored.Balance.Amount = -5_000
		if err := stored.CreditAccess.Grant(now.AddDate(0, 0, -20), 10); err != nil {
			t.Fatalf("grant: %v", err)
		}
		if err := accounts.Save(ctx, nil, stored); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := uc.TopUp(ctx, a.ID, 20_000)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if got.Balance.Amount != 15_000 {
			t.Errorf("expected balance 15000, but got %d", got.Balance.Amount)
		}
		if !got.CreditAccess.CanTake() {
			t.Error("expected the settled balance to restore the credit allowance")
		}
		if !got.AccessGranted {
			t.Error("expected access after settling the debt")
		}

		topups := ledger.byKind(model.LedgerKindTopUp)
		if len(topups) != 1 || topups[0].Amount != 20_000 {
			t.Fatalf("expected one topup entry of 20000, but got %v", topups)
		}
	})

	t.Run("should keep the allowance consumed while still in debt", func(t *testing.T) {
		uc, accounts, _ := newAccountUCFixture(t, now)
		a, _ := uc.Create(ctx, "subscriber", 0)
		stored, _ := accounts.FindByID(ctx, nil, a.ID)
		stored.Balance.Amount = -50_000
		_ = stored.CreditAccess.Grant(now.AddDate(0, 0, -20), 10)
		_ = accounts.Save(ctx, nil, stored)

		got, err := uc.TopUp(ctx, a.ID, 20_000)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if got.CreditAccess.CanTake() {
			t.Error("expected the allowance to stay consumed in debt")
		}
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		uc, _, _ := newAccountUCFixture(t, now)
		a, _ := uc.Create(ctx, "subscriber", 0)

		if _, err := uc.TopUp(ctx, a.ID, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

func TestAccountUCGrantCredit(t *testing.T) {
	ctx := context.Background()
	now := date(2026, time.March, 10)

	t.Run("should open a credit window once", func(t *testing.T) {
		uc, _, _ := newAccountUCFixture(t, now)
		a, _ := uc.Create(ctx, "subscriber", 0)

		got, err := uc.GrantCredit(ctx, a.ID, 10)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if got.CreditAccess.CanTake() {
			t.Error("expected the allowance to be consumed")
		}
		if want := now.AddDate(0, 0, 10); !got.CreditAccess.ActiveUntil.Equal(want) {
			t.Errorf("expected window until %v, but got %v", want, got.CreditAccess.ActiveUntil)
		}

		if _, err := uc.GrantCredit(ctx, a.ID, 10); !errors.Is(err, domain.ErrCreditNotAllowed) {
			t.Fatalf("expected ErrCreditNotAllowed on the second grant, but got %v", err)
		}
	})

	t.Run("should fail on an unknown account", func(t *testing.T) {
		uc, _, _ := newAccountUCFixture(t, now)
		if _, err := uc.GrantCredit(ctx, "missing", 10); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, but got %v", err)
		}
	})
}

func TestAccountUCLedger(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newAccountUCFixture(t, date(2026, time.March, 10))
	a, _ := uc.Create(ctx, "subscriber", 0)

	for i := 0; i < 3; i++ {
		if _, err := uc.TopUp(ctx, a.ID, 1_000); err != nil {
			t.Fatalf("topup: %v", err)
		}
	}

	entries, err := uc.Ledger(ctx, a.ID, 2)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries with the limit applied, but got %d", len(entries))
	}
}
