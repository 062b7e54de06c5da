package usecase

import (
	"context"
	"fmt"

	"tariff-billing-service/internal/domain/ports/adapter"
	"tariff-billing-service/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

// NotificationUseCase sends payday reminders to subscribers whose next
// charge is due tomorrow. Running the check daily makes the one-day
// window a natural dedupe.
type NotificationUseCase interface {
	SendPaydayReminders(ctx context.Context) (int, error)
}

type notificationUC struct {
	billing  BillingUseCase
	notifier adapter.NotifierAdapter
	log      *zerolog.Logger
}

func NewNotificationUseCase(billing BillingUseCase, notifier adapter.NotifierAdapter, logger *zerolog.Logger) *notificationUC {
	return &notificationUC{billing: billing, notifier: notifier, log: logger}
}

func (u *notificationUC) SendPaydayReminders(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "NotificationUC.SendPaydayReminders")()

	upcoming, err := u.billing.UpcomingRenewals(ctx, 1)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, s := range upcoming {
		if s.Account.NotifyChatID == 0 {
			continue
		}
		text := fmt.Sprintf(
			"Your %q plan renews on %s for %d. Current balance: %d.",
			s.Tarif.Name, s.Payday.Format("2006-01-02"), s.Tarif.Price, s.Account.Balance.Amount,
		)
		if err := u.notifier.SendMessage(ctx, s.Account.NotifyChatID, text); err != nil {
			u.log.Error().Err(err).Int64("service_id", s.ID).Msg("payday reminder failed")
			continue
		}
		sent++
	}
	return sent, nil
}
