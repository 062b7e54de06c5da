package sched

import (
	"context"
	"time"

	"tariff-billing-service/internal/usecase"

	"github.com/rs/zerolog"
)

// PaydayWorker periodically charges services whose payday has arrived
// via the billing use case.
type PaydayWorker struct {
	interval time.Duration
	billing  usecase.BillingUseCase
	log      *zerolog.Logger
}

func NewPaydayWorker(interval time.Duration, billing usecase.BillingUseCase, logger *zerolog.Logger) *PaydayWorker {
	compLog := logger.With().Str("component", "PaydayWorker").Logger()
	return &PaydayWorker{
		interval: interval,
		billing:  billing,
		log:      &compLog,
	}
}

func (w *PaydayWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payday worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payday worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.billing.ChargeDue(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("payday worker error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("services renewed")
			}
		}
	}
}
