package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tariff-billing-service/internal/config"
	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/adapter"
	pg "tariff-billing-service/internal/infra/db/postgres"
	"tariff-billing-service/internal/infra/logging"
	"tariff-billing-service/internal/infra/metrics"
	red "tariff-billing-service/internal/infra/redis"
	"tariff-billing-service/internal/infra/sched"
	"tariff-billing-service/internal/infra/telegram"
	"tariff-billing-service/internal/infra/web"
	"tariff-billing-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed auth, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer func() { _ = redisClient.Close() }()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	serviceRepo := pg.NewServiceRepo(pool)
	accountRepo := pg.NewAccountRepo(pool)
	ledgerRepo := pg.NewLedgerRepo(pool)
	tarifRepo := red.NewTarifCache(pg.NewTarifRepo(pool), redisClient, cfg.Redis.TTL)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	policy := model.BillingPolicy{
		LatencyDays:      cfg.Billing.LatencyDays,
		ForbiddenDayFrom: cfg.Billing.ForbiddenDayFrom,
	}
	serviceUC := usecase.NewServiceUseCase(serviceRepo, tarifRepo, accountRepo, ledgerRepo, tm, locker, policy, cfg.Billing.LockTTL, time.Now, logger)
	tarifUC := usecase.NewTarifUseCase(tarifRepo, logger)
	accountUC := usecase.NewAccountUseCase(accountRepo, ledgerRepo, tm, time.Now, logger)
	billingUC := usecase.NewBillingUseCase(serviceRepo, accountRepo, ledgerRepo, tm, locker, policy, cfg.Billing.LockTTL, time.Now, logger)

	// ---- Notifications ----
	var notifier adapter.NotifierAdapter = telegram.NoopNotifier{}
	if cfg.Telegram.Token != "" {
		notifier, err = telegram.NewNotifier(cfg.Telegram.Token, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
	} else {
		logger.Warn().Msg("telegram.token not set, payday reminders disabled")
	}
	notifUC := usecase.NewNotificationUseCase(billingUC, notifier, logger)

	// ---- Workers ----
	paydayWorker := sched.NewPaydayWorker(cfg.Billing.RenewalInterval, billingUC, logger)
	go func() { _ = paydayWorker.Run(ctx) }()
	notifWorker := sched.NewNotificationWorker(cfg.Billing.ReminderInterval, notifUC, logger)
	go func() { _ = notifWorker.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.HTTP.JWTSecret, cfg.HTTP.SessionTTL)
	server := web.NewServer(cfg.HTTP.Port, auth, serviceUC, tarifUC, accountUC, logger)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
