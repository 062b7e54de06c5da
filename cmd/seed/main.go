package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tariff-billing-service/internal/config"
	pg "tariff-billing-service/internal/infra/db/postgres"
	"tariff-billing-service/internal/infra/logging"
	"tariff-billing-service/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tarifUC := usecase.NewTarifUseCase(pg.NewTarifRepo(pool), logger)

	// If plans already exist, do nothing
	tarifs, err := tarifUC.List(ctx)
	if err != nil {
		log.Fatalf("list tarifs: %v", err)
	}
	if len(tarifs) > 0 {
		fmt.Printf("%d tarifs already present. No changes.\n", len(tarifs))
		for _, t := range tarifs {
			fmt.Printf("  - %s (group=%d, months=%d, price=%d, speed=%dMbit)\n", t.Name, t.GroupID, t.PayPeriodMonths, t.Price, t.SpeedMbit)
		}
		return
	}

	// Sample plans covering both groups and both billing periods
	seed := []struct {
		Group int
		Name  string
		Price int64
		Month int
		PPD   int64
		Speed int
		Type  string
	}{
		{1, "Home 50", 30_000, 1, 1_000, 50, "home"},
		{1, "Home 100", 54_000, 1, 1_800, 100, "home"},
		{1, "Home 100 Quarterly", 153_000, 3, 1_700, 100, "home"},
		{2, "Office 200", 120_000, 1, 4_000, 200, "office"},
		{2, "Office 500", 270_000, 1, 9_000, 500, "office"},
	}

	for _, s := range seed {
		t, err := tarifUC.Create(ctx, s.Group, s.Name, s.Price, s.Month, s.PPD, s.Speed, s.Type)
		if err != nil {
			log.Fatalf("create tarif %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%d, group=%d, months=%d, price=%d)\n", t.Name, t.ID, t.GroupID, t.PayPeriodMonths, t.Price)
	}

	fmt.Println("Seeding complete.")
}
