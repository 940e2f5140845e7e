// File: cmd/seed/main.go
//
// Applies the schema and seeds a sample catalog for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"pagarme-checkout/internal/config"
	"pagarme-checkout/internal/domain/model"
	pg "pagarme-checkout/internal/infra/db/postgres"
	"pagarme-checkout/internal/infra/logging"
	"pagarme-checkout/internal/infra/security"
	"pagarme-checkout/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "deploy/postgres/init.sql", "path to the schema file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// Apply schema (idempotent: CREATE TABLE IF NOT EXISTS)
	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("Schema applied.")

	logger := logging.New(cfg.Log, true)

	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		log.Fatalf("encryption: %v", err)
	}

	itemRepo := pg.NewItemConfigRepo(pool)
	profileRepo := pg.NewUserProfileRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool, encSvc)
	paymentRepo := pg.NewPaymentRepo(pool, encSvc)
	txManager := pg.NewTxManager(pool)

	catalogUC := usecase.NewCatalogUseCase(itemRepo, profileRepo, nil)
	subUC := usecase.NewSubscriptionUseCase(planRepo, subRepo, paymentRepo, txManager, usecase.Hooks{}, logger)

	// If the catalog is already populated, do nothing.
	items, err := catalogUC.ListItems(ctx)
	if err != nil {
		log.Fatalf("list items: %v", err)
	}
	if len(items) > 0 {
		fmt.Printf("%d items already present. No changes.\n", len(items))
		for _, i := range items {
			fmt.Printf("  - %s (%s, price=%d)\n", i.Slug, i.Name, i.Price)
		}
		return
	}

	// Sample installment policy: 12x, first one interest-free, 1.66% a month.
	cfg12x, err := catalogUC.CreateConfig(ctx, "default-12x", 12, 1, 1, 1.66, []string{model.MethodCreditCard, model.MethodBoleto})
	if err != nil {
		log.Fatalf("create config: %v", err)
	}

	seedItems := []struct {
		Slug     string
		Name     string
		Price    int64
		Tangible bool
	}{
		{"curso-de-go", "Curso de Go", 9999, false},
		{"mentoria", "Mentoria individual", 49900, false},
		{"caneca", "Caneca do curso", 3500, true},
	}
	for _, s := range seedItems {
		item, err := catalogUC.CreateItem(ctx, s.Slug, s.Name, s.Price, s.Tangible, cfg12x.ID, nil, nil)
		if err != nil {
			log.Fatalf("create item %s: %v", s.Slug, err)
		}
		fmt.Printf("Seeded item %s (%s)\n", item.Slug, item.Name)
	}

	plan, err := subUC.CreatePlan(ctx, "plan_dev_monthly", "Assinatura mensal", 2990, 30, 7, []string{model.MethodCreditCard})
	if err != nil {
		log.Fatalf("create plan: %v", err)
	}
	fmt.Printf("Seeded plan %s (%s)\n", plan.GatewayPlanID, plan.Name)
}
