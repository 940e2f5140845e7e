// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"pagarme-checkout/internal/config"
	pg "pagarme-checkout/internal/infra/db/postgres"
	"pagarme-checkout/internal/infra/logging"
	"pagarme-checkout/internal/infra/metrics"
	pay "pagarme-checkout/internal/infra/payment"
	red "pagarme-checkout/internal/infra/redis"
	"pagarme-checkout/internal/infra/security"
	"pagarme-checkout/internal/infra/web"
	"pagarme-checkout/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
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
	defer redisClient.Close()

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	itemRepo := pg.NewItemConfigRepoCacheDecorator(pg.NewItemConfigRepo(pool), redisClient, cfg.Redis.TTL)
	paymentRepo := pg.NewPaymentRepo(pool, encSvc)
	planRepo := pg.NewPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool, encSvc)
	profileRepo := pg.NewUserProfileRepo(pool)

	// ---- Gateway ----
	gateway := pay.NewPagarmeGateway(cfg.Pagarme.APIKey, cfg.Pagarme.Endpoint)
	verifier := pay.NewPagarmeWebhookVerifier(cfg.Pagarme.APIKey)

	// ---- Use cases ----
	hooks := usecase.Hooks{}
	checkoutUC := usecase.NewCheckoutUseCase(itemRepo, paymentRepo, profileRepo, gateway, txManager, hooks, logger)
	notificationUC := usecase.NewNotificationUseCase(itemRepo, paymentRepo, subRepo, verifier, txManager, hooks, logger)
	catalogUC := usecase.NewCatalogUseCase(itemRepo, profileRepo, nil)
	subUC := usecase.NewSubscriptionUseCase(planRepo, subRepo, paymentRepo, txManager, hooks, logger)
	statsUC := usecase.NewStatsUseCase(paymentRepo)

	// ---- HTTP ----
	server := web.NewServer(checkoutUC, catalogUC, notificationUC, subUC, statsUC, cfg.Server, cfg.Runtime.Dev, logger)
	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server")
	}
	logger.Info().Msg("shutdown complete")
}
