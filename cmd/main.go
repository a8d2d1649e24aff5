package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freshmart/internal/bootstrap"
	"freshmart/internal/checkout"
	"freshmart/internal/config"
	cronpkg "freshmart/internal/cron"
	"freshmart/internal/gateway"
	"freshmart/internal/handler"
	"freshmart/internal/ledger"
	"freshmart/internal/manual"
	"freshmart/internal/notify"
	"freshmart/internal/refund"
	"freshmart/internal/registry"
	"freshmart/internal/repository"
	"freshmart/internal/router"
	"freshmart/internal/webhook"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Repositories ---
	paymentRepo := repository.NewPaymentRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	refundRepo := repository.NewRefundRepository(db)

	// --- Core services ---
	whatsapp := notify.NewWhatsAppClient(&cfg.WhatsApp, logger)
	gateways := gateway.NewRegistry(&cfg.Payment, whatsapp, logger)
	methods := registry.New(methodRepo, 30*time.Second)
	paymentLedger := ledger.New(db, logger)

	// Webhook deduper (Redis with in-memory fallback); consulted by the
	// ingest service only after the signature check
	deduper, dedupeErr := webhook.NewEventDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		10*time.Minute,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for webhook dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	checkoutSvc := checkout.NewService(methods, gateways, paymentLedger,
		cfg.Payment.Currency, cfg.Server.BaseURL, cfg.Payment.PendingExpiry, logger)
	ingestSvc := webhook.NewService(paymentRepo, paymentLedger, deduper,
		cfg.Payment.Paystack.SecretKey, cfg.Payment.Flutterwave.SecretHash, logger)
	manualSvc := manual.NewWorkflow(paymentRepo, paymentLedger, whatsapp, logger)
	refundSvc := refund.NewProcessor(paymentRepo, refundRepo, gateways, paymentLedger, logger)

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Routes ---
	handlers := &router.Handlers{
		Payment: handler.NewPaymentHandler(checkoutSvc, paymentRepo, refundRepo, logger),
		Admin:   handler.NewAdminHandler(manualSvc, refundSvc, logger),
		Method:  handler.NewMethodHandler(methods, logger),
		Webhook: handler.NewWebhookHandler(ingestSvc, logger),
	}
	router.Setup(e, handlers, cfg.Admin.APIKey)

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(paymentRepo, paymentLedger, gateways, logger)
	scheduler.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting FreshMart payment server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		return err
	}
	logger.Info("Schema migration and default seed completed")
	return nil
}
