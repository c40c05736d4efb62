package main

import (
	"context"
	"digital-storefront/internal/audit"
	"digital-storefront/internal/client"
	"digital-storefront/internal/config"
	"digital-storefront/internal/logging"
	"digital-storefront/internal/metrics"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"digital-storefront/internal/server"
	"digital-storefront/internal/service"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	ctx := context.Background()

	db, err := client.InitDBClient(ctx, cfg.Database)
	if err != nil {
		logger.Error("init database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Error("load refund policy", "path", cfg.PolicyFile, "error", err)
		os.Exit(1)
	}

	sink, err := audit.NewSink(ctx, cfg.Audit, db, logger)
	if err != nil {
		logger.Error("init audit sink", "sink", cfg.Audit.Sink, "error", err)
		os.Exit(1)
	}
	recorder := audit.NewRecorder(sink, cfg.Audit.Timeout, logger)

	refunders := map[model.Processor]client.Refunder{}
	if cfg.Paypal.Enabled() {
		refunders[model.ProcessorPaypal] = client.NewPaypalClient(&cfg.Paypal)
	}
	if cfg.BrainTree.Enabled() {
		refunders[model.ProcessorBraintree] = client.NewBraintreeClient(&cfg.BrainTree)
	}

	var presigner client.AssetPresigner
	if cfg.Storage.Bucket != "" {
		presigner, err = client.NewS3Presigner(ctx, &cfg.Storage)
		if err != nil {
			logger.Error("init asset storage", "bucket", cfg.Storage.Bucket, "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("S3_BUCKET not set, downloads are disabled")
	}

	m := metrics.New()

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	refundRepo := repository.NewRefundRepository(db)

	catalogService := service.NewCatalogService(productRepo)
	purchaseService := service.NewPurchaseService(db, orderRepo, accessRepo, recorder, logger, nil)
	accessTracker := service.NewAccessTracker(purchaseService, accessRepo, recorder, m, logger, nil)
	evaluator := service.NewEligibilityEvaluator(purchaseService, m, nil)
	refundRegistry := service.NewRefundRegistry(
		db,
		purchaseService,
		orderRepo,
		accessRepo,
		refundRepo,
		refunders,
		recorder,
		m,
		logger,
		nil,
	)
	downloadService := service.NewDownloadService(purchaseService, accessTracker, productRepo, presigner)

	if cfg.Environment.IsDevelopment() {
		if err := catalogService.Seed(ctx); err != nil {
			logger.Warn("seed catalog", "error", err)
		}
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg, server.Services{
		Catalog:   catalogService,
		Purchases: purchaseService,
		Downloads: downloadService,
		Tracker:   accessTracker,
		Evaluator: evaluator,
		Refunds:   refundRegistry,
	}, policy, m, logger)

	logger.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name, "audit_sink", cfg.Audit.Sink)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := recorder.Close(); err != nil {
		logger.Warn("close audit sink", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
