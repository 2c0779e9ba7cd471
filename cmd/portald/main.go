package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/propertydesk/property-broker/internal/auth"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/export"
	"github.com/propertydesk/property-broker/internal/extract"
	"github.com/propertydesk/property-broker/internal/ingest"
	"github.com/propertydesk/property-broker/internal/parser"
	"github.com/propertydesk/property-broker/internal/payment"
	"github.com/propertydesk/property-broker/internal/repository"
	"github.com/propertydesk/property-broker/internal/schema"
	"github.com/propertydesk/property-broker/internal/search"
	"github.com/propertydesk/property-broker/internal/server"
	"github.com/propertydesk/property-broker/internal/subscription"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()

	users := repository.NewUserRepository(db, logger)
	props := repository.NewPropertyRepository(db, logger)
	subs := repository.NewSubscriptionRepository(db, logger)
	logs := repository.NewSearchLogRepository(db, logger)

	tokens := auth.NewTokenManager(cfg.Auth)
	authSvc := auth.NewService(users, tokens, logger)

	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Error("failed to ensure admin account", "error", err)
		os.Exit(1)
	}

	var gateway payment.Gateway
	if gw, err := payment.NewHMACGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret); err != nil {
		logger.Warn("payment gateway not configured, order creation disabled")
	} else {
		gateway = gw
	}
	subSvc := subscription.NewService(subs, gateway, logger)

	sweep, err := subSvc.StartSweep(cfg.Subscription.SweepSpec)
	if err != nil {
		logger.Error("failed to start subscription sweep", "error", err)
		os.Exit(1)
	}
	defer sweep.Stop()

	validator, err := schema.NewValidator()
	if err != nil {
		logger.Error("failed to compile property schema", "error", err)
		os.Exit(1)
	}
	extractor := extract.NewPDFExtractor(cfg.Ingest.ExtractTimeout, logger)
	exportSvc := export.NewService(props, users, subs, logger)
	ingestSvc := ingest.NewService(extractor, props, validator, parser.Options{DefaultCity: cfg.Ingest.CityDomain}, logger).
		WithSnapshot(exportSvc, cfg.Ingest.ExcelDir)
	searchSvc := search.NewService(props, logs, logger)

	srv := server.New(server.Deps{
		Config:       cfg,
		AuthService:  authSvc,
		Tokens:       tokens,
		Users:        users,
		Properties:   props,
		Subs:         subs,
		SearchLogs:   logs,
		Subscription: subSvc,
		Search:       searchSvc,
		Ingest:       ingestSvc,
		Export:       exportSvc,
		Logger:       logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
