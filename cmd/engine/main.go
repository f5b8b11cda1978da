package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stockline-backend/api/routes"
	"github.com/angelmondragon/stockline-backend/internal/catalog"
	"github.com/angelmondragon/stockline-backend/internal/flow"
	"github.com/angelmondragon/stockline-backend/internal/ledger"
	"github.com/angelmondragon/stockline-backend/internal/orders"
	"github.com/angelmondragon/stockline-backend/internal/receipts"
	"github.com/angelmondragon/stockline-backend/internal/session"
	"github.com/angelmondragon/stockline-backend/pkg/config"
	"github.com/angelmondragon/stockline-backend/pkg/db"
	"github.com/angelmondragon/stockline-backend/pkg/logger"
	"github.com/angelmondragon/stockline-backend/pkg/metrics"
	"github.com/angelmondragon/stockline-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "engine"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "engine",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), cfg.Session.SearchLimit)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	receiptsSvc, err := receipts.NewService(dbClient, receipts.NewRepository(dbClient.DB()), ledgerSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(dbClient, orders.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := session.NewStore(cfg.Session, logg)
	store.StartSweeper(runCtx)
	defer store.Stop()

	engine, err := flow.NewEngine(flow.Config{
		Store:          store,
		Catalog:        catalogSvc,
		Receipts:       receiptsSvc,
		Orders:         ordersSvc,
		Logger:         logg,
		Metrics:        workflowMetrics,
		DateWindowDays: cfg.Session.DateWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create workflow engine", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting engine server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, engine, registry),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "engine server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}
