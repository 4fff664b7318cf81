package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swisscoin/ledger/internal/config"
	"github.com/swisscoin/ledger/internal/server"
	"github.com/swisscoin/ledger/internal/service"
	"github.com/swisscoin/ledger/internal/storage"
	"github.com/swisscoin/ledger/internal/storage/memory"
	"github.com/swisscoin/ledger/internal/storage/sqlite"
	"github.com/swisscoin/ledger/pkg/logging"
)

func main() {
	logging.Setup()

	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.App.LogLevel))

	store, err := openStore(cfg.DB)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing storage", "error", err)
		}
	}()

	var registry *prometheus.Registry
	var collectors prometheus.Registerer
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		collectors = registry
	}

	// The balance service recomputes home summaries after every write,
	// so it doubles as the notifier the writing services publish to.
	balances := service.NewBalanceService(store, collectors, cfg.Recompute.Debounce)
	deps := server.Deps{
		Store:         store,
		Participants:  service.NewParticipantService(store, balances),
		Groups:        service.NewGroupService(store, balances),
		Subscriptions: service.NewSubscriptionService(store, balances),
		Transactions:  service.NewTransactionService(store, balances),
		Balances:      balances,
		Settlements:   service.NewSettlementService(store, balances, balances),
		Registry:      registry,
	}

	srv := server.New(cfg.App, server.NewRouter(deps))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go balances.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			slog.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// openStore picks the backend from config: a SQLite file for durable
// runs, the in-memory store when no path is set.
func openStore(cfg config.DBConfig) (storage.Store, error) {
	if cfg.Path == "" {
		slog.Info("using in-memory storage")
		return memory.New(), nil
	}
	store, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("storage initialized", "database", cfg.Path)
	return store, nil
}
