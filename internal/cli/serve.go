package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bartoszrychlicki/invoice-finder/internal/api"
	"github.com/bartoszrychlicki/invoice-finder/internal/application/reconcile"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/exemption"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/matcher"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/config"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/logging"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/storage"
)

// RunServe runs the API server until interrupted.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	orchestrator := reconcile.NewOrchestrator(
		registry.NewCSVSource(cfg.Registry.Path),
		matcher.NewMatcher(matcherConfig(cfg)),
		exemption.NewClassifier(exemptionRules(cfg, logger)),
		newSearcher(cfg, logger),
		store,
		logger,
	)

	apiCfg := api.DefaultConfig()
	apiCfg.Port = flags.Port

	server := api.NewServer(apiCfg, store, orchestrator, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-quit:
		logger.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
