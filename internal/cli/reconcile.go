package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bartoszrychlicki/invoice-finder/internal/adapters/recovery"
	"github.com/bartoszrychlicki/invoice-finder/internal/application/reconcile"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/exemption"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/matcher"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/config"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/logging"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/storage"
)

// RunReconcile executes a reconciliation run from the command line.
func RunReconcile(cfg *config.Config, flags *ReconcileFlags) error {
	if flags.File == "" {
		return fmt.Errorf("--file is required")
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	registryPath := cfg.Registry.Path
	if flags.Registry != "" {
		registryPath = flags.Registry
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	orchestrator := reconcile.NewOrchestrator(
		registry.NewCSVSource(registryPath),
		matcher.NewMatcher(matcherConfig(cfg)),
		exemption.NewClassifier(exemptionRules(cfg, logger)),
		newSearcher(cfg, logger),
		store,
		logger,
	)

	PrintHeader(flags.File, flags.SkipSearch)

	result, err := orchestrator.Run(context.Background(), reconcile.Options{
		StatementPath: flags.File,
		SkipSearch:    flags.SkipSearch,
	})
	if err != nil {
		return err
	}

	PrintSummary(result)
	return nil
}

// matcherConfig applies config overrides onto the default thresholds.
func matcherConfig(cfg *config.Config) matcher.Config {
	mc := matcher.DefaultConfig()
	if cfg.Matching.AmountTolerance > 0 {
		mc.AmountTolerance = cfg.Matching.AmountTolerance
	}
	if cfg.Matching.AcceptScore > 0 {
		mc.AcceptScore = cfg.Matching.AcceptScore
	}
	if cfg.Matching.MaxSubsetCandidates > 0 {
		mc.MaxSubsetCandidates = cfg.Matching.MaxSubsetCandidates
	}
	return mc
}

// exemptionRules loads the configured rules file, falling back to the
// built-in rules when no file is configured or it cannot be read.
func exemptionRules(cfg *config.Config, logger *slog.Logger) []exemption.Rule {
	if cfg.Exemptions.RulesPath == "" {
		return nil
	}
	rules, err := exemption.LoadRules(cfg.Exemptions.RulesPath)
	if err != nil {
		logger.Warn("Failed to load exemption rules, using defaults", "error", err)
		return nil
	}
	return rules
}

// newSearcher builds the deep-search client, or nil when recovery is
// disabled or unconfigured.
func newSearcher(cfg *config.Config, logger *slog.Logger) recovery.Searcher {
	if !cfg.Recovery.Enabled || cfg.Recovery.Endpoint == "" {
		return nil
	}
	return recovery.NewHTTPSearcher(recovery.Config{
		Endpoint:         cfg.Recovery.Endpoint,
		APIKey:           cfg.Recovery.APIKey,
		InternalKeywords: cfg.Recovery.InternalKeywords,
		MaxRetries:       cfg.Recovery.MaxRetries,
	}, nil, logger)
}
