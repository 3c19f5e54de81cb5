// check-duplicate scores a freshly extracted invoice against the registry
// and reports whether it is already recorded. Used by the extraction
// pipeline before appending a new row.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bartoszrychlicki/invoice-finder/internal/cli"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/registry"
	"github.com/bartoszrychlicki/invoice-finder/internal/domain/scorer"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/config"
)

func main() {
	_ = godotenv.Load()

	flags := cli.ParseCheckDuplicateFlags()

	cfg := config.LoadOrEnv()
	if flags.ConfigFile != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigFile)
	}

	registryPath := cfg.Registry.Path
	if flags.Registry != "" {
		registryPath = flags.Registry
	}

	invoices, _, err := registry.Load(context.Background(), registry.NewCSVSource(registryPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "check-duplicate: %v\n", err)
		os.Exit(1)
	}

	candidate := &registry.Invoice{
		Number:      flags.Number,
		IssueDate:   flags.IssueDate,
		Amount:      flags.Amount,
		Currency:    flags.Currency,
		SellerName:  flags.SellerName,
		SellerTaxID: flags.SellerTaxID,
	}

	existing, score := scorer.FindDuplicate(candidate, invoices)
	if existing != nil {
		fmt.Printf("duplicate of registry row %d (invoice %s), score %d\n", existing.Row, existing.Number, score)
		return
	}
	fmt.Printf("not a duplicate (best score %d)\n", score)
}
