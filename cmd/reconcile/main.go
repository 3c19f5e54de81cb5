package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bartoszrychlicki/invoice-finder/internal/cli"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/config"
)

func main() {
	_ = godotenv.Load()

	flags := cli.ParseReconcileFlags()

	cfg := config.LoadOrEnv()
	if flags.ConfigFile != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigFile)
	}

	if err := cli.RunReconcile(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "reconcile: %v\n", err)
		os.Exit(1)
	}
}
