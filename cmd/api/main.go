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

	flags := cli.ParseServeFlags()

	cfg := config.LoadOrEnv()
	if flags.ConfigFile != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigFile)
	}

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}
