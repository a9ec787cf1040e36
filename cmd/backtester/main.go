package main

import (
	"fmt"
	"os"

	"news-backtester/internal/cli"
	"news-backtester/internal/config"
	"news-backtester/internal/logging"
)

func main() {
	configDir := os.Getenv("BACKTESTER_CONFIG_DIR")

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.Logging)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
