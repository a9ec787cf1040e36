package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"news-backtester/internal/config"
	"news-backtester/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "backtester",
		Short: "Signal-driven news backtesting engine",
		Long: `backtester scores historical news against a portfolio and replays
a day-by-day trade simulation driven by those scores.

News items and portfolio holdings live in a local SQLite database; each
backtest run produces trade-level results, an equity curve and aggregate
risk metrics.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
			if err != nil {
				return err
			}
			app.Store = st
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				app.Store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(newBacktestCmd(app))
	rootCmd.AddCommand(newResultsCmd(app))
	rootCmd.AddCommand(newScoreCmd(app))
	rootCmd.AddCommand(newNewsCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))

	return rootCmd
}
