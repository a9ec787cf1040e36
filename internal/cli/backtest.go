package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"news-backtester/internal/backtest"
	"news-backtester/internal/models"
	"news-backtester/internal/report"
	"news-backtester/internal/store"
	"news-backtester/pkg/utils"
)

func newBacktestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a signal-driven backtest",
		Long: `Run a day-by-day trade simulation driven by news scores.

All stored news and portfolio holdings are loaded as the simulation
context. Entry rules are set through flags; the result is stored and
displayed with an equity curve.`,
		Example: `  backtester backtest --min-score 2.0 --sentiment positive --hold-days 5
  backtester backtest --capital 25000 --position-size 50 --price-drop 3.0
  backtester backtest --start 2025-01-01 --end 2025-06-30 --seed 42 --chart equity.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()

			rule, capital, err := ruleFromFlags(cmd)
			if err != nil {
				return err
			}

			news, err := app.Store.GetNews(ctx, store.NewsFilter{})
			if err != nil {
				return err
			}
			portfolio, err := app.Store.GetPortfolio(ctx)
			if err != nil {
				return err
			}

			engine := backtest.NewEngine(app.Config, app.Logger)
			result, err := engine.Run(ctx, backtest.RunInput{
				Rule:           rule,
				News:           news,
				Portfolio:      portfolio,
				InitialCapital: capital,
			})
			if err != nil {
				output.Error("Backtest failed: %v", err)
				return err
			}

			if err := app.Store.SaveResult(ctx, result); err != nil {
				output.Warning("Failed to store result: %v", err)
			}

			if chartPath, _ := cmd.Flags().GetString("chart"); chartPath != "" {
				if err := writeChart(result, chartPath); err != nil {
					output.Warning("Failed to write chart: %v", err)
				} else {
					output.Printf("Chart written to %s\n", chartPath)
				}
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			displayResult(output, result)
			return nil
		},
	}

	cmd.Flags().Float64("capital", 10000, "Initial capital")
	cmd.Flags().Float64("position-size", 100, "Position size as % of capital")
	cmd.Flags().Float64("min-score", 2.0, "Minimum news score to qualify")
	cmd.Flags().String("sentiment", "any", "Required news sentiment (positive, negative, any)")
	cmd.Flags().Int("max-age-hours", 48, "News look-back window in hours")
	cmd.Flags().Int("hold-days", 5, "Days a position is held once opened")
	cmd.Flags().Float64("price-drop", 0, "Require a prior-day price drop of at least this %")
	cmd.Flags().Float64("price-rise", 0, "Require a prior-day price rise of at least this %")
	cmd.Flags().String("start", "", "Simulation start date (YYYY-MM-DD, default: earliest news)")
	cmd.Flags().String("end", "", "Simulation end date (YYYY-MM-DD, default: today)")
	cmd.Flags().Int64("seed", 1, "Price path seed; identical seeds replay identical runs")
	cmd.Flags().String("chart", "", "Write equity curve PNG to this path")

	return cmd
}

func ruleFromFlags(cmd *cobra.Command) (models.BacktestRule, float64, error) {
	capital, _ := cmd.Flags().GetFloat64("capital")
	positionSize, _ := cmd.Flags().GetFloat64("position-size")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	sentiment, _ := cmd.Flags().GetString("sentiment")
	maxAgeHours, _ := cmd.Flags().GetInt("max-age-hours")
	holdDays, _ := cmd.Flags().GetInt("hold-days")
	priceDrop, _ := cmd.Flags().GetFloat64("price-drop")
	priceRise, _ := cmd.Flags().GetFloat64("price-rise")
	seed, _ := cmd.Flags().GetInt64("seed")

	rule := models.BacktestRule{
		SentimentRequired: models.SentimentRequirement(sentiment),
		NewsMinScore:      minScore,
		NewsMaxAgeHours:   maxAgeHours,
		PriceCondition:    models.PriceNone,
		HoldPeriodDays:    holdDays,
		PositionSizePct:   positionSize,
		Seed:              seed,
	}

	if priceDrop > 0 && priceRise > 0 {
		return rule, 0, fmt.Errorf("--price-drop and --price-rise are mutually exclusive")
	}
	if priceDrop > 0 {
		rule.PriceCondition = models.PriceDropBefore
		rule.PriceChangePct = priceDrop
	}
	if priceRise > 0 {
		rule.PriceCondition = models.PriceRiseBefore
		rule.PriceChangePct = priceRise
	}

	if startStr, _ := cmd.Flags().GetString("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return rule, 0, fmt.Errorf("invalid --start date: %w", err)
		}
		rule.StartDate = &start
	}
	if endStr, _ := cmd.Flags().GetString("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return rule, 0, fmt.Errorf("invalid --end date: %w", err)
		}
		rule.EndDate = &end
	}

	return rule, capital, nil
}

func writeChart(result *models.BacktestResult, path string) error {
	png, err := report.RenderEquityChart(result.EquityCurve)
	if err != nil {
		return err
	}
	return os.WriteFile(path, png, 0644)
}

func displayResult(output *Output, result *models.BacktestResult) {
	output.Bold("Backtest %s", result.ID)
	output.Printf("  Range:        %s to %s\n",
		result.ExecutedStart.Format("2006-01-02"), result.ExecutedEnd.Format("2006-01-02"))
	output.Println()

	output.Printf("  Trades:       %d (%d won, %d lost)\n",
		result.TotalTrades, result.WinningTrades, result.LosingTrades)
	output.Printf("  Win rate:     %.1f%%\n", result.WinRate)

	pnl := utils.FormatPnL(result.TotalPnL)
	output.Printf("  Total PnL:    %s (%s)\n",
		output.ColoredString(output.PnLColor(result.TotalPnL), pnl),
		utils.FormatPercent(result.TotalPnLPct))
	output.Printf("  Avg win:      %s\n", utils.FormatMoney(result.AvgWin))
	output.Printf("  Avg loss:     %s\n", utils.FormatMoney(result.AvgLoss))
	output.Printf("  Max drawdown: %s (%.2f%%)\n",
		utils.FormatMoney(result.MaxDrawdown), result.MaxDrawdownPct)
	if result.ProfitFactor > 0 {
		output.Printf("  Profit factor: %.2f\n", result.ProfitFactor)
	}
	output.Println()

	if len(result.EquityCurve) > 1 {
		output.Println(report.EquityCurveASCII(result.EquityCurve, 60, 10))
	}
}

func newResultsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results [id]",
		Short: "List stored backtest results or show one by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()

			if len(args) == 1 {
				result, err := app.Store.GetResult(ctx, args[0])
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(result)
				}
				displayResult(output, result)
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			results, err := app.Store.ListResults(ctx, limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(results)
			}
			if len(results) == 0 {
				output.Println("No stored results.")
				return nil
			}
			for _, r := range results {
				output.Printf("%s  %s  trades=%d  win=%.1f%%  pnl=%s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"),
					r.TotalTrades, r.WinRate, utils.FormatPnL(r.TotalPnL))
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum results to list")
	return cmd
}
