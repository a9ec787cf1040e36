package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"news-backtester/internal/models"
)

func newPortfolioCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage stored portfolio holdings",
	}

	cmd.AddCommand(newPortfolioAddCmd(app))
	cmd.AddCommand(newPortfolioListCmd(app))

	return cmd
}

func newPortfolioAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Store a portfolio holding",
		Example: `  backtester portfolio add "Apple Inc" --type stocks --symbol AAPL --quantity 10 --price 185.50
  backtester portfolio add "US Treasuries" --type bonds --total-value 12000 --currency USD`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			assetType, _ := cmd.Flags().GetString("type")
			symbol, _ := cmd.Flags().GetString("symbol")
			quantity, _ := cmd.Flags().GetString("quantity")
			price, _ := cmd.Flags().GetString("price")
			totalValue, _ := cmd.Flags().GetString("total-value")
			currency, _ := cmd.Flags().GetString("currency")

			if !validAssetType(assetType) {
				return fmt.Errorf("unknown asset type %q (stocks, bonds, etf, funds, currencies, other)", assetType)
			}

			item := models.PortfolioItem{
				AssetType:  models.AssetType(assetType),
				Name:       args[0],
				Symbol:     symbol,
				Quantity:   quantity,
				Price:      price,
				TotalValue: totalValue,
				Currency:   currency,
			}

			if err := app.Store.SavePortfolioItem(context.Background(), &item); err != nil {
				output.Error("Failed to store holding: %v", err)
				return err
			}

			output.Success("Stored holding %s", item.Name)
			return nil
		},
	}

	cmd.Flags().String("type", "stocks", "Asset type")
	cmd.Flags().String("symbol", "", "Trading symbol")
	cmd.Flags().String("quantity", "", "Quantity held")
	cmd.Flags().String("price", "", "Price per unit")
	cmd.Flags().String("total-value", "", "Total position value")
	cmd.Flags().String("currency", "USD", "Currency")

	return cmd
}

func newPortfolioListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored holdings",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			items, err := app.Store.GetPortfolio(context.Background())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(items)
			}
			if len(items) == 0 {
				output.Println("Portfolio is empty.")
				return nil
			}
			for _, item := range items {
				symbol := item.Symbol
				if symbol == "" {
					symbol = "-"
				}
				output.Printf("%-12s %-8s %s\n", item.AssetType, symbol, item.Name)
			}
			return nil
		},
	}
}

func validAssetType(s string) bool {
	switch models.AssetType(s) {
	case models.AssetStocks, models.AssetBonds, models.AssetETF,
		models.AssetFunds, models.AssetCurrencies, models.AssetOther:
		return true
	}
	return false
}
