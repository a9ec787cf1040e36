package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"news-backtester/internal/models"
	"news-backtester/internal/store"
	"news-backtester/pkg/utils"
)

func newNewsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Manage stored news items",
	}

	cmd.AddCommand(newNewsAddCmd(app))
	cmd.AddCommand(newNewsListCmd(app))

	return cmd
}

func newNewsAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <body>",
		Short: "Store a news item",
		Example: `  backtester news add "AAPL beats earnings expectations" --title "Apple Q3" --source reuters
  backtester news add "Bond yields decline on rate cut hopes" --date 2025-08-12T09:30:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			title, _ := cmd.Flags().GetString("title")
			source, _ := cmd.Flags().GetString("source")
			dateStr, _ := cmd.Flags().GetString("date")

			item := models.NewsItem{
				Title:  title,
				Body:   args[0],
				Source: source,
			}
			if dateStr != "" {
				// An unparsable date is stored without a timestamp;
				// scoring treats such items as current.
				if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
					item.CreatedAt = t.UTC()
				} else {
					output.Warning("Could not parse --date %q; storing without timestamp", dateStr)
				}
			} else {
				item.CreatedAt = time.Now().UTC()
			}

			id, err := app.Store.SaveNews(context.Background(), &item)
			if err != nil {
				output.Error("Failed to store news: %v", err)
				return err
			}

			output.Success("Stored news item %d", id)
			return nil
		},
	}

	cmd.Flags().String("title", "", "Optional title")
	cmd.Flags().String("source", "", "Optional source")
	cmd.Flags().String("date", "", "Publication timestamp (RFC3339, default: now)")

	return cmd
}

func newNewsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored news items",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			limit, _ := cmd.Flags().GetInt("limit")
			items, err := app.Store.GetNews(context.Background(), store.NewsFilter{Limit: limit})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(items)
			}
			if len(items) == 0 {
				output.Println("No stored news.")
				return nil
			}
			for _, item := range items {
				date := "unknown date"
				if !item.CreatedAt.IsZero() {
					date = item.CreatedAt.Format("2006-01-02 15:04")
				}
				title := item.Title
				if title == "" {
					title = utils.Truncate(item.Body, 60)
				}
				output.Printf("%4d  %s  %s\n", item.ID, output.Dim(date), title)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 50, "Maximum items to list")
	return cmd
}
