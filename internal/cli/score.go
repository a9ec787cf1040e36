package cli

import (
	"context"

	"github.com/spf13/cobra"

	"news-backtester/internal/scoring"
	"news-backtester/internal/store"
	"news-backtester/pkg/utils"
)

func newScoreCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score stored news against the portfolio",
		Long: `Score every stored news item for relevance against the current
portfolio and print them ordered by score, highest first, with the
score breakdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()

			limit, _ := cmd.Flags().GetInt("limit")
			news, err := app.Store.GetNews(ctx, store.NewsFilter{})
			if err != nil {
				return err
			}
			portfolio, err := app.Store.GetPortfolio(ctx)
			if err != nil {
				return err
			}

			scorer := scoring.NewScorer(app.Config.Scoring)
			results := scorer.ScoreAndSort(news, portfolio)
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}

			if output.IsJSON() {
				return output.JSON(results)
			}
			if len(results) == 0 {
				output.Println("No stored news to score.")
				return nil
			}

			titles := make(map[int64]string, len(news))
			for _, item := range news {
				title := item.Title
				if title == "" {
					title = utils.Truncate(item.Body, 50)
				}
				titles[item.ID] = title
			}

			for _, r := range results {
				output.Bold("%.2f  %s", r.Score, titles[r.NewsID])
				b := r.Breakdown
				output.Printf("      tickers=%d (%.1f)  categories=%d (%.1f)  sentiment=%s (%.1f)\n",
					b.TickerMatches, b.TickerScore,
					b.CategoryMatches, b.CategoryScore,
					b.SentimentType, b.SentimentScore)
				obsolete := ""
				if b.IsObsolete {
					obsolete = "  [obsolete]"
				}
				output.Printf("      age=%dd  decay=%.3f%s\n", b.AgeDays, b.TemporalDecay, obsolete)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Show only the top N items")
	return cmd
}
