package backtest

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"news-backtester/internal/config"
	apperrors "news-backtester/internal/errors"
	"news-backtester/internal/models"
)

func testEngine() *Engine {
	clock := func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	return NewEngineAt(config.Default(), zerolog.Nop(), clock)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestRunSinglePositiveSignal(t *testing.T) {
	newsDay := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	entryDay := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	exitDay := entryDay.Add(24 * time.Hour)

	in := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredPositive,
			NewsMinScore:      2.0,
			NewsMaxAgeHours:   24,
			PriceCondition:    models.PriceNone,
			HoldPeriodDays:    1,
			PositionSizePct:   100,
			EndDate:           datePtr(exitDay),
			Seed:              42,
		},
		News: []models.NewsItem{{
			ID:        1,
			Title:     "AAPL surges on record profit",
			Body:      "AAPL beat estimates with strong growth.",
			CreatedAt: newsDay,
		}},
		Portfolio: []models.PortfolioItem{
			{Symbol: "AAPL", AssetType: models.AssetStocks, Quantity: "10", Price: "150.00"},
		},
		InitialCapital: 10000,
	}

	result, err := testEngine().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.TotalTrades != 1 {
		t.Fatalf("total_trades = %d, want 1", result.TotalTrades)
	}
	trade := result.Trades[0]
	if trade.Symbol != "AAPL" || trade.NewsID != 1 {
		t.Errorf("trade attribution = %s/%d, want AAPL/1", trade.Symbol, trade.NewsID)
	}
	if !trade.EntryDate.Equal(entryDay) {
		t.Errorf("entry_date = %s, want %s", trade.EntryDate, entryDay)
	}
	if trade.ExitDate == nil || !trade.ExitDate.Equal(exitDay) {
		t.Errorf("exit_date = %v, want %s", trade.ExitDate, exitDay)
	}
	if trade.IsOpen {
		t.Error("trade left open after the run")
	}
	if len(result.EquityCurve) != 2 {
		t.Errorf("equity curve has %d points, want 2", len(result.EquityCurve))
	}
	if result.EquityCurve[0].Equity != 10000 {
		t.Errorf("initial equity = %f, want 10000", result.EquityCurve[0].Equity)
	}
	if !result.ExecutedStart.Equal(entryDay) || !result.ExecutedEnd.Equal(exitDay) {
		t.Errorf("executed range = %s..%s, want %s..%s",
			result.ExecutedStart, result.ExecutedEnd, entryDay, exitDay)
	}
}

func TestRunNoQualifyingNews(t *testing.T) {
	day := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	in := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredAny,
			NewsMinScore:      1000.0,
			NewsMaxAgeHours:   24,
			HoldPeriodDays:    1,
			PositionSizePct:   100,
			EndDate:           datePtr(day.Add(5 * 24 * time.Hour)),
			Seed:              1,
		},
		News: []models.NewsItem{{
			ID:        1,
			Title:     "AAPL gains",
			Body:      "AAPL rose slightly.",
			CreatedAt: day,
		}},
		Portfolio: []models.PortfolioItem{
			{Symbol: "AAPL", AssetType: models.AssetStocks, Quantity: "10", Price: "150.00"},
		},
		InitialCapital: 10000,
	}

	result, err := testEngine().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("a run with no signals is still a valid run: %v", err)
	}

	if result.TotalTrades != 0 {
		t.Errorf("total_trades = %d, want 0", result.TotalTrades)
	}
	if result.WinRate != 0 || result.TotalPnL != 0 {
		t.Errorf("win_rate = %f, total_pnl = %f, want both 0", result.WinRate, result.TotalPnL)
	}
	if len(result.EquityCurve) != 1 {
		t.Errorf("equity curve has %d points, want 1", len(result.EquityCurve))
	}
}

func TestRunIsDeterministicForSameSeed(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	in := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredAny,
			NewsMinScore:      0,
			NewsMaxAgeHours:   24 * 14,
			HoldPeriodDays:    2,
			PositionSizePct:   50,
			EndDate:           datePtr(day.Add(14 * 24 * time.Hour)),
			Seed:              99,
		},
		News: []models.NewsItem{
			{ID: 1, Title: "AAPL surges", Body: "AAPL posts strong growth.", CreatedAt: day.Add(6 * time.Hour)},
			{ID: 2, Title: "GOOG gains", Body: "GOOG profit beat.", CreatedAt: day.Add(3 * 24 * time.Hour)},
		},
		Portfolio: []models.PortfolioItem{
			{Symbol: "AAPL", AssetType: models.AssetStocks, Quantity: "10", Price: "150.00"},
			{Symbol: "GOOG", AssetType: models.AssetStocks, Quantity: "5", Price: "2,800.00"},
		},
		InitialCapital: 20000,
	}

	first, err := testEngine().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := testEngine().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.TotalTrades != second.TotalTrades {
		t.Fatalf("trade counts differ: %d vs %d", first.TotalTrades, second.TotalTrades)
	}
	if first.TotalPnL != second.TotalPnL || first.TotalPnLPct != second.TotalPnLPct {
		t.Errorf("pnl differs across identical seeds: %f vs %f", first.TotalPnL, second.TotalPnL)
	}
	for i := range first.Trades {
		a, b := first.Trades[i], second.Trades[i]
		if a.Symbol != b.Symbol || a.EntryPrice != b.EntryPrice || *a.ExitPrice != *b.ExitPrice {
			t.Errorf("trade %d differs across identical seeds", i)
		}
	}
}

func TestRunOneOpenTradePerSymbol(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// News qualifies on every simulated day, so the engine re-enters as soon
	// as each hold period elapses.
	in := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredAny,
			NewsMinScore:      0,
			NewsMaxAgeHours:   24 * 60,
			HoldPeriodDays:    3,
			PositionSizePct:   100,
			StartDate:         datePtr(day),
			EndDate:           datePtr(day.Add(30 * 24 * time.Hour)),
			Seed:              7,
		},
		News: []models.NewsItem{{
			ID:        1,
			Title:     "AAPL surges on strong growth",
			Body:      "AAPL profit beat.",
			CreatedAt: day,
		}},
		Portfolio: []models.PortfolioItem{
			{Symbol: "AAPL", AssetType: models.AssetStocks, Quantity: "10", Price: "150.00"},
		},
		InitialCapital: 10000,
	}

	result, err := testEngine().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.TotalTrades < 2 {
		t.Fatalf("total_trades = %d, want several re-entries", result.TotalTrades)
	}

	// No two trades on the same symbol may overlap in time.
	bySymbol := map[string][]models.Trade{}
	for _, trade := range result.Trades {
		if trade.IsOpen || trade.ExitDate == nil {
			t.Fatalf("trade %s not closed at end of run", trade.ID)
		}
		bySymbol[trade.Symbol] = append(bySymbol[trade.Symbol], trade)
	}
	for symbol, trades := range bySymbol {
		sort.Slice(trades, func(i, j int) bool {
			return trades[i].EntryDate.Before(trades[j].EntryDate)
		})
		for i := 1; i < len(trades); i++ {
			if trades[i].EntryDate.Before(*trades[i-1].ExitDate) {
				t.Errorf("%s trades overlap: entry %s before previous exit %s",
					symbol, trades[i].EntryDate, trades[i-1].ExitDate)
			}
		}
	}
}

func TestRunForceClosesAtEnd(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Hold period far longer than the simulated range.
	in := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredAny,
			NewsMinScore:      0,
			NewsMaxAgeHours:   24,
			HoldPeriodDays:    365,
			PositionSizePct:   100,
			EndDate:           datePtr(day.Add(5 * 24 * time.Hour)),
			Seed:              3,
		},
		News: []models.NewsItem{{
			ID:        1,
			Title:     "AAPL surges",
			Body:      "AAPL strong growth.",
			CreatedAt: day,
		}},
		Portfolio: []models.PortfolioItem{
			{Symbol: "AAPL", AssetType: models.AssetStocks, Quantity: "10", Price: "150.00"},
		},
		InitialCapital: 10000,
	}

	result, err := testEngine().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.TotalTrades != 1 {
		t.Fatalf("total_trades = %d, want 1", result.TotalTrades)
	}
	trade := result.Trades[0]
	if trade.IsOpen {
		t.Error("trade not force-closed at end of range")
	}
	lastDay := day.Add(5 * 24 * time.Hour)
	if trade.ExitDate == nil || !trade.ExitDate.Equal(lastDay) {
		t.Errorf("exit_date = %v, want %s", trade.ExitDate, lastDay)
	}
}

func TestRunValidation(t *testing.T) {
	engine := testEngine()
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	valid := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredAny,
			PositionSizePct:   100,
			StartDate:         datePtr(day),
			EndDate:           datePtr(day),
		},
		InitialCapital: 10000,
	}

	bad := valid
	bad.InitialCapital = 0
	if _, err := engine.Run(ctx, bad); !apperrors.IsValidation(err) {
		t.Errorf("zero capital: err = %v, want validation error", err)
	}

	bad = valid
	bad.Rule.PositionSizePct = 0
	if _, err := engine.Run(ctx, bad); !apperrors.IsValidation(err) {
		t.Errorf("zero position size: err = %v, want validation error", err)
	}

	bad = valid
	bad.Rule.PositionSizePct = 150
	if _, err := engine.Run(ctx, bad); !apperrors.IsValidation(err) {
		t.Errorf("oversized position: err = %v, want validation error", err)
	}

	bad = valid
	bad.Rule.HoldPeriodDays = -1
	if _, err := engine.Run(ctx, bad); !apperrors.IsValidation(err) {
		t.Errorf("negative hold period: err = %v, want validation error", err)
	}

	bad = valid
	bad.Rule.SentimentRequired = "bullish"
	if _, err := engine.Run(ctx, bad); !apperrors.IsValidation(err) {
		t.Errorf("unknown sentiment requirement: err = %v, want validation error", err)
	}

	bad = valid
	bad.Rule.EndDate = datePtr(day.Add(-48 * time.Hour))
	if _, err := engine.Run(ctx, bad); !apperrors.IsValidation(err) {
		t.Errorf("end before start: err = %v, want validation error", err)
	}
}

func TestRunCannotInferStartWithoutNews(t *testing.T) {
	in := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredAny,
			PositionSizePct:   100,
		},
		InitialCapital: 10000,
	}

	_, err := testEngine().Run(context.Background(), in)
	if !errors.Is(err, apperrors.ErrNoNews) {
		t.Errorf("err = %v, want ErrNoNews", err)
	}
	if !errors.Is(err, apperrors.ErrInputValidation) {
		t.Errorf("err = %v, want ErrInputValidation", err)
	}
}

func TestRunFallsBackToDefaultSymbol(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	in := RunInput{
		Rule: models.BacktestRule{
			SentimentRequired: models.SentimentRequiredAny,
			NewsMinScore:      0,
			NewsMaxAgeHours:   24,
			HoldPeriodDays:    1,
			PositionSizePct:   100,
			EndDate:           datePtr(day.Add(2 * 24 * time.Hour)),
			Seed:              5,
		},
		News: []models.NewsItem{{
			ID:        1,
			Title:     "Markets rally on strong growth",
			Body:      "Broad gains across equities.",
			CreatedAt: day,
		}},
		InitialCapital: 10000,
	}

	result, err := testEngine().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.TotalTrades == 0 {
		t.Fatal("expected at least one trade against the default symbol")
	}
	if result.Trades[0].Symbol != config.Default().Simulation.DefaultSymbol {
		t.Errorf("symbol = %s, want default %s",
			result.Trades[0].Symbol, config.Default().Simulation.DefaultSymbol)
	}
}
