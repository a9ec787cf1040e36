package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "news-backtester/internal/errors"
	"news-backtester/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetNews(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	id, err := store.SaveNews(ctx, &models.NewsItem{
		Title:     "AAPL surges",
		Body:      "AAPL posted strong growth.",
		Source:    "wire",
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == 0 {
		t.Error("save returned no id")
	}

	items, err := store.GetNews(ctx, NewsFilter{})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	item := items[0]
	if item.ID != id || item.Title != "AAPL surges" || item.Source != "wire" {
		t.Errorf("round trip mismatch: %+v", item)
	}
	if !item.CreatedAt.Equal(created) {
		t.Errorf("created_at = %s, want %s", item.CreatedAt, created)
	}
}

func TestSaveNewsRejectsEmptyBody(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveNews(context.Background(), &models.NewsItem{Title: "no body", Body: "   "})
	if !apperrors.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestSaveNewsWithoutTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveNews(ctx, &models.NewsItem{Body: "undated item"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	items, err := store.GetNews(ctx, NewsFilter{})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if !items[0].CreatedAt.IsZero() {
		t.Errorf("created_at = %s, want zero for undated item", items[0].CreatedAt)
	}
}

func TestGetNewsFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		src := "wire"
		if i%2 == 1 {
			src = "blog"
		}
		_, err := store.SaveNews(ctx, &models.NewsItem{
			Body:      "item",
			Source:    src,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	items, err := store.GetNews(ctx, NewsFilter{From: base.Add(24 * time.Hour), To: base.Add(3 * 24 * time.Hour)})
	if err != nil {
		t.Fatalf("range query failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("range query returned %d items, want 3", len(items))
	}

	items, err = store.GetNews(ctx, NewsFilter{Source: "blog"})
	if err != nil {
		t.Fatalf("source query failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("source query returned %d items, want 2", len(items))
	}

	items, err = store.GetNews(ctx, NewsFilter{Limit: 2})
	if err != nil {
		t.Fatalf("limit query failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("limit query returned %d items, want 2", len(items))
	}
	// Oldest first.
	if len(items) == 2 && items[0].CreatedAt.After(items[1].CreatedAt) {
		t.Error("items not in ascending created_at order")
	}
}

func TestPortfolioRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := &models.PortfolioItem{
		AssetType:  models.AssetStocks,
		Name:       "Apple Inc.",
		Symbol:     "AAPL",
		Quantity:   "10",
		Price:      "150.00",
		TotalValue: "1,500.00",
		Currency:   "USD",
	}
	if err := store.SavePortfolioItem(ctx, item); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.SavePortfolioItem(ctx, &models.PortfolioItem{}); !apperrors.IsValidation(err) {
		t.Errorf("nameless item: err = %v, want validation error", err)
	}

	items, err := store.GetPortfolio(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	got := items[0]
	if got.AssetType != models.AssetStocks || got.Symbol != "AAPL" || got.Price != "150.00" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestResultRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	exit := start.Add(24 * time.Hour)
	exitPrice := 155.0
	result := &models.BacktestResult{
		ID:            "run-1",
		TotalTrades:   1,
		WinningTrades: 1,
		WinRate:       100,
		TotalPnL:      333.0,
		TotalPnLPct:   3.33,
		Trades: []models.Trade{{
			ID:         "trade-1",
			Symbol:     "AAPL",
			NewsID:     7,
			EntryDate:  start,
			EntryPrice: 150.0,
			ExitDate:   &exit,
			ExitPrice:  &exitPrice,
			PnL:        5.0,
			PnLPct:     3.33,
		}},
		EquityCurve: []models.EquityPoint{
			{Date: start, Equity: 10000},
			{Date: exit, Equity: 10333},
		},
		ExecutedStart: start,
		ExecutedEnd:   exit,
		CreatedAt:     exit,
	}

	if err := store.SaveResult(ctx, result); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.GetResult(ctx, "run-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.TotalTrades != 1 || loaded.WinRate != 100 || loaded.TotalPnL != 333.0 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if len(loaded.Trades) != 1 || loaded.Trades[0].Symbol != "AAPL" {
		t.Errorf("trades not preserved: %+v", loaded.Trades)
	}
	if len(loaded.EquityCurve) != 2 {
		t.Errorf("equity curve not preserved: %+v", loaded.EquityCurve)
	}

	if _, err := store.GetResult(ctx, "missing"); !apperrors.Is(err, apperrors.ErrDataNotFound) {
		t.Errorf("missing result: err = %v, want ErrDataNotFound", err)
	}
}

func TestListResultsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		result := &models.BacktestResult{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.SaveResult(ctx, result); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	results, err := store.ListResults(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "c" || results[1].ID != "b" {
		t.Errorf("order = %s, %s; want c, b", results[0].ID, results[1].ID)
	}
}
