// Package store provides data persistence interfaces and implementations.
// It maps storage rows into the core's value objects; the engine itself
// never touches a database handle.
package store

import (
	"context"
	"time"

	"news-backtester/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// News
	SaveNews(ctx context.Context, item *models.NewsItem) (int64, error)
	GetNews(ctx context.Context, filter NewsFilter) ([]models.NewsItem, error)

	// Portfolio
	SavePortfolioItem(ctx context.Context, item *models.PortfolioItem) error
	GetPortfolio(ctx context.Context) ([]models.PortfolioItem, error)

	// Backtest results
	SaveResult(ctx context.Context, result *models.BacktestResult) error
	GetResult(ctx context.Context, id string) (*models.BacktestResult, error)
	ListResults(ctx context.Context, limit int) ([]models.BacktestResult, error)

	// Lifecycle
	Close() error
}

// NewsFilter represents filters for querying news items.
type NewsFilter struct {
	From   time.Time
	To     time.Time
	Source string
	Limit  int
}
