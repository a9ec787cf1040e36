package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "news-backtester/internal/errors"
	"news-backtester/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		body TEXT NOT NULL,
		source TEXT,
		created_at TEXT,
		inserted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_news_created_at ON news(created_at);

	CREATE TABLE IF NOT EXISTS portfolio_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		asset_type TEXT NOT NULL,
		name TEXT NOT NULL,
		symbol TEXT,
		quantity TEXT,
		price TEXT,
		total_value TEXT,
		currency TEXT,
		inserted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS backtest_results (
		id TEXT PRIMARY KEY,
		total_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		total_pnl REAL NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveNews stores one news item and returns its assigned ID. The body must
// be non-empty; everything else is optional.
func (s *SQLiteStore) SaveNews(ctx context.Context, item *models.NewsItem) (int64, error) {
	if strings.TrimSpace(item.Body) == "" {
		return 0, apperrors.NewValidationError("body", item.Body, "must not be empty")
	}

	createdAt := ""
	if !item.CreatedAt.IsZero() {
		createdAt = item.CreatedAt.UTC().Format(time.RFC3339)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO news (title, body, source, created_at) VALUES (?, ?, ?, ?)`,
		item.Title, item.Body, item.Source, createdAt,
	)
	if err != nil {
		return 0, apperrors.NewDataError("news", "", "insert failed", err)
	}
	return res.LastInsertId()
}

// GetNews returns news items matching the filter, oldest first. Stored
// timestamps that fail to parse surface as zero times; the scorer treats
// those items as current rather than failing.
func (s *SQLiteStore) GetNews(ctx context.Context, filter NewsFilter) ([]models.NewsItem, error) {
	query := `SELECT id, title, body, source, created_at FROM news WHERE 1=1`
	var args []interface{}

	if !filter.From.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.From.UTC().Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, filter.To.UTC().Format(time.RFC3339))
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewDataError("news", "", "query failed", err)
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		var createdAt string
		if err := rows.Scan(&item.ID, &item.Title, &item.Body, &item.Source, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			item.CreatedAt = t.UTC()
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SavePortfolioItem stores one holding.
func (s *SQLiteStore) SavePortfolioItem(ctx context.Context, item *models.PortfolioItem) error {
	if item.Name == "" {
		return apperrors.NewValidationError("name", item.Name, "must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO portfolio_items (asset_type, name, symbol, quantity, price, total_value, currency)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(item.AssetType), item.Name, item.Symbol,
		item.Quantity, item.Price, item.TotalValue, item.Currency,
	)
	if err != nil {
		return apperrors.NewDataError("portfolio", item.Name, "insert failed", err)
	}
	return nil
}

// GetPortfolio returns every stored holding in insertion order.
func (s *SQLiteStore) GetPortfolio(ctx context.Context) ([]models.PortfolioItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset_type, name, symbol, quantity, price, total_value, currency
		 FROM portfolio_items ORDER BY id ASC`)
	if err != nil {
		return nil, apperrors.NewDataError("portfolio", "", "query failed", err)
	}
	defer rows.Close()

	var items []models.PortfolioItem
	for rows.Next() {
		var item models.PortfolioItem
		var assetType string
		if err := rows.Scan(&assetType, &item.Name, &item.Symbol,
			&item.Quantity, &item.Price, &item.TotalValue, &item.Currency); err != nil {
			return nil, err
		}
		item.AssetType = models.AssetType(assetType)
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveResult stores one backtest result. The full record, including trades
// and the equity curve, is serialized into the payload column; the indexed
// columns exist for listing.
func (s *SQLiteStore) SaveResult(ctx context.Context, result *models.BacktestResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO backtest_results (id, total_trades, win_rate, total_pnl, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.ID, result.TotalTrades, result.WinRate, result.TotalPnL,
		string(payload), result.CreatedAt.UTC(),
	)
	if err != nil {
		return apperrors.NewDataError("result", result.ID, "insert failed", err)
	}
	return nil
}

// GetResult loads one stored result by ID.
func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*models.BacktestResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM backtest_results WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "result %s", id)
	}
	if err != nil {
		return nil, apperrors.NewDataError("result", id, "query failed", err)
	}

	var result models.BacktestResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decoding result %s: %w", id, err)
	}
	return &result, nil
}

// ListResults returns the most recent stored results, newest first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]models.BacktestResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM backtest_results ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewDataError("result", "", "query failed", err)
	}
	defer rows.Close()

	var results []models.BacktestResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result models.BacktestResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("decoding result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
