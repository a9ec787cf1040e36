// Package models provides domain models for the backtesting engine.
package models

import (
	"time"
)

// AssetType represents the class of a portfolio holding.
type AssetType string

const (
	AssetStocks     AssetType = "stocks"
	AssetBonds      AssetType = "bonds"
	AssetETF        AssetType = "etf"
	AssetFunds      AssetType = "funds"
	AssetCurrencies AssetType = "currencies"
	AssetOther      AssetType = "other"
)

// SentimentType classifies the tone of a news item.
type SentimentType string

const (
	SentimentPositive SentimentType = "positive"
	SentimentNegative SentimentType = "negative"
	SentimentNeutral  SentimentType = "neutral"
)

// SentimentRequirement restricts which news sentiment may trigger a signal.
type SentimentRequirement string

const (
	SentimentRequiredPositive SentimentRequirement = "positive"
	SentimentRequiredNegative SentimentRequirement = "negative"
	SentimentRequiredAny      SentimentRequirement = "any"
)

// PriceCondition is an optional price-move pre-condition on a rule.
type PriceCondition string

const (
	PriceDropBefore PriceCondition = "drop_before"
	PriceRiseBefore PriceCondition = "rise_before"
	PriceNone       PriceCondition = "none"
)

// NewsItem is an immutable snapshot of one stored news record.
// A zero CreatedAt means the source timestamp could not be parsed;
// the scorer treats such items as current rather than failing.
type NewsItem struct {
	ID        int64
	Title     string
	Body      string
	Source    string
	CreatedAt time.Time
}

// PortfolioItem is a read-only snapshot of one holding. Quantity, Price and
// TotalValue arrive as free-form numeric strings and are parsed defensively.
type PortfolioItem struct {
	AssetType  AssetType
	Name       string
	Symbol     string
	Quantity   string
	Price      string
	TotalValue string
	Currency   string
}

// BacktestRule describes the entry conditions and sizing for one backtest run.
type BacktestRule struct {
	SentimentRequired SentimentRequirement
	NewsMinScore      float64
	NewsMaxAgeHours   int
	PriceCondition    PriceCondition
	PriceChangePct    float64
	HoldPeriodDays    int
	PositionSizePct   float64
	StartDate         *time.Time
	EndDate           *time.Time
	// Seed drives the price path generator so identical inputs replay
	// identical simulations.
	Seed int64
}

// ScoreBreakdown explains how a news score was assembled.
type ScoreBreakdown struct {
	Base            float64       `json:"base"`
	TickerMatches   int           `json:"ticker_matches"`
	TickerScore     float64       `json:"ticker_score"`
	CategoryMatches int           `json:"category_matches"`
	CategoryScore   float64       `json:"category_score"`
	SentimentType   SentimentType `json:"sentiment_type"`
	SentimentScore  float64       `json:"sentiment_score"`
	TemporalDecay   float64       `json:"temporal_decay"`
	AgeDays         int           `json:"age_days"`
	IsObsolete      bool          `json:"is_obsolete"`
}

// ScoreResult is the scored relevance of one news item against a portfolio.
type ScoreResult struct {
	NewsID    int64          `json:"news_id"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Trade represents one simulated position. Lifecycle is OPEN then CLOSED,
// with no other transitions; a closed trade is never mutated again.
type Trade struct {
	ID         string
	Symbol     string
	NewsID     int64
	EntryDate  time.Time
	EntryPrice float64
	ExitDate   *time.Time
	ExitPrice  *float64
	PnL        float64
	PnLPct     float64
	IsOpen     bool
}

// EquityPoint is one snapshot on the equity curve.
type EquityPoint struct {
	Date        time.Time `json:"date"`
	Equity      float64   `json:"equity"`
	DrawdownPct float64   `json:"drawdown_pct"`
}

// BacktestResult aggregates one completed simulation run. Created once per
// run and immutable afterwards.
type BacktestResult struct {
	ID             string
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64
	TotalPnL       float64
	TotalPnLPct    float64
	AvgWin         float64
	AvgLoss        float64
	MaxDrawdown    float64
	MaxDrawdownPct float64
	ProfitFactor   float64
	SharpeRatio    float64
	EquityCurve    []EquityPoint
	Trades         []Trade
	ExecutedStart  time.Time
	ExecutedEnd    time.Time
	CreatedAt      time.Time
}

// Symbols returns the distinct non-empty symbols held in the portfolio,
// in first-seen order.
func Symbols(portfolio []PortfolioItem) []string {
	seen := make(map[string]struct{})
	var symbols []string
	for _, item := range portfolio {
		if item.Symbol == "" {
			continue
		}
		if _, ok := seen[item.Symbol]; ok {
			continue
		}
		seen[item.Symbol] = struct{}{}
		symbols = append(symbols, item.Symbol)
	}
	return symbols
}
