package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"news-backtester/internal/config"
	apperrors "news-backtester/internal/errors"
	"news-backtester/internal/logging"
	"news-backtester/internal/models"
	"news-backtester/internal/scoring"
)

// Engine drives the day-by-day trade simulation. The loop is strictly
// sequential: each day's trade state depends on the previous days. The only
// mutable state is the open-trade set owned by one Run call, so an Engine is
// safe for concurrent Run invocations.
type Engine struct {
	scoringCfg config.ScoringConfig
	simCfg     config.SimulationConfig
	simulator  *PricePathSimulator
	logger     zerolog.Logger
	now        func() time.Time
}

// NewEngine creates an engine from the given configuration.
func NewEngine(cfg *config.Config, logger zerolog.Logger) *Engine {
	return &Engine{
		scoringCfg: cfg.Scoring,
		simCfg:     cfg.Simulation,
		simulator:  NewPricePathSimulator(cfg.Simulation),
		logger:     logger,
		now:        time.Now,
	}
}

// NewEngineAt creates an engine whose notion of "now" is supplied by clock,
// used to pin the default end date in tests.
func NewEngineAt(cfg *config.Config, logger zerolog.Logger, clock func() time.Time) *Engine {
	e := NewEngine(cfg, logger)
	e.now = clock
	return e
}

// RunInput carries the read-only snapshots one backtest run consumes.
// The engine never mutates them.
type RunInput struct {
	Rule           models.BacktestRule
	News           []models.NewsItem
	Portfolio      []models.PortfolioItem
	InitialCapital float64
}

// Run executes one backtest and returns its aggregated result. It runs to
// completion or fails on invalid input; cancellation, if needed, is the
// caller's wrapper concern.
func (e *Engine) Run(ctx context.Context, in RunInput) (*models.BacktestResult, error) {
	started := e.now()

	if err := e.validate(in); err != nil {
		return nil, err
	}

	startDay, endDay, err := e.resolveDateRange(in)
	if err != nil {
		return nil, err
	}

	days := daysBetween(startDay, endDay)

	symbols := models.Symbols(in.Portfolio)
	if len(symbols) == 0 {
		symbols = []string{e.simCfg.DefaultSymbol}
	}

	// One seeded source drives every symbol's path, so a run replays
	// identically for identical inputs.
	rng := rand.New(rand.NewSource(in.Rule.Seed))
	prices := make(map[string]map[time.Time]float64, len(symbols))
	for _, symbol := range symbols {
		base := e.simCfg.BasePrice
		if v, ok := models.EntryPriceFor(in.Portfolio, symbol); ok {
			base = v
		}
		prices[symbol] = e.simulator.Simulate(base, days, rng)
	}

	scorer := scoring.NewScorer(e.scoringCfg)
	filter := &signalFilter{rule: in.Rule, scorer: scorer}
	holdPeriod := time.Duration(in.Rule.HoldPeriodDays) * 24 * time.Hour

	logger := logging.WithRun(e.logger, fmt.Sprintf("%d", in.Rule.Seed))

	openTrades := make(map[string]*models.Trade)
	var closed []*models.Trade

	for _, day := range days {
		// Close elapsed positions first so a new signal on the same day
		// can re-enter the symbol.
		for _, symbol := range symbols {
			trade, ok := openTrades[symbol]
			if !ok {
				continue
			}
			price, ok := prices[symbol][day]
			if !ok {
				continue
			}
			if day.Sub(trade.EntryDate) >= holdPeriod {
				closeTrade(trade, day, price, e.simCfg.CommissionRate)
				logging.LogTradeClose(logger, symbol, day, price, trade.PnL, false)
				closed = append(closed, trade)
				delete(openTrades, symbol)
			}
		}

		for _, symbol := range symbols {
			if _, ok := openTrades[symbol]; ok {
				continue
			}
			price, ok := prices[symbol][day]
			if !ok {
				// No simulated price today; skip the symbol for this
				// day only.
				continue
			}

			var previous *float64
			if p, ok := prices[symbol][day.Add(-24*time.Hour)]; ok {
				previous = &p
			}

			if !filter.priceConditionMet(price, previous) {
				continue
			}
			result, ok := filter.qualifyingNews(day, in.News, in.Portfolio)
			if !ok {
				continue
			}

			logging.LogSignal(logger, symbol, day, result.NewsID, result.Score)
			openTrades[symbol] = openTrade(symbol, result.NewsID, day, price)
			logging.LogTradeOpen(logger, symbol, day, price)
		}
	}

	// Force-close whatever is still open at the last known price.
	lastDay := days[len(days)-1]
	for _, symbol := range symbols {
		trade, ok := openTrades[symbol]
		if !ok {
			continue
		}
		price, ok := prices[symbol][lastDay]
		if !ok {
			price = trade.EntryPrice
		}
		closeTrade(trade, lastDay, price, e.simCfg.CommissionRate)
		logging.LogTradeClose(logger, symbol, lastDay, price, trade.PnL, true)
		closed = append(closed, trade)
		delete(openTrades, symbol)
	}

	result := aggregate(closed, in.InitialCapital, in.Rule.PositionSizePct, startDay, endDay, e.now())
	logging.LogRun(logger, result.ID, result.TotalTrades, result.WinRate, result.TotalPnL, e.now().Sub(started))

	return result, nil
}

func (e *Engine) validate(in RunInput) error {
	if in.InitialCapital <= 0 {
		return apperrors.NewValidationError("initial_capital", in.InitialCapital, "must be positive")
	}
	if in.Rule.HoldPeriodDays < 0 {
		return apperrors.NewValidationError("hold_period_days", in.Rule.HoldPeriodDays, "must be non-negative")
	}
	if in.Rule.PositionSizePct <= 0 || in.Rule.PositionSizePct > 100 {
		return apperrors.NewValidationError("position_size_pct", in.Rule.PositionSizePct, "must be in (0, 100]")
	}
	if in.Rule.NewsMaxAgeHours < 0 {
		return apperrors.NewValidationError("news_max_age_hours", in.Rule.NewsMaxAgeHours, "must be non-negative")
	}
	if in.Rule.SentimentRequired != "" && !models.ValidSentimentRequirement(in.Rule.SentimentRequired) {
		return apperrors.NewValidationError("sentiment_required", in.Rule.SentimentRequired, "unknown sentiment requirement")
	}
	if in.Rule.PriceCondition != "" && !models.ValidPriceCondition(in.Rule.PriceCondition) {
		return apperrors.NewValidationError("price_condition", in.Rule.PriceCondition, "unknown price condition")
	}
	return nil
}

// resolveDateRange determines the simulated range. The start defaults to the
// earliest news timestamp; inferring it with no news at all is a fatal input
// error since no simulation is possible. The end defaults to now.
func (e *Engine) resolveDateRange(in RunInput) (time.Time, time.Time, error) {
	var start time.Time
	if in.Rule.StartDate != nil {
		start = *in.Rule.StartDate
	} else {
		earliest, ok := earliestNews(in.News)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: cannot infer start date: %w",
				apperrors.ErrInputValidation, apperrors.ErrNoNews)
		}
		start = earliest
	}

	end := e.now().UTC()
	if in.Rule.EndDate != nil {
		end = *in.Rule.EndDate
	}

	startDay := dayOf(start)
	endDay := dayOf(end)
	if endDay.Before(startDay) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("end_date", endDay, "before start date")
	}
	return startDay, endDay, nil
}

func earliestNews(news []models.NewsItem) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, item := range news {
		if item.CreatedAt.IsZero() {
			continue
		}
		if !found || item.CreatedAt.Before(earliest) {
			earliest = item.CreatedAt
			found = true
		}
	}
	return earliest, found
}

// dayOf normalizes a timestamp to midnight UTC.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns every day from start to end inclusive, one-day steps.
func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for day := start; !day.After(end); day = day.Add(24 * time.Hour) {
		days = append(days, day)
	}
	return days
}
