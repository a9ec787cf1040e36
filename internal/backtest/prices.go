// Package backtest provides the signal-driven trade simulation engine.
package backtest

import (
	"math/rand"
	"time"

	"news-backtester/internal/config"
)

// PricePathSimulator produces a reproducible synthetic price series. It is a
// stand-in for a real market-data feed: backtests need a plausible path for
// rule evaluation, not an accurate one. The random source is injected so
// identical seeds always replay identical paths.
type PricePathSimulator struct {
	volatility float64
	minPrice   float64
}

// NewPricePathSimulator creates a simulator with the given parameters.
func NewPricePathSimulator(cfg config.SimulationConfig) *PricePathSimulator {
	return &PricePathSimulator{
		volatility: cfg.DailyVolatility,
		minPrice:   cfg.MinPrice,
	}
}

// Simulate walks the given dates in order, applying one Gaussian daily
// return per step. Prices never reach zero or below: each step is floored
// at the configured minimum. Dates are assumed ascending; the returned map
// is keyed by the dates exactly as given.
func (s *PricePathSimulator) Simulate(basePrice float64, dates []time.Time, rng *rand.Rand) map[time.Time]float64 {
	prices := make(map[time.Time]float64, len(dates))
	price := basePrice
	if price < s.minPrice {
		price = s.minPrice
	}

	for _, date := range dates {
		dailyReturn := rng.NormFloat64() * s.volatility
		price = price * (1 + dailyReturn)
		if price < s.minPrice {
			price = s.minPrice
		}
		prices[date] = price
	}

	return prices
}
