package backtest

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"news-backtester/internal/models"
)

// aggregate reduces the closed-trade list into the final result record.
// A run with zero trades is a normal result: all metrics are zero and the
// equity curve holds only the initial point.
func aggregate(closed []*models.Trade, initialCapital, positionSizePct float64, start, end, createdAt time.Time) *models.BacktestResult {
	trades := make([]models.Trade, 0, len(closed))
	for _, t := range closed {
		trades = append(trades, *t)
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ExitDate.Before(*trades[j].ExitDate)
	})

	result := &models.BacktestResult{
		ID:            uuid.NewString(),
		Trades:        trades,
		TotalTrades:   len(trades),
		ExecutedStart: start,
		ExecutedEnd:   end,
		CreatedAt:     createdAt,
	}

	positionValue := initialCapital * positionSizePct / 100

	var wins, losses []float64
	var totalPnLPct float64
	for _, t := range trades {
		totalPnLPct += t.PnLPct
		if t.PnL > 0 {
			result.WinningTrades++
			wins = append(wins, t.PnL)
		} else {
			result.LosingTrades++
			losses = append(losses, -t.PnL)
		}
	}

	if result.TotalTrades > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	}
	result.TotalPnLPct = totalPnLPct
	result.TotalPnL = positionValue * totalPnLPct / 100

	if len(wins) > 0 {
		result.AvgWin, _ = stats.Mean(wins)
	}
	if len(losses) > 0 {
		result.AvgLoss, _ = stats.Mean(losses)
	}
	if grossWin, _ := stats.Sum(wins); len(losses) > 0 {
		grossLoss, _ := stats.Sum(losses)
		if grossLoss > 0 {
			result.ProfitFactor = grossWin / grossLoss
		}
	}

	result.EquityCurve = equityCurve(trades, initialCapital, positionValue, start)

	for _, point := range result.EquityCurve {
		if point.DrawdownPct > result.MaxDrawdownPct {
			result.MaxDrawdownPct = point.DrawdownPct
		}
	}
	result.MaxDrawdown = maxAbsoluteDrawdown(result.EquityCurve)
	result.SharpeRatio = sharpeRatio(result.EquityCurve)

	return result
}

// equityCurve applies each closed trade, in exit-date order, to the running
// equity and tracks drawdown against the running peak. The first point is
// always the initial capital with zero drawdown.
func equityCurve(trades []models.Trade, initialCapital, positionValue float64, start time.Time) []models.EquityPoint {
	curve := []models.EquityPoint{{
		Date:        start,
		Equity:      initialCapital,
		DrawdownPct: 0,
	}}

	equity := initialCapital
	peak := initialCapital
	for _, t := range trades {
		equity += positionValue * t.PnLPct / 100
		if equity > peak {
			peak = equity
		}
		drawdownPct := 0.0
		if peak > 0 {
			drawdownPct = (peak - equity) / peak * 100
		}
		curve = append(curve, models.EquityPoint{
			Date:        *t.ExitDate,
			Equity:      equity,
			DrawdownPct: drawdownPct,
		})
	}
	return curve
}

func maxAbsoluteDrawdown(curve []models.EquityPoint) float64 {
	var peak, maxDrawdown float64
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if dd := peak - point.Equity; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// sharpeRatio is the mean per-point equity return over its sample standard
// deviation. Kept as a supplemental metric; 0 whenever the curve is too
// short or flat to measure.
func sharpeRatio(curve []models.EquityPoint) float64 {
	if len(curve) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			return 0
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil || stdev == 0 {
		return 0
	}
	return mean / stdev
}
