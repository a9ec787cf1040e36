package backtest

import (
	"time"

	"github.com/google/uuid"

	"news-backtester/internal/models"
)

// openTrade creates an OPEN trade for the given symbol, attributed to the
// news item that triggered the signal.
func openTrade(symbol string, newsID int64, day time.Time, price float64) *models.Trade {
	return &models.Trade{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		NewsID:     newsID,
		EntryDate:  day,
		EntryPrice: price,
		IsOpen:     true,
	}
}

// closeTrade transitions a trade to CLOSED at the given exit price. The
// round-trip commission is charged on both legs; pnl_pct approximates it
// as twice the rate in percentage points. Stored results compare across
// runs, so these formulas must not change.
func closeTrade(t *models.Trade, day time.Time, price, rate float64) {
	commission := t.EntryPrice*rate + price*rate

	exitDate := day
	exitPrice := price
	t.ExitDate = &exitDate
	t.ExitPrice = &exitPrice
	t.PnL = (price - t.EntryPrice) - commission
	t.PnLPct = (price-t.EntryPrice)/t.EntryPrice*100 - rate*200
	t.IsOpen = false
}
