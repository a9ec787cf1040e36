package backtest

import (
	"time"

	"news-backtester/internal/models"
	"news-backtester/internal/scoring"
)

// signalFilter decides, for one symbol on one simulated day, whether the
// rule's price and news conditions authorize a new entry.
type signalFilter struct {
	rule   models.BacktestRule
	scorer *scoring.Scorer
}

// priceConditionMet evaluates the rule's optional price pre-condition from
// the previous day's price to the current one. A missing previous price
// fails closed: the condition never defaults to pass.
func (f *signalFilter) priceConditionMet(current float64, previous *float64) bool {
	switch f.rule.PriceCondition {
	case models.PriceNone, "":
		return true
	}

	if previous == nil || *previous == 0 {
		return false
	}

	pctChange := (current - *previous) / *previous * 100

	switch f.rule.PriceCondition {
	case models.PriceDropBefore:
		return pctChange <= -f.rule.PriceChangePct
	case models.PriceRiseBefore:
		return pctChange >= f.rule.PriceChangePct
	}
	return false
}

// qualifyingNews scores the news items inside the rule's look-back window
// as of the simulated day and returns the highest-scored item that clears
// the minimum score and the sentiment requirement. Returns false when no
// item qualifies.
//
// Simulated days are whole calendar days, so the look-back window is
// anchored at the end of the day: news published during the day itself
// qualifies, news older than the window relative to that instant does not.
func (f *signalFilter) qualifyingNews(day time.Time, news []models.NewsItem, portfolio []models.PortfolioItem) (models.ScoreResult, bool) {
	windowEnd := day.Add(24 * time.Hour)
	windowStart := windowEnd.Add(-time.Duration(f.rule.NewsMaxAgeHours) * time.Hour)

	var inWindow []models.NewsItem
	for _, item := range news {
		created := item.CreatedAt
		if created.IsZero() {
			// Unparsable timestamps are treated as current.
			created = day
		}
		if created.Before(windowStart) || created.After(windowEnd) {
			continue
		}
		inWindow = append(inWindow, item)
	}
	if len(inWindow) == 0 {
		return models.ScoreResult{}, false
	}

	scored := f.scorer.ScoreAndSortAt(inWindow, portfolio, day)
	for _, result := range scored {
		if result.Score < f.rule.NewsMinScore {
			// Sorted descending: nothing further qualifies.
			break
		}
		if !f.sentimentMatches(result.Breakdown.SentimentType) {
			continue
		}
		return result, true
	}
	return models.ScoreResult{}, false
}

func (f *signalFilter) sentimentMatches(sentiment models.SentimentType) bool {
	switch f.rule.SentimentRequired {
	case models.SentimentRequiredAny, "":
		return true
	case models.SentimentRequiredPositive:
		return sentiment == models.SentimentPositive
	case models.SentimentRequiredNegative:
		return sentiment == models.SentimentNegative
	}
	return false
}
