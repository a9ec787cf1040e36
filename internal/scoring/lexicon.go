// Package scoring provides news relevance scoring against a portfolio.
package scoring

import (
	"regexp"
	"sync"

	"news-backtester/internal/models"
)

// positiveWords and negativeWords are the fixed sentiment lexicons. Hits are
// counted per whole word, separately in title and body.
var positiveWords = []string{
	"surge", "rally", "gain", "gains", "profit", "growth", "bullish", "upgrade",
	"beat", "beats", "exceed", "strong", "positive", "outperform", "record",
	"boost", "improve", "success", "optimistic", "soar", "jump", "rebound",
	"dividend", "breakthrough", "expansion",
}

var negativeWords = []string{
	"fall", "falls", "drop", "drops", "decline", "loss", "losses", "bearish",
	"downgrade", "miss", "misses", "weak", "negative", "underperform",
	"concern", "cut", "cuts", "warning", "risk", "pessimistic", "plunge",
	"crash", "slump", "bankruptcy", "default", "recession", "lawsuit",
}

// categoryWords maps each asset type to the terms that mark a news item as
// relevant to holdings of that type.
var categoryWords = map[models.AssetType][]string{
	models.AssetStocks: {
		"stock", "stocks", "share", "shares", "equity", "equities",
		"earnings", "ipo", "nasdaq", "nyse",
	},
	models.AssetBonds: {
		"bond", "bonds", "treasury", "treasuries", "yield", "yields",
		"fixed income", "bond issuance", "coupon", "debt market",
	},
	models.AssetETF: {
		"etf", "etfs", "index fund", "exchange-traded", "tracker fund",
	},
	models.AssetFunds: {
		"fund", "funds", "mutual fund", "hedge fund", "asset manager",
		"portfolio manager",
	},
	models.AssetCurrencies: {
		"currency", "currencies", "forex", "exchange rate", "dollar",
		"euro", "yen", "devaluation",
	},
	models.AssetOther: {
		"commodity", "commodities", "gold", "oil", "real estate", "crypto",
	},
}

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// wordPattern returns a case-insensitive whole-word matcher for term.
// Compiled patterns are cached; scoring stays deterministic either way.
func wordPattern(term string) *regexp.Regexp {
	patternMu.RLock()
	re, ok := patternCache[term]
	patternMu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)

	patternMu.Lock()
	patternCache[term] = re
	patternMu.Unlock()
	return re
}

// countWord counts whole-word occurrences of term in text. Partial matches
// do not count: "AAPL" never matches inside "AAPLE".
func countWord(text, term string) int {
	if text == "" || term == "" {
		return 0
	}
	return len(wordPattern(term).FindAllStringIndex(text, -1))
}

// countAny sums whole-word occurrences of every term in text.
func countAny(text string, terms []string) int {
	total := 0
	for _, term := range terms {
		total += countWord(text, term)
	}
	return total
}
