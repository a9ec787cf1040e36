package scoring

import (
	"math"
	"sort"
	"time"

	"news-backtester/internal/config"
	"news-backtester/internal/models"
)

// Scorer scores news items for relevance against a portfolio. It is
// stateless apart from its configuration and safe for concurrent use.
type Scorer struct {
	cfg config.ScoringConfig
	now func() time.Time
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{
		cfg: cfg,
		now: time.Now,
	}
}

// NewScorerAt creates a scorer whose notion of "now" is supplied by clock.
// Backtests pass the simulated day so scores replay identically.
func NewScorerAt(cfg config.ScoringConfig, clock func() time.Time) *Scorer {
	return &Scorer{
		cfg: cfg,
		now: clock,
	}
}

// Score scores one news item against the portfolio relative to the scorer's
// current time.
func (s *Scorer) Score(news models.NewsItem, portfolio []models.PortfolioItem) models.ScoreResult {
	return s.ScoreAt(news, portfolio, s.now().UTC())
}

// ScoreAt scores one news item as of the given instant. Deterministic and
// side-effect free: identical inputs always produce the identical result.
func (s *Scorer) ScoreAt(news models.NewsItem, portfolio []models.PortfolioItem, asOf time.Time) models.ScoreResult {
	text := news.Title + "\n" + news.Body

	tickerMatches := s.countTickerMatches(text, portfolio)
	tickerScore := float64(tickerMatches) * s.cfg.TickerWeight

	categoryMatches := s.countCategoryMatches(text, portfolio)
	categoryScore := float64(categoryMatches) * s.cfg.CategoryWeight

	sentiment := classifySentiment(news.Title, news.Body)
	sentimentScore := s.sentimentWeight(sentiment)

	ageDays := s.ageDays(news.CreatedAt, asOf)
	decay := math.Pow(s.cfg.DecayFactor, float64(ageDays))

	score := (s.cfg.BaseScore + tickerScore + categoryScore + sentimentScore) * decay

	return models.ScoreResult{
		NewsID: news.ID,
		Score:  score,
		Breakdown: models.ScoreBreakdown{
			Base:            s.cfg.BaseScore,
			TickerMatches:   tickerMatches,
			TickerScore:     tickerScore,
			CategoryMatches: categoryMatches,
			CategoryScore:   categoryScore,
			SentimentType:   sentiment,
			SentimentScore:  sentimentScore,
			TemporalDecay:   decay,
			AgeDays:         ageDays,
			IsObsolete:      ageDays > s.cfg.ObsoleteAfterDays,
		},
	}
}

// ScoreAndSort scores every item and returns the results ordered by score
// descending. The sort is stable: equal scores keep their input order.
func (s *Scorer) ScoreAndSort(items []models.NewsItem, portfolio []models.PortfolioItem) []models.ScoreResult {
	return s.ScoreAndSortAt(items, portfolio, s.now().UTC())
}

// ScoreAndSortAt is ScoreAndSort relative to the given instant.
func (s *Scorer) ScoreAndSortAt(items []models.NewsItem, portfolio []models.PortfolioItem, asOf time.Time) []models.ScoreResult {
	results := make([]models.ScoreResult, 0, len(items))
	for _, item := range items {
		results = append(results, s.ScoreAt(item, portfolio, asOf))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// ageDays returns the whole days elapsed since the item was created, never
// negative. A zero creation time means the source timestamp could not be
// parsed; such items are treated as current.
func (s *Scorer) ageDays(createdAt, asOf time.Time) int {
	if createdAt.IsZero() {
		return 0
	}
	age := asOf.Sub(createdAt)
	if age <= 0 {
		return 0
	}
	return int(math.Floor(age.Hours() / 24))
}

// countTickerMatches counts whole-word occurrences of every distinct
// portfolio symbol across title and body.
func (s *Scorer) countTickerMatches(text string, portfolio []models.PortfolioItem) int {
	total := 0
	for _, symbol := range models.Symbols(portfolio) {
		total += countWord(text, symbol)
	}
	return total
}

// countCategoryMatches counts lexicon hits for each distinct asset type
// present in the portfolio.
func (s *Scorer) countCategoryMatches(text string, portfolio []models.PortfolioItem) int {
	seen := make(map[models.AssetType]struct{})
	total := 0
	for _, item := range portfolio {
		if _, ok := seen[item.AssetType]; ok {
			continue
		}
		seen[item.AssetType] = struct{}{}
		total += countAny(text, categoryWords[item.AssetType])
	}
	return total
}

func (s *Scorer) sentimentWeight(sentiment models.SentimentType) float64 {
	switch sentiment {
	case models.SentimentPositive:
		return s.cfg.PositiveWeight
	case models.SentimentNegative:
		return s.cfg.NegativeWeight
	default:
		return 0
	}
}

// classifySentiment classifies title and body independently by lexicon hit
// majority. The body's classification stands unless the title's signal is
// strictly stronger.
func classifySentiment(title, body string) models.SentimentType {
	bodyType, bodyStrength := classifyText(body)
	titleType, titleStrength := classifyText(title)

	if titleStrength > bodyStrength {
		return titleType
	}
	return bodyType
}

func classifyText(text string) (models.SentimentType, int) {
	positive := countAny(text, positiveWords)
	negative := countAny(text, negativeWords)

	strength := positive - negative
	if strength < 0 {
		strength = -strength
	}

	switch {
	case positive > negative:
		return models.SentimentPositive, strength
	case negative > positive:
		return models.SentimentNegative, strength
	default:
		return models.SentimentNeutral, 0
	}
}
