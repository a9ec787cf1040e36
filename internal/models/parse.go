package models

import (
	"strconv"
	"strings"
)

// ParseAmount parses a free-form numeric string as stored on portfolio rows
// ("1,200.50", " 950 ", "1 000"). Returns 0 and false when the value is
// empty or not a number; callers fall back to defaults rather than failing.
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// EntryPriceFor returns the stored price of the first portfolio item holding
// the given symbol, when it parses to a positive number.
func EntryPriceFor(portfolio []PortfolioItem, symbol string) (float64, bool) {
	for _, item := range portfolio {
		if item.Symbol != symbol {
			continue
		}
		if v, ok := ParseAmount(item.Price); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// ValidSentimentRequirement reports whether s is a known requirement value.
func ValidSentimentRequirement(s SentimentRequirement) bool {
	switch s {
	case SentimentRequiredPositive, SentimentRequiredNegative, SentimentRequiredAny:
		return true
	}
	return false
}

// ValidPriceCondition reports whether c is a known price condition.
func ValidPriceCondition(c PriceCondition) bool {
	switch c {
	case PriceDropBefore, PriceRiseBefore, PriceNone:
		return true
	}
	return false
}
