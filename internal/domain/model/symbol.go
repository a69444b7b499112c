package model

import (
	"fmt"
	"regexp"
	"strings"
)

var defaultSymbols = []string{
	"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META", "NFLX", "NVDA", "BABA",
	"INTC", "AMD", "ADBE", "ORCL", "CSCO", "CRM", "SPY", "PYPL", "SQ", "SHOP", "UBER",
}

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,11}$`)

// Symbols returns a copy of the tracked ticker list.
func Symbols() []string {
	return append([]string{}, defaultSymbols...)
}

// SymbolOption is the dashboard representation of a symbol.
type SymbolOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SymbolOptions pairs each symbol with itself as display label.
func SymbolOptions(symbols []string) []SymbolOption {
	out := make([]SymbolOption, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, SymbolOption{Value: s, Label: s})
	}
	return out
}

// NormalizeSymbols uppercases and validates a configured ticker list.
func NormalizeSymbols(symbols []string) ([]string, error) {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !tickerPattern.MatchString(s) {
			return nil, fmt.Errorf("invalid ticker %q", s)
		}
		out = append(out, s)
	}
	return out, nil
}
