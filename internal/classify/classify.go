// Package classify buckets markets into display categories by keyword.
package classify

import "strings"

// Category labels a market for display styling and JSON annotation.
type Category string

const (
	Sports   Category = "sports"
	Politics Category = "politics"
	Other    Category = "other"
)

// Substring keys, matched uppercased against ticker and title. Sports
// wins over politics when both match.
var (
	sportsKeys = []string{
		"NBA", "NFL", "MLB", "NHL", "EPL", "NCAAMB", "NCAAF",
		"ATP", "WTA", "NCAAMBGAME", "GAME", "MATCH",
	}
	politicsKeys = []string{
		"TRUMP", "BIDEN", "ELECTION", "SENATE", "HOUSE",
		"FED", "INFLATION", "CPI", "RATE",
	}
)

// Market returns the category for one market's ticker and title.
func Market(ticker, title string) Category {
	text := strings.ToUpper(ticker + " " + title)
	for _, key := range sportsKeys {
		if strings.Contains(text, key) {
			return Sports
		}
	}
	for _, key := range politicsKeys {
		if strings.Contains(text, key) {
			return Politics
		}
	}
	return Other
}
