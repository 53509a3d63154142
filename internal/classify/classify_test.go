package classify

import "testing"

func TestMarket(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		title  string
		want   Category
	}{
		{"nba ticker", "KXNBA-25FIN-LAL", "Lakers win the finals?", Sports},
		{"nfl in title", "KXSB-26", "Will the Chiefs win the NFL championship?", Sports},
		{"tennis", "KXATP-25WIM", "Wimbledon men's singles", Sports},
		{"generic game", "KXESPORT-25", "Grand finals game 5 winner", Sports},
		{"trump", "KXPRES-28", "Will Trump run again?", Politics},
		{"fed rate", "KXFED-25SEP", "Fed cuts rates in September?", Politics},
		{"cpi", "KXCPI-25AUG", "CPI above 3.0%?", Politics},
		{"lowercase title", "KX-X", "senate control after midterms", Politics},
		{"crypto", "KXBTC-25AUG29-B50", "Bitcoin above $50k?", Other},
		{"weather", "KXHIGHNY-25AUG30", "NYC high above 90F?", Other},
		{"sports beats politics", "KXNBA-25", "Will the president attend the NBA finals?", Sports},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Market(tt.ticker, tt.title); got != tt.want {
				t.Errorf("Market(%q, %q) = %q, want %q", tt.ticker, tt.title, got, tt.want)
			}
		})
	}
}
