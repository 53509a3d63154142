package kalshi

import "testing"

func TestJoinURL(t *testing.T) {
	const host = "https://demo-api.kalshi.co"
	tests := []struct {
		name string
		base string
		path string
	}{
		{"bare base, bare path", host, "/markets"},
		{"bare base, prefixed path", host, "/trade-api/v2/markets"},
		{"prefixed base, bare path", host + "/trade-api/v2", "/markets"},
		{"prefixed base, prefixed path", host + "/trade-api/v2", "/trade-api/v2/markets"},
		{"no leading slash", host, "markets"},
	}
	// All five spellings land on the same URL with the prefix exactly once.
	want := host + "/trade-api/v2/markets"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinURL(normalizeBase(tt.base), tt.path); got != want {
				t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, want)
			}
		})
	}

	t.Run("query survives", func(t *testing.T) {
		got := joinURL(host, "/markets?status=open&limit=5")
		if got != host+"/trade-api/v2/markets?status=open&limit=5" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("prefix-shaped segment untouched", func(t *testing.T) {
		// "/trade-api/v2ish" only shares a byte prefix; it must not be
		// mistaken for the real API prefix and stripped.
		got := joinURL(host+"/trade-api/v2", "/trade-api/v2ish/markets")
		if got != host+"/trade-api/v2/trade-api/v2ish/markets" {
			t.Errorf("got %q", got)
		}
	})
}

func TestSignedPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/markets", "/trade-api/v2/markets"},
		{"markets", "/trade-api/v2/markets"},
		{"/trade-api/v2/markets", "/trade-api/v2/markets"},
		{"/markets?status=open&cursor=abc", "/trade-api/v2/markets"},
		{"/portfolio/orders/ord-1", "/trade-api/v2/portfolio/orders/ord-1"},
		{"/", "/trade-api/v2/"},
	}
	for _, tt := range tests {
		if got := signedPath(tt.path); got != tt.want {
			t.Errorf("signedPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizeBase(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://x.test/", "https://x.test"},
		{"https://x.test///", "https://x.test"},
		{"https://x.test", "https://x.test"},
	}
	for _, tt := range tests {
		if got := normalizeBase(tt.base); got != tt.want {
			t.Errorf("normalizeBase(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
