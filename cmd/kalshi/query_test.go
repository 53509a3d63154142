package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/gokalshi/pkg/kalshi"
)

func TestFilterMarkets(t *testing.T) {
	ms := []kalshi.Market{
		{Ticker: "KXNBA-25-LAL", Title: "Lakers win the finals"},
		{Ticker: "KXBTC-25AUG29-B50", Title: "BTC above 50k"},
		{Ticker: "KXRAIN-NYC", Title: "Rain in New York"},
	}

	assert.Len(t, filterMarkets(ms, ""), 3)

	got := filterMarkets(append([]kalshi.Market(nil), ms...), "lakers")
	require.Len(t, got, 1)
	assert.Equal(t, "KXNBA-25-LAL", got[0].Ticker)

	got = filterMarkets(append([]kalshi.Market(nil), ms...), "kxbtc")
	require.Len(t, got, 1)
	assert.Equal(t, "KXBTC-25AUG29-B50", got[0].Ticker)

	assert.Empty(t, filterMarkets(append([]kalshi.Market(nil), ms...), "soccer"))
}

func TestSortMarkets(t *testing.T) {
	ms := []kalshi.Market{
		{Ticker: "B", Title: "beta", YesBid: 10, Volume: 5},
		{Ticker: "A", Title: "alpha", YesBid: 40, Volume: 50},
		{Ticker: "C", Title: "gamma", YesBid: 20, Volume: 500},
	}

	require.NoError(t, sortMarkets(ms, "title"))
	assert.Equal(t, "alpha", ms[0].Title)

	require.NoError(t, sortMarkets(ms, "volume"))
	assert.Equal(t, int64(500), ms[0].Volume)

	require.NoError(t, sortMarkets(ms, "yes_bid"))
	assert.Equal(t, 40, ms[0].YesBid)

	require.NoError(t, sortMarkets(ms, ""))

	assert.Error(t, sortMarkets(ms, "liquidity"))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"ticker"}, splitCSV("ticker"))
	assert.Equal(t, []string{"ticker", "trade"}, splitCSV(" ticker , trade ,"))
	assert.Nil(t, splitCSV(""))
}

func TestLimitTier(t *testing.T) {
	assert.Nil(t, limitTier("none"))

	require.NotNil(t, limitTier("advanced"))

	basic := limitTier("anything-else")
	require.NotNil(t, basic)
	assert.NotNil(t, basic.Reads)
	assert.NotNil(t, basic.Writes)
}
