package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/betbot/gokalshi/pkg/journal"
	"github.com/betbot/gokalshi/pkg/kalshi"
	"github.com/betbot/gokalshi/pkg/snapshot"
)

func TestMarketsTable(t *testing.T) {
	out := Markets([]kalshi.Market{
		{Ticker: "KXNBA-25-LAL", Title: "Lakers win the finals", Status: "open", YesBid: 35, YesAsk: 40, NoBid: 60, NoAsk: 65, Volume: 1200},
		{Ticker: "KXBTC-25AUG29-B50", Title: "BTC above 50k", Status: "open", YesBid: 12, YesAsk: 15},
	})

	assert.Contains(t, out, "KXNBA-25-LAL")
	assert.Contains(t, out, "Lakers win the finals")
	assert.Contains(t, out, "35/40")
	assert.Contains(t, out, "sports")
	assert.Contains(t, out, "2 markets")
}

func TestMarketsEmpty(t *testing.T) {
	assert.Equal(t, "no markets\n", Markets(nil))
}

func TestOrderbookPanels(t *testing.T) {
	ob := &kalshi.Orderbook{
		Yes: []kalshi.PriceLevel{{Price: 30, Count: 100}, {Price: 35, Count: 50}},
		No:  []kalshi.PriceLevel{{Price: 55, Count: 20}, {Price: 60, Count: 10}},
	}
	out := Orderbook("KXBTC-25AUG29-B50", ob)

	assert.Contains(t, out, "KXBTC-25AUG29-B50")
	assert.Contains(t, out, "35¢")
	assert.Contains(t, out, "depth 150")
	assert.Contains(t, out, "depth 30")
	// Derived quote: yes ask = 100 - best no bid.
	assert.Contains(t, out, "yes 35¢ bid / 40¢ ask")
	assert.Contains(t, out, "no 60¢ bid / 65¢ ask")
}

func TestQuoteLineOneSided(t *testing.T) {
	q := kalshi.Quote{HasYes: true, YesBid: 12, NoAsk: 88}
	line := QuoteLine(q)
	assert.Contains(t, line, "yes 12¢ bid")
	assert.NotContains(t, line, "ask   no")
	assert.Contains(t, line, "no --")
}

func TestPositionsTable(t *testing.T) {
	out := Positions([]kalshi.Position{
		{Ticker: "KXBTC-25AUG29-B50", Position: 10, MarketExposure: 350, RealizedPnl: -25, FeesPaid: 4, RestingOrdersCount: 1},
	})
	assert.Contains(t, out, "KXBTC-25AUG29-B50")
	assert.Contains(t, out, "-$0.25")
	assert.Contains(t, out, "$3.50")
}

func TestOrdersTablePicksPriceSide(t *testing.T) {
	out := Orders([]kalshi.Order{
		{OrderID: "ord-1", Ticker: "T1", Action: "buy", Side: "yes", YesPrice: 35, RemainingCount: 5, Status: "resting"},
		{OrderID: "ord-2", Ticker: "T2", Action: "sell", Side: "no", NoPrice: 60, RemainingCount: 2, Status: "resting"},
	})
	assert.Contains(t, out, "35¢")
	assert.Contains(t, out, "60¢")
}

func TestSnapshotsAndJournalTables(t *testing.T) {
	taken := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)
	out := Snapshots([]snapshot.Summary{{ID: "snap-1", TakenAt: taken, Status: "open", Count: 12}})
	assert.Contains(t, out, "snap-1")
	assert.Contains(t, out, "12")

	jout := Journal([]journal.Entry{{
		Kind: journal.KindPlacement, Ticker: "KXBTC-25AUG29-B50", Side: "yes",
		Count: 10, PriceCents: 35, Status: "resting", OrderID: "ord-1", CreatedAt: taken,
	}})
	assert.Contains(t, jout, "place")
	assert.Contains(t, jout, "35¢")
	assert.Contains(t, jout, "ord-1")

	assert.Equal(t, "journal is empty\n", Journal(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	long := strings.Repeat("x", 40)
	got := truncate(long, 10)
	assert.Len(t, got, 10)
	assert.True(t, strings.HasSuffix(got, "..."))
}
