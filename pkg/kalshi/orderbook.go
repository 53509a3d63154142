package kalshi

// Quote is the derived top of book for one market, in cents. Bids come
// straight from the ladders; asks are implied across sides, so YesAsk is
// meaningful only when HasNo and NoAsk only when HasYes.
type Quote struct {
	YesBid int
	YesAsk int
	NoBid  int
	NoAsk  int
	HasYes bool
	HasNo  bool
}

// Quote derives the top of book. Ladders arrive sorted by price
// ascending, so the best bid is the last level on each side.
func (o *Orderbook) Quote() Quote {
	var q Quote
	if n := len(o.Yes); n > 0 {
		q.HasYes = true
		q.YesBid = o.Yes[n-1].Price
	}
	if n := len(o.No); n > 0 {
		q.HasNo = true
		q.NoBid = o.No[n-1].Price
	}
	if q.HasNo {
		q.YesAsk = 100 - q.NoBid
	}
	if q.HasYes {
		q.NoAsk = 100 - q.YesBid
	}
	return q
}

// Depth is the total resting contracts on one ladder.
func Depth(levels []PriceLevel) int {
	total := 0
	for _, l := range levels {
		total += l.Count
	}
	return total
}
