package kalshi

import (
	"encoding/json"
	"fmt"
)

// Balance is the account cash position. All amounts are integer cents.
type Balance struct {
	Balance        int64  `json:"balance"`
	PortfolioValue int64  `json:"portfolio_value"`
	UpdatedTS      string `json:"updated_ts"`
}

// Market is one tradable binary market. Prices are integer cents.
type Market struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	MarketType   string `json:"market_type,omitempty"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Status       string `json:"status"`
	YesBid       int    `json:"yes_bid"`
	YesAsk       int    `json:"yes_ask"`
	NoBid        int    `json:"no_bid"`
	NoAsk        int    `json:"no_ask"`
	LastPrice    int    `json:"last_price"`
	Volume       int64  `json:"volume"`
	Volume24H    int64  `json:"volume_24h"`
	OpenInterest int64  `json:"open_interest"`
	Liquidity    int64  `json:"liquidity"`
	OpenTime     string `json:"open_time,omitempty"`
	CloseTime    string `json:"close_time,omitempty"`
	Result       string `json:"result,omitempty"`
}

// MarketsPage is one page of the markets listing.
type MarketsPage struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor"`
}

// PriceLevel is one ladder entry. The wire form is a [price, count]
// array in cents and contracts.
type PriceLevel struct {
	Price int
	Count int
}

func (l *PriceLevel) UnmarshalJSON(data []byte) error {
	var arr []int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) < 2 {
		return fmt.Errorf("price level needs [price, count], got %d values", len(arr))
	}
	l.Price, l.Count = arr[0], arr[1]
	return nil
}

func (l PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{l.Price, l.Count})
}

// Orderbook holds the two bid ladders for one market, sorted by price
// ascending. Asks are implied across sides: a yes ask at p is a no bid
// at 100-p.
type Orderbook struct {
	Yes []PriceLevel `json:"yes"`
	No  []PriceLevel `json:"no"`
}

type orderbookEnvelope struct {
	Orderbook Orderbook `json:"orderbook"`
}

// Position is one market position. Position is signed contracts:
// positive yes, negative no. Money fields are integer cents.
type Position struct {
	Ticker             string `json:"ticker"`
	Position           int    `json:"position"`
	MarketExposure     int64  `json:"market_exposure"`
	RealizedPnl        int64  `json:"realized_pnl"`
	TotalTradedCents   int64  `json:"total_traded"`
	RestingOrdersCount int    `json:"resting_orders_count"`
	FeesPaid           int64  `json:"fees_paid"`
	LastUpdatedTS      string `json:"last_updated_ts,omitempty"`
}

// PositionsPage is one page of the positions listing. Event-level
// aggregates ride along undecoded.
type PositionsPage struct {
	MarketPositions []Position        `json:"market_positions"`
	EventPositions  []json.RawMessage `json:"event_positions,omitempty"`
	Cursor          string            `json:"cursor"`
}

// Order is one venue order, as returned by the order endpoints.
type Order struct {
	OrderID        string `json:"order_id"`
	ClientOrderID  string `json:"client_order_id,omitempty"`
	Ticker         string `json:"ticker"`
	Status         string `json:"status"`
	Action         string `json:"action"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	YesPrice       int    `json:"yes_price,omitempty"`
	NoPrice        int    `json:"no_price,omitempty"`
	InitialCount   int    `json:"initial_count,omitempty"`
	RemainingCount int    `json:"remaining_count,omitempty"`
	CreatedTime    string `json:"created_time,omitempty"`
}

// OrdersPage is one page of the orders listing.
type OrdersPage struct {
	Orders []Order `json:"orders"`
	Cursor string  `json:"cursor"`
}

type orderEnvelope struct {
	Order Order `json:"order"`
}
