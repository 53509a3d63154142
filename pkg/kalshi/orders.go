package kalshi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/google/uuid"
)

// Order actions, sides, and types accepted by the venue.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"

	SideYes = "yes"
	SideNo  = "no"

	OrderTypeLimit  = "limit"
	OrderTypeMarket = "market"
)

// OrderRequest is the body for PlaceOrder. Exactly one of YesPrice and
// NoPrice must be set, in cents from 1 to 99.
type OrderRequest struct {
	Ticker        string `json:"ticker"`
	Action        string `json:"action"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Count         int    `json:"count"`
	YesPrice      *int   `json:"yes_price,omitempty"`
	NoPrice       *int   `json:"no_price,omitempty"`
	ClientOrderID string `json:"client_order_id"`
}

// LimitOrder builds a limit OrderRequest with the price on the given
// side.
func LimitOrder(ticker, action, side string, count, priceCents int) OrderRequest {
	r := OrderRequest{Ticker: ticker, Action: action, Side: side, Type: OrderTypeLimit, Count: count}
	p := priceCents
	if side == SideNo {
		r.NoPrice = &p
	} else {
		r.YesPrice = &p
	}
	return r
}

// Normalize fills defaults: limit type, side implied by whichever price
// field is set, and a generated client order id so a resubmitted request
// is deduplicable venue-side.
func (r *OrderRequest) Normalize() {
	if r.Type == "" {
		r.Type = OrderTypeLimit
	}
	if r.Side == "" {
		switch {
		case r.YesPrice != nil && r.NoPrice == nil:
			r.Side = SideYes
		case r.NoPrice != nil && r.YesPrice == nil:
			r.Side = SideNo
		}
	}
	if r.ClientOrderID == "" {
		r.ClientOrderID = uuid.NewString()
	}
}

// Validate rejects a malformed order before it reaches the wire.
func (r *OrderRequest) Validate() error {
	if r.Ticker == "" {
		return &OrderValidationError{Field: "ticker", Reason: "required"}
	}
	switch r.Action {
	case ActionBuy, ActionSell:
	default:
		return &OrderValidationError{Field: "action", Reason: `must be "buy" or "sell"`}
	}
	switch r.Side {
	case SideYes, SideNo:
	default:
		return &OrderValidationError{Field: "side", Reason: `must be "yes" or "no"`}
	}
	switch r.Type {
	case OrderTypeLimit, OrderTypeMarket:
	default:
		return &OrderValidationError{Field: "type", Reason: `must be "limit" or "market"`}
	}
	if r.Count <= 0 {
		return &OrderValidationError{Field: "count", Reason: "must be positive"}
	}
	if (r.YesPrice == nil) == (r.NoPrice == nil) {
		return &OrderValidationError{Field: "yes_price/no_price", Reason: "exactly one must be set"}
	}
	price := r.YesPrice
	if price == nil {
		price = r.NoPrice
	}
	if *price < 1 || *price > 99 {
		return &OrderValidationError{Field: "price", Reason: "must be 1..99 cents"}
	}
	return nil
}

// PlaceOrder submits an order. The request is normalized and validated
// first; nothing invalid costs a network call.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var env orderEnvelope
	if err := c.post(ctx, "/portfolio/orders", req, &env); err != nil {
		return nil, err
	}
	return &env.Order, nil
}

// CancelOrder cancels one resting order by venue id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	var env orderEnvelope
	if err := c.del(ctx, "/portfolio/orders/"+url.PathEscape(orderID), &env); err != nil {
		return nil, err
	}
	return &env.Order, nil
}

// AllOrders walks every orders page matching p. Limit becomes the page
// size of the walk. On a mid-walk failure the orders fetched so far come
// back together with the error.
func (c *Client) AllOrders(ctx context.Context, p OrdersParams) ([]Order, error) {
	size := p.Limit
	p.Limit = 0
	p.Cursor = ""
	var out []Order
	err := c.PaginateFunc(ctx, "/portfolio/orders", PageOptions{
		PageSize: size,
		Params:   p.values(),
		ItemsKey: "orders",
	}, func(item json.RawMessage) error {
		var o Order
		if err := json.Unmarshal(item, &o); err != nil {
			return &DecodeError{Err: err}
		}
		out = append(out, o)
		return nil
	})
	return out, err
}

// CancelResult pairs an order id with the outcome of its cancellation.
type CancelResult struct {
	OrderID string
	Order   *Order
	Err     error
}

// CancelAll cancels every resting order for a ticker. The listing step
// failing is fatal; per-order cancel failures are collected in the
// results and do not stop the sweep.
func (c *Client) CancelAll(ctx context.Context, ticker string) ([]CancelResult, error) {
	orders, err := c.AllOrders(ctx, OrdersParams{Ticker: ticker, Status: "resting"})
	if err != nil {
		return nil, err
	}
	results := make([]CancelResult, 0, len(orders))
	for _, o := range orders {
		res := CancelResult{OrderID: o.OrderID}
		res.Order, res.Err = c.CancelOrder(ctx, o.OrderID)
		results = append(results, res)
	}
	return results, nil
}
