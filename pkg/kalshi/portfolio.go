package kalshi

import (
	"context"
	"net/url"
	"strconv"
)

// GetBalance fetches the account cash position.
func (c *Client) GetBalance(ctx context.Context) (*Balance, error) {
	var b Balance
	if err := c.get(ctx, "/portfolio/balance", nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// PositionsParams filters the positions listing.
type PositionsParams struct {
	// SettlementStatus is unsettled, settled, or all.
	SettlementStatus string
	Ticker           string
	EventTicker      string
	// CountFilter keeps only positions with a nonzero value in the named
	// count: position, total_traded, or resting_order_count.
	CountFilter string
	Limit       int
	Cursor      string
}

func (p PositionsParams) values() url.Values {
	v := url.Values{}
	if p.SettlementStatus != "" {
		v.Set("settlement_status", p.SettlementStatus)
	}
	if p.Ticker != "" {
		v.Set("ticker", p.Ticker)
	}
	if p.EventTicker != "" {
		v.Set("event_ticker", p.EventTicker)
	}
	if p.CountFilter != "" {
		v.Set("count_filter", p.CountFilter)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Cursor != "" {
		v.Set("cursor", p.Cursor)
	}
	return v
}

// ListPositions fetches one page of market positions.
func (c *Client) ListPositions(ctx context.Context, p PositionsParams) (*PositionsPage, error) {
	var page PositionsPage
	if err := c.get(ctx, "/portfolio/positions", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// OrdersParams filters the orders listing.
type OrdersParams struct {
	Ticker      string
	EventTicker string
	// Status is resting, canceled, or executed.
	Status string
	Limit  int
	Cursor string
}

func (p OrdersParams) values() url.Values {
	v := url.Values{}
	if p.Ticker != "" {
		v.Set("ticker", p.Ticker)
	}
	if p.EventTicker != "" {
		v.Set("event_ticker", p.EventTicker)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Cursor != "" {
		v.Set("cursor", p.Cursor)
	}
	return v
}

// ListOrders fetches one page of orders.
func (c *Client) ListOrders(ctx context.Context, p OrdersParams) (*OrdersPage, error) {
	var page OrdersPage
	if err := c.get(ctx, "/portfolio/orders", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
