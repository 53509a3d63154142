package kalshi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// MarketsParams filters the markets listing. Zero values are omitted
// from the query.
type MarketsParams struct {
	Status       string
	EventTicker  string
	SeriesTicker string
	Limit        int
	Cursor       string
}

func (p MarketsParams) values() url.Values {
	v := url.Values{}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.EventTicker != "" {
		v.Set("event_ticker", p.EventTicker)
	}
	if p.SeriesTicker != "" {
		v.Set("series_ticker", p.SeriesTicker)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Cursor != "" {
		v.Set("cursor", p.Cursor)
	}
	return v
}

// ListMarkets fetches one page of markets.
func (c *Client) ListMarkets(ctx context.Context, p MarketsParams) (*MarketsPage, error) {
	var page MarketsPage
	if err := c.get(ctx, "/markets", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AllMarkets walks every page matching p. Limit becomes the page size
// of the walk. On a mid-walk failure the markets fetched so far come
// back together with the error.
func (c *Client) AllMarkets(ctx context.Context, p MarketsParams) ([]Market, error) {
	size := p.Limit
	p.Limit = 0
	p.Cursor = ""
	var out []Market
	err := c.PaginateFunc(ctx, "/markets", PageOptions{
		PageSize: size,
		Params:   p.values(),
		ItemsKey: "markets",
	}, func(item json.RawMessage) error {
		var m Market
		if err := json.Unmarshal(item, &m); err != nil {
			return &DecodeError{Err: err}
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// GetOrderbook fetches the bid ladders for one market.
func (c *Client) GetOrderbook(ctx context.Context, ticker string) (*Orderbook, error) {
	var env orderbookEnvelope
	if err := c.get(ctx, "/markets/"+url.PathEscape(ticker)+"/orderbook", nil, &env); err != nil {
		return nil, err
	}
	return &env.Orderbook, nil
}
