package kalshi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPageSize is the per-request limit used when PageOptions does
// not set one.
const DefaultPageSize = 100

// PageOptions controls a cursor walk.
type PageOptions struct {
	// PageSize is the per-request limit.
	PageSize int
	// Params are fixed query parameters repeated on every page. The
	// limit and cursor parameters are managed by the walk.
	Params url.Values
	// ItemsKey names the array field of the page object holding the
	// items. A page without the key contributes nothing; the walk still
	// follows the cursor.
	ItemsKey string
}

// Paginate walks a cursor-paginated collection and returns the items in
// page order. When a page request fails mid-walk the items gathered so
// far are returned together with the error: the slice is a valid prefix
// of the collection even when err != nil.
func (c *Client) Paginate(ctx context.Context, path string, opts PageOptions) ([]json.RawMessage, error) {
	var items []json.RawMessage
	err := c.PaginateFunc(ctx, path, opts, func(item json.RawMessage) error {
		items = append(items, item)
		return nil
	})
	return items, err
}

// PaginateFunc streams items to fn one at a time. A non-nil error from
// fn stops the walk and comes back unchanged. Each page costs exactly
// one request, no page is fetched twice, and only a page without a
// cursor ends the walk successfully.
func (c *Client) PaginateFunc(ctx context.Context, path string, opts PageOptions, fn func(json.RawMessage) error) error {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	cursor := ""
	for {
		params := url.Values{}
		for k, vs := range opts.Params {
			for _, v := range vs {
				params.Add(k, v)
			}
		}
		params.Set("limit", strconv.Itoa(size))
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		raw, err := c.Request(ctx, http.MethodGet, path+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		var page struct {
			Cursor string `json:"cursor"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return &DecodeError{Err: err}
		}
		for _, item := range pageItems(raw, opts.ItemsKey) {
			if err := fn(item); err != nil {
				return err
			}
		}
		if page.Cursor == "" {
			return nil
		}
		cursor = page.Cursor
	}
}

// pageItems extracts the named array from a page object. A missing key
// or a non-array value yields nothing.
func pageItems(raw json.RawMessage, key string) []json.RawMessage {
	if key == "" {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	field, ok := obj[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil {
		return nil
	}
	return items
}
