package kalshi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func validOrder() OrderRequest {
	return LimitOrder("KXBTC-25AUG29-B50", ActionBuy, SideYes, 10, 35)
}

func TestOrderRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OrderRequest)
		field  string
	}{
		{"missing ticker", func(r *OrderRequest) { r.Ticker = "" }, "ticker"},
		{"bad action", func(r *OrderRequest) { r.Action = "hold" }, "action"},
		{"missing action", func(r *OrderRequest) { r.Action = "" }, "action"},
		{"bad side", func(r *OrderRequest) { r.Side = "maybe" }, "side"},
		{"bad type", func(r *OrderRequest) { r.Type = "stop" }, "type"},
		{"zero count", func(r *OrderRequest) { r.Count = 0 }, "count"},
		{"negative count", func(r *OrderRequest) { r.Count = -5 }, "count"},
		{"both prices", func(r *OrderRequest) { p := 40; r.NoPrice = &p }, "yes_price/no_price"},
		{"no price", func(r *OrderRequest) { r.YesPrice = nil }, "yes_price/no_price"},
		{"price zero", func(r *OrderRequest) { p := 0; r.YesPrice = &p }, "price"},
		{"price hundred", func(r *OrderRequest) { p := 100; r.YesPrice = &p }, "price"},
		{"price negative", func(r *OrderRequest) { p := -1; r.YesPrice = &p }, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrder()
			tt.mutate(&req)
			err := req.Validate()
			var vErr *OrderValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want *OrderValidationError, got %T: %v", err, err)
			}
			if vErr.Field != tt.field {
				t.Errorf("field: got %q, want %q", vErr.Field, tt.field)
			}
		})
	}

	t.Run("valid passes", func(t *testing.T) {
		req := validOrder()
		if err := req.Validate(); err != nil {
			t.Errorf("valid order rejected: %v", err)
		}
	})

	t.Run("no price boundary", func(t *testing.T) {
		for _, cents := range []int{1, 99} {
			req := LimitOrder("T", ActionSell, SideNo, 1, cents)
			if err := req.Validate(); err != nil {
				t.Errorf("price %d rejected: %v", cents, err)
			}
		}
	})
}

func TestOrderRequestNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := 60
		req := OrderRequest{Ticker: "T", Action: ActionBuy, Count: 1, NoPrice: &p}
		req.Normalize()
		if req.Type != OrderTypeLimit {
			t.Errorf("type default: got %q", req.Type)
		}
		if req.Side != SideNo {
			t.Errorf("side inferred from no_price: got %q", req.Side)
		}
		if _, err := uuid.Parse(req.ClientOrderID); err != nil {
			t.Errorf("client order id %q is not a uuid: %v", req.ClientOrderID, err)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		req := validOrder()
		req.ClientOrderID = "my-token"
		req.Normalize()
		if req.ClientOrderID != "my-token" {
			t.Errorf("client order id overwritten: %q", req.ClientOrderID)
		}
		if req.Side != SideYes {
			t.Errorf("side changed: %q", req.Side)
		}
	})
}

func TestPlaceOrderWireShape(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"order":{"order_id":"ord-1","ticker":"KXBTC-25AUG29-B50","status":"resting"}}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	order, err := c.PlaceOrder(context.Background(), validOrder())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.OrderID != "ord-1" || order.Status != "resting" {
		t.Errorf("order: %+v", order)
	}
	if gotMethod != http.MethodPost || gotPath != "/trade-api/v2/portfolio/orders" {
		t.Errorf("wire: %s %s", gotMethod, gotPath)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	for _, key := range []string{"ticker", "action", "side", "type", "count", "yes_price", "client_order_id"} {
		if _, ok := body[key]; !ok {
			t.Errorf("body missing %q: %s", key, gotBody)
		}
	}
	// Exactly one price side goes over the wire.
	if _, ok := body["no_price"]; ok {
		t.Errorf("body carries both price fields: %s", gotBody)
	}
	var token string
	if err := json.Unmarshal(body["client_order_id"], &token); err != nil || token == "" {
		t.Errorf("client_order_id: %s", body["client_order_id"])
	}
}

func TestPlaceOrderInvalidNeverHitsWire(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	req := validOrder()
	req.Count = 0
	_, err := c.PlaceOrder(context.Background(), req)
	var vErr *OrderValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want *OrderValidationError, got %T: %v", err, err)
	}
	if calls != 0 {
		t.Errorf("invalid order reached the wire: %d calls", calls)
	}
}

func TestCancelOrder(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"order":{"order_id":"ord-9","status":"canceled"}}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	order, err := c.CancelOrder(context.Background(), "ord-9")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if order.Status != "canceled" {
		t.Errorf("status: got %q", order.Status)
	}
	if gotMethod != http.MethodDelete || gotPath != "/trade-api/v2/portfolio/orders/ord-9" {
		t.Errorf("wire: %s %s", gotMethod, gotPath)
	}
}

func TestCancelAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"orders":[{"order_id":"a"},{"order_id":"b"}],"cursor":""}`))
		case r.URL.Path == "/trade-api/v2/portfolio/orders/a":
			w.Write([]byte(`{"order":{"order_id":"a","status":"canceled"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"already gone"}`))
		}
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	results, err := c.CancelAll(context.Background(), "KXBTC-25AUG29-B50")
	if err != nil {
		t.Fatalf("cancel all: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results: got %d, want 2", len(results))
	}
	if results[0].Err != nil || results[0].Order == nil || results[0].Order.Status != "canceled" {
		t.Errorf("first cancel: %+v", results[0])
	}
	// One failed cancel does not stop the sweep.
	var statusErr *StatusError
	if !errors.As(results[1].Err, &statusErr) {
		t.Errorf("second cancel: want *StatusError, got %v", results[1].Err)
	}
}
