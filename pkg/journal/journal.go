package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/betbot/gokalshi/pkg/kalshi"
)

// Event kinds.
const (
	KindPlacement    = "place"
	KindCancellation = "cancel"
)

// Entry is one recorded order event.
type Entry struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	ClientOrderID string    `json:"client_order_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	Ticker        string    `json:"ticker,omitempty"`
	Action        string    `json:"action,omitempty"`
	Side          string    `json:"side,omitempty"`
	Type          string    `json:"type,omitempty"`
	Count         int       `json:"count,omitempty"`
	PriceCents    int       `json:"price_cents,omitempty"`
	PriceSide     string    `json:"price_side,omitempty"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Journal records every order submission and cancellation in a local
// sqlite database, so what was sent to the venue can be audited later.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path and migrates the schema.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "journal dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	// Single connection keeps sqlite happy under concurrent commands.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS order_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  client_order_id TEXT,
  order_id TEXT,
  ticker TEXT,
  action TEXT,
  side TEXT,
  order_type TEXT,
  count INTEGER,
  price_cents INTEGER,
  price_side TEXT,
  status TEXT,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_order_events_created ON order_events(created_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return errors.Wrap(err, "journal migrate")
		}
	}
	return nil
}

// RecordPlacement writes one submission row. The request supplies the
// body that went over the wire; placed, when non-nil, supplies the venue
// order id and status.
func (j *Journal) RecordPlacement(ctx context.Context, req kalshi.OrderRequest, placed *kalshi.Order) error {
	priceCents, priceSide := 0, ""
	switch {
	case req.YesPrice != nil:
		priceCents, priceSide = *req.YesPrice, kalshi.SideYes
	case req.NoPrice != nil:
		priceCents, priceSide = *req.NoPrice, kalshi.SideNo
	}
	orderID, status := "", "submitted"
	if placed != nil {
		orderID = placed.OrderID
		if placed.Status != "" {
			status = placed.Status
		}
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO order_events (kind,client_order_id,order_id,ticker,action,side,order_type,count,price_cents,price_side,status,created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
`, KindPlacement, req.ClientOrderID, orderID, req.Ticker, req.Action, req.Side, req.Type,
		req.Count, priceCents, priceSide, status, time.Now().UTC().Format(time.RFC3339Nano))
	return errors.Wrap(err, "record placement")
}

// RecordCancellation writes one cancellation row.
func (j *Journal) RecordCancellation(ctx context.Context, orderID, ticker, status string) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO order_events (kind,order_id,ticker,status,created_at)
VALUES (?,?,?,?,?)
`, KindCancellation, orderID, ticker, status, time.Now().UTC().Format(time.RFC3339Nano))
	return errors.Wrap(err, "record cancellation")
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id,kind,COALESCE(client_order_id,''),COALESCE(order_id,''),COALESCE(ticker,''),
       COALESCE(action,''),COALESCE(side,''),COALESCE(order_type,''),COALESCE(count,0),
       COALESCE(price_cents,0),COALESCE(price_side,''),COALESCE(status,''),created_at
FROM order_events ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query journal")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Kind, &e.ClientOrderID, &e.OrderID, &e.Ticker,
			&e.Action, &e.Side, &e.Type, &e.Count, &e.PriceCents, &e.PriceSide, &e.Status, &created); err != nil {
			return nil, errors.Wrap(err, "scan journal row")
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "journal rows")
}
