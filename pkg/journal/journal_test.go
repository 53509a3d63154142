package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/betbot/gokalshi/pkg/kalshi"
)

func openTestJournal(t *testing.T, path string) *Journal {
	t.Helper()
	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t, filepath.Join(t.TempDir(), "journal.db"))
	ctx := context.Background()

	req := kalshi.LimitOrder("KXBTC-25AUG29-B50", kalshi.ActionBuy, kalshi.SideYes, 10, 35)
	req.Normalize()
	placed := &kalshi.Order{OrderID: "ord-1", Status: "resting"}
	if err := j.RecordPlacement(ctx, req, placed); err != nil {
		t.Fatalf("record placement: %v", err)
	}
	if err := j.RecordCancellation(ctx, "ord-1", "KXBTC-25AUG29-B50", "canceled"); err != nil {
		t.Fatalf("record cancellation: %v", err)
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: %d", len(entries))
	}

	// Newest first: the cancellation precedes the placement.
	if entries[0].Kind != KindCancellation || entries[0].OrderID != "ord-1" || entries[0].Status != "canceled" {
		t.Errorf("cancellation entry: %+v", entries[0])
	}
	place := entries[1]
	if place.Kind != KindPlacement || place.Ticker != "KXBTC-25AUG29-B50" {
		t.Errorf("placement entry: %+v", place)
	}
	if place.Action != "buy" || place.Side != "yes" || place.Count != 10 {
		t.Errorf("order fields: %+v", place)
	}
	if place.PriceCents != 35 || place.PriceSide != "yes" {
		t.Errorf("price fields: %+v", place)
	}
	if place.ClientOrderID == "" || place.OrderID != "ord-1" || place.Status != "resting" {
		t.Errorf("ids: %+v", place)
	}
	if place.CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}
}

func TestRecentLimit(t *testing.T) {
	j := openTestJournal(t, filepath.Join(t.TempDir(), "journal.db"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := j.RecordCancellation(ctx, "ord", "T", "canceled"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	entries, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries: %d, want 3", len(entries))
	}
}

func TestPlacementWithoutVenueOrder(t *testing.T) {
	j := openTestJournal(t, filepath.Join(t.TempDir(), "journal.db"))
	ctx := context.Background()

	req := kalshi.LimitOrder("T", kalshi.ActionSell, kalshi.SideNo, 1, 60)
	req.Normalize()
	if err := j.RecordPlacement(ctx, req, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	entries, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if entries[0].OrderID != "" || entries[0].Status != "submitted" {
		t.Errorf("entry: %+v", entries[0])
	}
	if entries[0].PriceSide != "no" || entries[0].PriceCents != 60 {
		t.Errorf("price: %+v", entries[0])
	}
}

func TestJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := j.RecordCancellation(ctx, "ord-9", "T", "canceled"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestJournal(t, path)
	entries, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent after reopen: %v", err)
	}
	if len(entries) != 1 || entries[0].OrderID != "ord-9" {
		t.Errorf("entries after reopen: %+v", entries)
	}
}
