package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/betbot/gokalshi/pkg/kalshi"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleMarkets() []kalshi.Market {
	return []kalshi.Market{
		{Ticker: "KXBTC-25AUG29-B50", Title: "Bitcoin above $50k?", Status: "open", YesBid: 35},
		{Ticker: "KXNBA-25FIN-LAL", Title: "Lakers win the finals?", Status: "open", YesBid: 12},
	}
}

func TestSaveAndGet(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	id, err := store.Save(&Snapshot{Status: "open", Markets: sampleMarkets()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Markets) != 2 || got.Markets[0].Ticker != "KXBTC-25AUG29-B50" {
		t.Errorf("markets: %+v", got.Markets)
	}
	if got.Status != "open" || got.TakenAt.IsZero() {
		t.Errorf("metadata: %+v", got)
	}
}

func TestGetUnknown(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	_, err := store.Get("2020-01-01T00:00:00Z")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	base := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Save(&Snapshot{
			TakenAt: base.Add(time.Duration(i) * time.Minute),
			Markets: sampleMarkets()[:1],
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("summaries: %d", len(summaries))
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i].TakenAt.After(summaries[i-1].TakenAt) {
			t.Errorf("not newest first: %v then %v", summaries[i-1].TakenAt, summaries[i].TakenAt)
		}
	}
	if summaries[0].Count != 1 {
		t.Errorf("count: %d", summaries[0].Count)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, err := store.Save(&Snapshot{Markets: sampleMarkets()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, dir)
	got, err := reopened.Get(id)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if len(got.Markets) != 2 {
		t.Errorf("markets after reopen: %d", len(got.Markets))
	}
}
