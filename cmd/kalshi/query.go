package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/betbot/gokalshi/internal/classify"
	"github.com/betbot/gokalshi/internal/render"
	"github.com/betbot/gokalshi/pkg/config"
	"github.com/betbot/gokalshi/pkg/journal"
	"github.com/betbot/gokalshi/pkg/kalshi"
	"github.com/betbot/gokalshi/pkg/snapshot"
)

func cmdBalance(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	b, err := client.GetBalance(ctx)
	if err != nil {
		return err
	}
	fmt.Print(render.Balance(b))
	return nil
}

// annotatedMarket is the markets -json row: the venue payload plus the
// local category.
type annotatedMarket struct {
	kalshi.Market
	Category classify.Category `json:"category"`
}

func cmdMarkets(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("markets", flag.ContinueOnError)
	status := fs.String("status", "open", "market status filter (open, closed, settled)")
	limit := fs.Int("limit", 100, "page size for a single page")
	all := fs.Bool("all", false, "walk every page instead of the first")
	pageLimit := fs.Int("page-limit", 0, "page size while walking (0 = venue default)")
	search := fs.String("search", "", "case-insensitive substring over ticker and title")
	sortBy := fs.String("sort", "", "sort by title, ticker, yes_bid, or volume")
	jsonOut := fs.Bool("json", false, "print JSON instead of a table")
	save := fs.Bool("save", false, "persist the result as a snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	var markets []kalshi.Market
	var walkErr error
	if *all {
		markets, walkErr = client.AllMarkets(ctx, kalshi.MarketsParams{Status: *status, Limit: *pageLimit})
		if walkErr != nil && len(markets) == 0 {
			return walkErr
		}
		if walkErr != nil {
			logrus.Warnf("market walk stopped early after %d markets: %v", len(markets), walkErr)
		}
	} else {
		page, err := client.ListMarkets(ctx, kalshi.MarketsParams{Status: *status, Limit: *limit})
		if err != nil {
			return err
		}
		markets = page.Markets
	}

	markets = filterMarkets(markets, *search)
	if err := sortMarkets(markets, *sortBy); err != nil {
		return err
	}

	if *save {
		id, err := saveSnapshot(cfg, *status, *search, *sortBy, markets)
		if err != nil {
			return err
		}
		logrus.Infof("saved snapshot %s (%d markets)", id, len(markets))
	}

	if *jsonOut {
		annotated := make([]annotatedMarket, 0, len(markets))
		for _, m := range markets {
			annotated = append(annotated, annotatedMarket{Market: m, Category: classify.Market(m.Ticker, m.Title)})
		}
		if err := printJSON(annotated); err != nil {
			return err
		}
	} else {
		fmt.Print(render.Markets(markets))
	}
	return walkErr
}

func filterMarkets(ms []kalshi.Market, search string) []kalshi.Market {
	if search == "" {
		return ms
	}
	q := strings.ToLower(search)
	out := ms[:0]
	for _, m := range ms {
		if strings.Contains(strings.ToLower(m.Ticker), q) || strings.Contains(strings.ToLower(m.Title), q) {
			out = append(out, m)
		}
	}
	return out
}

// sortMarkets orders in place: strings ascending, prices and volume
// descending so the busiest markets lead.
func sortMarkets(ms []kalshi.Market, key string) error {
	switch key {
	case "":
	case "title":
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Title < ms[j].Title })
	case "ticker":
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Ticker < ms[j].Ticker })
	case "yes_bid":
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].YesBid > ms[j].YesBid })
	case "volume":
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Volume > ms[j].Volume })
	default:
		return fmt.Errorf("unknown sort key %q (want title, ticker, yes_bid, or volume)", key)
	}
	return nil
}

func saveSnapshot(cfg *config.Config, status, search, sortBy string, markets []kalshi.Market) (string, error) {
	store, err := snapshot.Open(cfg.SnapshotDir)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.Save(&snapshot.Snapshot{
		Status:  status,
		Search:  search,
		SortBy:  sortBy,
		Markets: markets,
	})
}

func cmdOrderbook(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("orderbook", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print JSON instead of the ladder view")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: orderbook TICKER")
	}
	ticker := fs.Arg(0)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	book, err := client.GetOrderbook(ctx, ticker)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(book)
	}
	fmt.Print(render.Orderbook(ticker, book))
	return nil
}

func cmdPositions(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("positions", flag.ContinueOnError)
	settlement := fs.String("settlement-status", "unsettled", "unsettled, settled, or all")
	ticker := fs.String("ticker", "", "filter by market ticker")
	countFilter := fs.String("count-filter", "position", "keep rows with a nonzero position, total_traded, or resting_order_count")
	limit := fs.Int("limit", 100, "page size")
	jsonOut := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	page, err := client.ListPositions(ctx, kalshi.PositionsParams{
		SettlementStatus: *settlement,
		Ticker:           *ticker,
		CountFilter:      *countFilter,
		Limit:            *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(page.MarketPositions)
	}
	fmt.Print(render.Positions(page.MarketPositions))
	return nil
}

func cmdOrders(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	ticker := fs.String("ticker", "", "filter by market ticker")
	status := fs.String("status", "resting", "order status filter")
	limit := fs.Int("limit", 100, "page size")
	jsonOut := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	page, err := client.ListOrders(ctx, kalshi.OrdersParams{
		Ticker: *ticker,
		Status: *status,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(page.Orders)
	}
	fmt.Print(render.Orders(page.Orders))
	return nil
}

func cmdRaw(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("raw", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: raw PATH (e.g. raw /portfolio/balance)")
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	body, err := client.Raw(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	var pretty json.RawMessage = body
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		// Not JSON after all; print as-is.
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(string(out))
	return nil
}

func cmdSnapshots(_ context.Context, cfg *config.Config, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	store, err := snapshot.Open(cfg.SnapshotDir)
	if err != nil {
		return err
	}
	defer store.Close()

	switch sub {
	case "list":
		sums, err := store.List()
		if err != nil {
			return err
		}
		fmt.Print(render.Snapshots(sums))
		return nil

	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: snapshots show ID")
		}
		snap, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("snapshot %s  taken %s  status=%s  search=%q  sort=%q\n\n",
			snap.ID, render.Timestamp(snap.TakenAt), snap.Status, snap.Search, snap.SortBy)
		fmt.Print(render.Markets(snap.Markets))
		return nil

	case "export":
		if len(args) != 2 {
			return fmt.Errorf("usage: snapshots export ID FILE")
		}
		snap, err := store.Get(args[0])
		if err != nil {
			return err
		}
		buf, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], buf, 0o644); err != nil {
			return err
		}
		logrus.Infof("exported snapshot %s to %s", snap.ID, args[1])
		return nil

	default:
		return fmt.Errorf("unknown snapshots subcommand %q (want list, show, or export)", sub)
	}
}

func cmdJournal(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "entries to show")
	jsonOut := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	jl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer jl.Close()

	entries, err := jl.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(entries)
	}
	fmt.Print(render.Journal(entries))
	return nil
}
