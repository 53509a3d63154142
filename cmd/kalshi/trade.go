package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/betbot/gokalshi/pkg/config"
	"github.com/betbot/gokalshi/pkg/journal"
	"github.com/betbot/gokalshi/pkg/kalshi"
)

// openJournal opens the local order journal. A broken journal is worth
// a warning, never a reason to block trading.
func openJournal(cfg *config.Config) *journal.Journal {
	jl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logrus.Warnf("order journal unavailable: %v", err)
		return nil
	}
	return jl
}

// cmdOrder handles order, buy, and sell. buy and sell arrive with the
// action preset; order takes it as a flag.
func cmdOrder(ctx context.Context, cfg *config.Config, args []string, presetAction string) error {
	name := "order"
	if presetAction != "" {
		name = presetAction
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	ticker := fs.String("ticker", "", "market ticker (required)")
	count := fs.Int("count", 0, "number of contracts (required)")
	yes := fs.Int("yes", 0, "yes price in cents, 1-99")
	no := fs.Int("no", 0, "no price in cents, 1-99")
	typ := fs.String("type", kalshi.OrderTypeLimit, "limit or market")
	var action *string
	if presetAction == "" {
		action = fs.String("action", "", "buy or sell (required)")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := kalshi.OrderRequest{
		Ticker: *ticker,
		Action: presetAction,
		Type:   *typ,
		Count:  *count,
	}
	if action != nil {
		req.Action = *action
	}
	if *yes > 0 {
		v := *yes
		req.YesPrice = &v
	}
	if *no > 0 {
		v := *no
		req.NoPrice = &v
	}

	// Normalize before submitting so the journal sees the generated
	// client order id even when the venue call fails. Validation
	// failures never reach the wire or the journal.
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	jl := openJournal(cfg)
	if jl != nil {
		defer jl.Close()
	}

	placed, err := client.PlaceOrder(ctx, req)
	if jl != nil {
		if jerr := jl.RecordPlacement(ctx, req, placed); jerr != nil {
			logrus.Warnf("journal write failed: %v", jerr)
		}
	}
	if err != nil {
		return err
	}

	side, price := req.Side, 0
	if req.YesPrice != nil {
		price = *req.YesPrice
	} else if req.NoPrice != nil {
		price = *req.NoPrice
	}
	fmt.Printf("placed %s: %s %d %s %s @ %d¢, status %s\n",
		placed.OrderID, req.Action, req.Count, side, req.Ticker, price, placed.Status)
	return nil
}

func cmdCancel(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: cancel ORDER_ID")
	}
	orderID := fs.Arg(0)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	jl := openJournal(cfg)
	if jl != nil {
		defer jl.Close()
	}

	canceled, err := client.CancelOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if jl != nil {
		if jerr := jl.RecordCancellation(ctx, orderID, canceled.Ticker, canceled.Status); jerr != nil {
			logrus.Warnf("journal write failed: %v", jerr)
		}
	}
	fmt.Printf("canceled %s, status %s\n", orderID, canceled.Status)
	return nil
}

func cmdCancelAll(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("cancel-all", flag.ContinueOnError)
	ticker := fs.String("ticker", "", "market ticker (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ticker == "" {
		return fmt.Errorf("cancel-all needs -ticker; refusing to sweep every market")
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	jl := openJournal(cfg)
	if jl != nil {
		defer jl.Close()
	}

	results, err := client.CancelAll(ctx, *ticker)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Printf("no resting orders on %s\n", *ticker)
		return nil
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logrus.Errorf("cancel %s failed: %v", res.OrderID, res.Err)
			continue
		}
		status := ""
		if res.Order != nil {
			status = res.Order.Status
		}
		if jl != nil {
			if jerr := jl.RecordCancellation(ctx, res.OrderID, *ticker, status); jerr != nil {
				logrus.Warnf("journal write failed: %v", jerr)
			}
		}
		fmt.Printf("canceled %s, status %s\n", res.OrderID, status)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d cancels failed", failed, len(results))
	}
	fmt.Printf("canceled %d orders on %s\n", len(results), *ticker)
	return nil
}
