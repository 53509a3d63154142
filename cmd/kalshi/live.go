package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/gokalshi/internal/dashboard"
	"github.com/betbot/gokalshi/internal/watch"
	"github.com/betbot/gokalshi/pkg/config"
	"github.com/betbot/gokalshi/pkg/journal"
	"github.com/betbot/gokalshi/pkg/kalshi"
)

func cmdWatch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", watch.DefaultInterval, "poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: watch TICKER")
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	return watch.Run(ctx, client, fs.Arg(0), *interval)
}

func cmdStream(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("stream", flag.ContinueOnError)
	channels := fs.String("channels", kalshi.ChannelTicker,
		"comma-separated: ticker, orderbook_delta, trade, market_lifecycle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tickers := fs.Args()
	if len(tickers) == 0 {
		return fmt.Errorf("usage: stream [-channels LIST] TICKER...")
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	stream := client.Stream(nil)
	if err := stream.Start(ctx); err != nil {
		return err
	}
	defer stream.Stop()

	chans := splitCSV(*channels)
	if err := stream.Subscribe(chans, tickers...); err != nil {
		return err
	}
	logrus.Infof("streaming %s for %s", strings.Join(chans, ","), strings.Join(tickers, ","))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stream.Done():
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("stream closed")
		case msg := <-stream.Messages():
			line, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Println(string(line))
		case err := <-stream.Errors():
			logrus.Warnf("stream: %v", err)
		}
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cmdServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listen := fs.String("listen", cfg.ListenAddr, "HTTP listen address")
	ttl := fs.Duration("cache-ttl", dashboard.DefaultCacheTTL, "venue response cache TTL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	jl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logrus.Warnf("order journal unavailable: %v", err)
		jl = nil
	} else {
		defer jl.Close()
	}

	dash, err := dashboard.New(client, jl, *ttl)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              *listen,
		Handler:           dash.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("dashboard listening on %s", *listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
