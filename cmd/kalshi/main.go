// Command kalshi is a terminal client for the Kalshi trading API:
// account queries, market data, order entry, and a small read-only
// dashboard. Credentials come from the environment or a config file;
// every request is signed, nothing is ever stored about the key beyond
// its path.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/betbot/gokalshi/internal/metrics"
	"github.com/betbot/gokalshi/pkg/config"
	"github.com/betbot/gokalshi/pkg/kalshi"
	"github.com/betbot/gokalshi/pkg/logger"
	"github.com/betbot/gokalshi/pkg/ratelimit"
)

func usage() {
	fmt.Fprint(os.Stderr, `usage: kalshi [-config FILE] COMMAND [flags]

Account:
  balance                      cash and portfolio value
  positions                    open positions
  orders                       resting orders

Markets:
  markets                      list markets (filter, sort, save)
  orderbook TICKER             bid ladders and the derived quote
  watch TICKER                 live orderbook view
  stream TICKER...             tail the market data websocket

Trading:
  order | buy | sell           place an order
  cancel ORDER_ID              cancel one resting order
  cancel-all -ticker T         cancel every resting order on a market

Local state:
  snapshots [list|show|export] stored market snapshots
  journal                      recent submissions and cancellations

Other:
  serve                        read-only HTTP dashboard
  raw PATH                     GET any endpoint, print the JSON

Credentials: KALSHI_API_KEY_ID and KALSHI_PRIVATE_KEY_PATH (also read
from .env). The default base URL is the demo environment; set
KALSHI_BASE_URL to trade for real.
`)
}

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "config file path (.yaml)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional expvar/pprof listener, off unless the env names an address.
	if addr := os.Getenv("KALSHI_DEBUG_ADDR"); addr != "" {
		if _, err := metrics.StartAsync(ctx, addr); err != nil {
			logrus.Warnf("debug server on %s: %v", addr, err)
		} else {
			logrus.Infof("debug server listening on %s (expvar /debug/vars, pprof /debug/pprof)", addr)
		}
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := run(ctx, cfg, cmd, args); err != nil {
		logrus.Errorf("%s: %v", cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd string, args []string) error {
	switch cmd {
	case "balance":
		return cmdBalance(ctx, cfg, args)
	case "markets":
		return cmdMarkets(ctx, cfg, args)
	case "orderbook":
		return cmdOrderbook(ctx, cfg, args)
	case "positions":
		return cmdPositions(ctx, cfg, args)
	case "orders":
		return cmdOrders(ctx, cfg, args)
	case "order":
		return cmdOrder(ctx, cfg, args, "")
	case "buy":
		return cmdOrder(ctx, cfg, args, kalshi.ActionBuy)
	case "sell":
		return cmdOrder(ctx, cfg, args, kalshi.ActionSell)
	case "cancel":
		return cmdCancel(ctx, cfg, args)
	case "cancel-all":
		return cmdCancelAll(ctx, cfg, args)
	case "raw":
		return cmdRaw(ctx, cfg, args)
	case "snapshots":
		return cmdSnapshots(ctx, cfg, args)
	case "journal":
		return cmdJournal(ctx, cfg, args)
	case "watch":
		return cmdWatch(ctx, cfg, args)
	case "stream":
		return cmdStream(ctx, cfg, args)
	case "serve":
		return cmdServe(ctx, cfg, args)
	case "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newClient builds the signed API client. Commands that only touch
// local state never call this, so they work without credentials.
func newClient(cfg *config.Config) (*kalshi.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []kalshi.Option{
		kalshi.WithBaseURL(cfg.BaseURL),
		kalshi.WithMaxAttempts(cfg.MaxAttempts),
		kalshi.WithBaseDelay(cfg.BaseDelay),
		kalshi.WithTimeout(cfg.Timeout),
	}
	if tier := limitTier(cfg.RateLimitTier); tier != nil {
		opts = append(opts, kalshi.WithRateLimit(tier))
	}
	return kalshi.New(cfg.APIKeyID, cfg.PrivateKeyPath, opts...)
}

// limitTier maps the configured tier name onto a request budget.
// Unknown names get the conservative default.
func limitTier(name string) *ratelimit.Tier {
	switch name {
	case "none":
		return nil
	case "advanced":
		return ratelimit.AdvancedTier()
	default:
		return ratelimit.BasicTier()
	}
}

func printJSON(v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}
