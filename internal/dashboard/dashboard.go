// Package dashboard is a read-only HTTP facade over the account:
// balance, markets, positions, orders, and the local order journal.
// Responses are cached for a few seconds so a refreshing browser tab
// does not hammer the venue.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/betbot/gokalshi/pkg/cache"
	"github.com/betbot/gokalshi/pkg/journal"
	"github.com/betbot/gokalshi/pkg/kalshi"
)

const (
	// DefaultCacheTTL is how long a venue response is reused.
	DefaultCacheTTL = 5 * time.Second

	fetchTimeout = 10 * time.Second
)

type Server struct {
	client  *kalshi.Client
	journal *journal.Journal
	cache   *cache.ResponseCache
}

func New(client *kalshi.Client, jl *journal.Journal, ttl time.Duration) (*Server, error) {
	if client == nil {
		return nil, errors.New("dashboard: client is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Server{client: client, journal: jl, cache: cache.NewResponseCache(ttl)}, nil
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	api.GET("/balance", s.handleBalance)
	api.GET("/markets", s.handleMarkets)
	api.GET("/positions", s.handlePositions)
	api.GET("/orders", s.handleOrders)
	api.GET("/journal", s.handleJournal)

	return r
}

func (s *Server) handleBalance(c *gin.Context) {
	s.serveCached(c, "balance", http.StatusBadGateway, func(ctx context.Context) (any, error) {
		return s.client.GetBalance(ctx)
	})
}

func (s *Server) handleMarkets(c *gin.Context) {
	status := c.DefaultQuery("status", "open")
	limit := intQuery(c, "limit", 100)
	key := fmt.Sprintf("markets:%s:%d", status, limit)
	s.serveCached(c, key, http.StatusBadGateway, func(ctx context.Context) (any, error) {
		page, err := s.client.ListMarkets(ctx, kalshi.MarketsParams{Status: status, Limit: limit})
		if err != nil {
			return nil, err
		}
		return page.Markets, nil
	})
}

func (s *Server) handlePositions(c *gin.Context) {
	settlement := c.DefaultQuery("settlement_status", "unsettled")
	key := "positions:" + settlement
	s.serveCached(c, key, http.StatusBadGateway, func(ctx context.Context) (any, error) {
		page, err := s.client.ListPositions(ctx, kalshi.PositionsParams{
			SettlementStatus: settlement,
			CountFilter:      "position",
		})
		if err != nil {
			return nil, err
		}
		return page.MarketPositions, nil
	})
}

func (s *Server) handleOrders(c *gin.Context) {
	status := c.DefaultQuery("status", "resting")
	key := "orders:" + status
	s.serveCached(c, key, http.StatusBadGateway, func(ctx context.Context) (any, error) {
		page, err := s.client.ListOrders(ctx, kalshi.OrdersParams{Status: status})
		if err != nil {
			return nil, err
		}
		return page.Orders, nil
	})
}

func (s *Server) handleJournal(c *gin.Context) {
	if s.journal == nil {
		writeError(c, http.StatusNotFound, errors.New("journal not configured"))
		return
	}
	limit := intQuery(c, "limit", 50)
	key := fmt.Sprintf("journal:%d", limit)
	s.serveCached(c, key, http.StatusInternalServerError, func(ctx context.Context) (any, error) {
		return s.journal.Recent(ctx, limit)
	})
}

// serveCached answers from the response cache, filling it with one
// fetch when stale. Fetch failures are never cached.
func (s *Server) serveCached(c *gin.Context, key string, failStatus int, fetch func(ctx context.Context) (any, error)) {
	buf, err := s.cache.Fetch(key, func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
		defer cancel()
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		writeError(c, failStatus, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf)
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
