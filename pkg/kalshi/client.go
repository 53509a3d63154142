package kalshi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/betbot/gokalshi/internal/metrics"
	"github.com/betbot/gokalshi/pkg/ratelimit"
)

// Retry tuning defaults. Retryable statuses back off exponentially from
// the base delay unless the venue supplies a numeric Retry-After.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 250 * time.Millisecond
	DefaultTimeout     = 30 * time.Second
)

// Client is a signed-request client for the venue REST API. Every
// operation goes through Request, which owns signing, bounded retries,
// and response decoding. Safe for concurrent use.
type Client struct {
	creds       Credentials
	baseURL     string
	http        *resty.Client
	maxAttempts int
	baseDelay   time.Duration
	limits      *ratelimit.Tier
	log         *logrus.Entry

	// test seams; production builds never touch these
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option adjusts client construction.
type Option func(*Client)

// WithBaseURL points the client at a specific environment (production,
// demo, or a test server). Default is the demo environment.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = normalizeBase(base) }
}

// WithTimeout bounds a single HTTP attempt. The retry loop is bounded
// separately by WithMaxAttempts.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithMaxAttempts caps how many times one request may hit the wire.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first retry delay; attempt n waits base * 2^n.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithRateLimit meters request dispatch against a venue tier budget.
// Every attempt, retries included, first takes a token: order placement
// and cancellation from the write budget, everything else from the read
// budget. Default is unlimited.
func WithRateLimit(t *ratelimit.Tier) Option {
	return func(c *Client) { c.limits = t }
}

// WithLogger routes client logging through a specific entry.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a client from an API key id and a PEM private key file.
// A bad key file fails here, not on first use.
func New(apiKeyID, privateKeyPath string, opts ...Option) (*Client, error) {
	creds, err := LoadCredentials(apiKeyID, privateKeyPath)
	if err != nil {
		return nil, err
	}
	return NewWithCredentials(creds, opts...), nil
}

// NewWithCredentials builds a client from in-memory credentials.
func NewWithCredentials(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:       creds,
		baseURL:     normalizeBase(DemoBaseURL),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		log:         logrus.WithField("component", "kalshi"),
		now:         time.Now,
		sleep:       sleepContext,
	}
	// Retries stay at resty's zero default: the loop in Request owns them.
	c.http = resty.New().SetTimeout(DefaultTimeout)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized REST base in use.
func (c *Client) BaseURL() string { return c.baseURL }

// Request performs one API operation with signing and bounded retries.
// The path may be spelled with or without the API prefix. GET requests
// never carry a body; for other methods a non-nil body is JSON-encoded.
// Success returns the raw JSON response body.
//
// 401 and non-retryable statuses return immediately. 429 and transient
// 5xx retry with exponential backoff (Retry-After wins when numeric), as
// do transport failures. The final failure never sleeps.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.RequestRetries.Add(1)
		}
		if err := c.limits.Wait(ctx, method != http.MethodGet); err != nil {
			return nil, err
		}
		// Fresh timestamp and signature on every attempt.
		headers, err := c.creds.SignRequest(c.now(), method, path)
		if err != nil {
			return nil, err
		}
		resp, err := c.execute(ctx, method, path, headers, body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.log.Warnf("%s %s: attempt %d/%d failed: %v", method, path, attempt+1, c.maxAttempts, err)
			if attempt == c.maxAttempts-1 {
				break
			}
			if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		status := resp.StatusCode()
		switch {
		case status == http.StatusUnauthorized:
			return nil, &AuthError{Body: snippet(resp.Body())}
		case retryableStatus(status):
			if attempt == c.maxAttempts-1 {
				return nil, &RetryExhaustedError{Attempts: c.maxAttempts, StatusCode: status}
			}
			delay := c.backoff(attempt)
			if d, ok := parseRetryAfter(resp.Header().Get("Retry-After")); ok {
				delay = d
			}
			c.log.Warnf("%s %s: status %d, waiting %v before retry %d/%d", method, path, status, delay, attempt+2, c.maxAttempts)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		case status >= 200 && status < 300:
			var raw json.RawMessage
			if err := json.Unmarshal(resp.Body(), &raw); err != nil {
				return nil, &DecodeError{Err: err}
			}
			return raw, nil
		default:
			return nil, &StatusError{StatusCode: status, Body: snippet(resp.Body())}
		}
	}
	return nil, &TransportError{Attempts: c.maxAttempts, Err: lastErr}
}

// Raw fetches an arbitrary GET endpoint and returns the undecoded body.
// Debug surface; the typed operations are preferred.
func (c *Client) Raw(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

func (c *Client) execute(ctx context.Context, method, path string, headers map[string]string, body any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx).SetHeaders(headers)
	if method != http.MethodGet && body != nil {
		req.SetBody(body)
	}
	c.log.Debugf("%s %s", method, path)
	return req.Execute(method, joinURL(c.baseURL, path))
}

func (c *Client) backoff(attempt int) time.Duration {
	return c.baseDelay * time.Duration(1<<uint(attempt))
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	raw, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := c.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func (c *Client) del(ctx context.Context, path string, out any) error {
	raw, err := c.Request(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func decodeInto(raw json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseRetryAfter reads a numeric Retry-After value in seconds.
// HTTP-date forms are ignored; callers fall back to exponential backoff.
func parseRetryAfter(h string) (time.Duration, bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(h, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// sleepContext waits for d unless ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
