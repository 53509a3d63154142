package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/betbot/gokalshi/internal/metrics"
)

// WSPath is the websocket endpoint path. Unlike REST paths it is signed
// as-is, without the REST prefix.
const WSPath = "/trade-api/ws/v2"

// Subscription channels offered by the venue.
const (
	ChannelTicker          = "ticker"
	ChannelOrderbookDelta  = "orderbook_delta"
	ChannelTrade           = "trade"
	ChannelMarketLifecycle = "market_lifecycle"
)

// wsURL derives the websocket URL from a REST base URL.
func wsURL(base string) string {
	base = strings.TrimSuffix(normalizeBase(base), APIPrefix)
	base = strings.Replace(base, "https://", "wss://", 1)
	base = strings.Replace(base, "http://", "ws://", 1)
	return base + WSPath
}

// StreamMessage is one frame from the market data feed. Msg is left
// undecoded; its shape depends on Type (ticker, trade,
// orderbook_snapshot, orderbook_delta, subscribed, error, ...).
type StreamMessage struct {
	Type string          `json:"type"`
	ID   int             `json:"id,omitempty"`
	SID  int64           `json:"sid,omitempty"`
	Seq  int64           `json:"seq,omitempty"`
	Msg  json.RawMessage `json:"msg,omitempty"`
}

type streamCommand struct {
	ID     int          `json:"id"`
	Cmd    string       `json:"cmd"`
	Params streamParams `json:"params"`
}

type streamParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

// StreamConfig tunes the market stream connection.
type StreamConfig struct {
	MessageBuffer        int
	ErrorBuffer          int
	HandshakeTimeout     time.Duration
	PingInterval         time.Duration
	ReconnectDelay       time.Duration
	MaxReconnectDelay    time.Duration
	MaxReconnectAttempts int
}

// DefaultStreamConfig returns the tuning used when none is supplied.
func DefaultStreamConfig() *StreamConfig {
	return &StreamConfig{
		MessageBuffer:        256,
		ErrorBuffer:          16,
		HandshakeTimeout:     10 * time.Second,
		PingInterval:         10 * time.Second,
		ReconnectDelay:       time.Second,
		MaxReconnectDelay:    30 * time.Second,
		MaxReconnectAttempts: 10,
	}
}

// MarketStream is a reconnecting client for the venue's market data
// websocket. The handshake carries the same signed headers as REST
// requests; subscriptions survive reconnects.
type MarketStream struct {
	creds  Credentials
	url    string
	config *StreamConfig
	log    *logrus.Entry

	conn   *websocket.Conn
	connMu sync.Mutex

	subs   []streamParams
	nextID int
	subMu  sync.Mutex

	msgChan chan StreamMessage
	errChan chan error

	running   bool
	runningMu sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	stopCh    chan struct{}
	doneCh    chan struct{}

	reconnectAttempts int
	reconnectMu       sync.Mutex
}

// NewMarketStream builds a stream against the websocket endpoint derived
// from a REST base URL.
func NewMarketStream(creds Credentials, baseURL string, config *StreamConfig) *MarketStream {
	if config == nil {
		config = DefaultStreamConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MarketStream{
		creds:   creds,
		url:     wsURL(baseURL),
		config:  config,
		log:     logrus.WithField("component", "kalshi-ws"),
		msgChan: make(chan StreamMessage, config.MessageBuffer),
		errChan: make(chan error, config.ErrorBuffer),
		ctx:     ctx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Stream builds a MarketStream sharing this client's credentials and
// environment.
func (c *Client) Stream(config *StreamConfig) *MarketStream {
	return NewMarketStream(c.creds, c.baseURL, config)
}

// Start connects and begins reading. The stream stops when ctx ends or
// Stop is called.
func (s *MarketStream) Start(ctx context.Context) error {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		return fmt.Errorf("stream already running")
	}
	s.running = true
	s.runningMu.Unlock()

	if ctx != nil {
		s.ctx = ctx
	}
	if err := s.connect(); err != nil {
		s.runningMu.Lock()
		s.running = false
		s.runningMu.Unlock()
		return fmt.Errorf("initial connect: %w", err)
	}
	go s.readLoop()
	go s.pingLoop()
	s.log.Infof("connected to %s", s.url)
	return nil
}

// Stop closes the connection and waits briefly for the read loop.
func (s *MarketStream) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.cancel()
	close(s.stopCh)

	s.connMu.Lock()
	if s.conn != nil {
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	select {
	case <-s.doneCh:
	case <-time.After(5 * time.Second):
		s.log.Warn("close timed out")
	}
}

// Subscribe opens the given channels for the given market tickers. The
// subscription is replayed after every reconnect.
func (s *MarketStream) Subscribe(channels []string, tickers ...string) error {
	if len(channels) == 0 {
		return fmt.Errorf("no channels given")
	}
	params := streamParams{Channels: channels, MarketTickers: tickers}
	s.subMu.Lock()
	s.subs = append(s.subs, params)
	s.subMu.Unlock()
	return s.send("subscribe", params)
}

// Messages returns the feed channel. Frames are dropped, with a note on
// Errors, when the consumer falls behind the buffer.
func (s *MarketStream) Messages() <-chan StreamMessage { return s.msgChan }

// Errors returns the channel of stream-level errors.
func (s *MarketStream) Errors() <-chan error { return s.errChan }

// Done is closed when the read loop exits, after Stop or once the
// reconnect budget is spent.
func (s *MarketStream) Done() <-chan struct{} { return s.doneCh }

// IsRunning reports whether Start has been called and Stop has not.
func (s *MarketStream) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()
	return s.running
}

func (s *MarketStream) send(cmd string, params streamParams) error {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subMu.Unlock()

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	return s.conn.WriteJSON(streamCommand{ID: id, Cmd: cmd, Params: params})
}

// connect dials with freshly signed handshake headers.
func (s *MarketStream) connect() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	sig, err := s.creds.Sign(ts, http.MethodGet, WSPath)
	if err != nil {
		return err
	}
	headers := http.Header{}
	headers.Set(HeaderAccessKey, s.creds.APIKeyID())
	headers.Set(HeaderAccessTimestamp, ts)
	headers.Set(HeaderAccessSignature, sig)

	dialer := websocket.Dialer{HandshakeTimeout: s.config.HandshakeTimeout}
	conn, _, err := dialer.Dial(s.url, headers)
	if err != nil {
		return err
	}
	s.conn = conn

	s.reconnectMu.Lock()
	s.reconnectAttempts = 0
	s.reconnectMu.Unlock()
	return nil
}

func (s *MarketStream) readLoop() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()
		if conn == nil {
			if !s.reconnect() {
				return
			}
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.Close()
				s.conn = nil
			}
			s.connMu.Unlock()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Info("connection closed")
				return
			}
			select {
			case <-s.stopCh:
				return
			default:
			}
			s.log.Warnf("read failed: %v, reconnecting", err)
			if !s.reconnect() {
				return
			}
			continue
		}
		s.handleFrame(data)
	}
}

func (s *MarketStream) pingLoop() {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.connMu.Lock()
			conn := s.conn
			s.connMu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				s.log.Debugf("ping failed: %v", err)
			}
		}
	}
}

// reconnect waits with linear-growing delay capped at the max, then
// redials and replays subscriptions. Returns false once the attempt
// budget is spent.
func (s *MarketStream) reconnect() bool {
	s.reconnectMu.Lock()
	s.reconnectAttempts++
	attempts := s.reconnectAttempts
	s.reconnectMu.Unlock()

	if attempts > s.config.MaxReconnectAttempts {
		select {
		case s.errChan <- fmt.Errorf("gave up reconnecting after %d attempts", s.config.MaxReconnectAttempts):
		default:
		}
		return false
	}

	delay := s.config.ReconnectDelay * time.Duration(attempts)
	if delay > s.config.MaxReconnectDelay {
		delay = s.config.MaxReconnectDelay
	}
	s.log.Infof("reconnecting in %v (attempt %d/%d)", delay, attempts, s.config.MaxReconnectAttempts)

	select {
	case <-s.ctx.Done():
		return false
	case <-s.stopCh:
		return false
	case <-time.After(delay):
	}

	metrics.StreamReconnects.Add(1)
	if err := s.connect(); err != nil {
		s.log.Warnf("reconnect failed: %v", err)
		return true
	}
	s.resubscribe()
	return true
}

func (s *MarketStream) resubscribe() {
	s.subMu.Lock()
	subs := make([]streamParams, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()
	for _, params := range subs {
		if err := s.send("subscribe", params); err != nil {
			s.log.Warnf("resubscribe failed: %v", err)
			return
		}
	}
}

func (s *MarketStream) handleFrame(data []byte) {
	var msg StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		select {
		case s.errChan <- fmt.Errorf("bad frame: %w", err):
		default:
		}
		return
	}
	if msg.Type == "error" {
		select {
		case s.errChan <- fmt.Errorf("venue error: %s", string(msg.Msg)):
		default:
		}
		return
	}
	select {
	case s.msgChan <- msg:
	default:
		select {
		case s.errChan <- fmt.Errorf("consumer behind, dropped %s frame", msg.Type):
		default:
		}
	}
}
