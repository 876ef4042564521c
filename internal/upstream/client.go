package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"admin-notify-service/internal/domain"
)

// State is the connection manager's observable status, rendered by the
// dashboard as a colored indicator.
type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
	StateGivenUp
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateGivenUp:
		return "given_up"
	}
	return "unknown"
}

// Handler consumes one decoded inbound event. Called from the read
// loop, one event at a time, in arrival order.
type Handler func(ctx context.Context, evt domain.Event)

// Config parameterizes the upstream feed connection.
type Config struct {
	// EndpointURL is the websocket endpoint; the credential is added
	// as a `token` query parameter, and reconnects reuse the same
	// construction.
	EndpointURL string
	Token       string

	// AutoReconnect schedules a redial after an unexpected closure.
	// Retries happen at a fixed (non-exponential) interval, up to
	// MaxAttempts; exhausting the budget is terminal until the caller
	// re-initiates with Start.
	AutoReconnect     bool
	ReconnectInterval time.Duration
	MaxAttempts       int

	// ReadTimeout bounds the wait for the next frame; refreshed on
	// every frame and on pong. Zero disables the deadline.
	ReadTimeout time.Duration
}

const (
	DefaultReconnectInterval = 5 * time.Second
	DefaultMaxAttempts       = 3
	DefaultReadTimeout       = 60 * time.Second
)

// Client owns the upstream connection lifecycle: dial, read loop,
// bounded fixed-interval reconnect, teardown. A single read loop runs
// per logical connection, so events are handled strictly in arrival
// order with no interleaving.
type Client struct {
	cfg       Config
	handler   Handler
	logger    *zap.Logger
	sessionID string

	state atomic.Int32

	mu       sync.Mutex
	conn     *websocket.Conn
	retry    *time.Timer // pending reconnect, stopped on Close
	attempts int
	closed   bool
}

func NewClient(cfg Config, handler Handler, logger *zap.Logger) *Client {
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = DefaultReconnectInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	c := &Client{
		cfg:       cfg,
		handler:   handler,
		logger:    logger,
		sessionID: uuid.NewString(),
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// SessionID tags every log line of this logical connection.
func (c *Client) SessionID() string { return c.sessionID }

// Status returns the current connection state.
func (c *Client) Status() State { return State(c.state.Load()) }

// Start dials the upstream feed. On dial failure the reconnect policy
// takes over, so a transient outage at boot is handled the same way as
// a mid-session drop. Re-initiating after GivenUp resets the budget.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	c.attempts = 0
	c.closed = false
	c.mu.Unlock()

	c.state.Store(int32(StateConnecting))
	if err := c.connect(ctx); err != nil {
		c.logger.Warn("upstream dial failed",
			zap.String("session_id", c.sessionID),
			zap.Error(err))
		c.scheduleRetry(ctx)
	}
}

// Close tears the connection down: the pending reconnect timer (if
// any) is stopped and the transport closed without triggering further
// retries. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
		c.conn = nil
	}
}

// connect builds the authenticated URL, dials, and hands the
// connection to a fresh read loop. On success the attempt budget
// resets.
func (c *Client) connect(ctx context.Context) error {
	u, err := url.Parse(c.cfg.EndpointURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("token", c.cfg.Token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.attempts = 0
	c.mu.Unlock()

	c.state.Store(int32(StateConnected))
	c.logger.Info("upstream connected",
		zap.String("session_id", c.sessionID),
		zap.String("endpoint", c.cfg.EndpointURL))

	if c.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		})
	}

	go c.readLoop(ctx, conn)
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("upstream read error",
					zap.String("session_id", c.sessionID),
					zap.Error(err))
			}
			break
		}
		if c.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		}
		c.dispatch(ctx, data)
	}
	c.onDisconnect(ctx, conn)
}

// dispatch decodes one frame and hands it to the handler. Frames that
// fail to decode are dropped here, before classification.
func (c *Client) dispatch(ctx context.Context, data []byte) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("dropping malformed frame",
			zap.String("session_id", c.sessionID),
			zap.Error(err))
		return
	}

	evt := domain.Event{
		Type:      domain.EventType(stringField(raw, "type")),
		Message:   stringField(raw, "message"),
		Timestamp: stringField(raw, "timestamp"),
		TenantID:  stringField(raw, "tenant_id"),
		Action:    stringField(raw, "action"),
		Raw:       raw,
	}
	c.handler(ctx, evt)
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// onDisconnect handles any transport closure not requested via Close.
func (c *Client) onDisconnect(ctx context.Context, conn *websocket.Conn) {
	c.mu.Lock()
	if c.closed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	_ = conn.Close()
	c.state.Store(int32(StateDisconnected))
	c.logger.Warn("upstream disconnected",
		zap.String("session_id", c.sessionID))

	c.scheduleRetry(ctx)
}

// scheduleRetry arms the reconnect timer, or gives up once the attempt
// budget is spent.
func (c *Client) scheduleRetry(ctx context.Context) {
	if !c.cfg.AutoReconnect {
		c.state.Store(int32(StateDisconnected))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.attempts >= c.cfg.MaxAttempts {
		c.state.Store(int32(StateGivenUp))
		c.logger.Error("upstream reconnect budget exhausted",
			zap.String("session_id", c.sessionID),
			zap.Int("attempts", c.attempts))
		return
	}
	c.state.Store(int32(StateDisconnected))
	c.retry = time.AfterFunc(c.cfg.ReconnectInterval, func() {
		c.redial(ctx)
	})
}

func (c *Client) redial(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	c.state.Store(int32(StateConnecting))
	c.logger.Info("upstream reconnecting",
		zap.String("session_id", c.sessionID),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", c.cfg.MaxAttempts))

	if err := c.connect(ctx); err != nil {
		c.logger.Warn("upstream reconnect failed",
			zap.String("session_id", c.sessionID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		c.scheduleRetry(ctx)
	}
}
