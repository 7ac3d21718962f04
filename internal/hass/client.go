package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/logging"
)

const (
	// DefaultPort is the Home Assistant HTTP port
	DefaultPort = 8123

	// DefaultRequestTimeout bounds the wait for a command result
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of reconnect attempts in Connect
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between connect attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	websocketPath = "/api/websocket"
)

// Client speaks the Home Assistant websocket API.
//
// One Client owns one connection. After the connection drops, Done is closed
// and Err reports why; create a new Client to reconnect.
type Client struct {
	// URL is the websocket endpoint, e.g. "ws://homeassistant.local:8123/api/websocket"
	URL string

	// Token is a long-lived access token
	Token string

	// Dialer is the websocket dialer (default: websocket.DefaultDialer)
	Dialer *websocket.Dialer

	// Logger receives connection and frame logs
	Logger *zap.Logger

	// RequestTimeout bounds each command when ctx has no deadline
	RequestTimeout time.Duration

	// MaxRetries is the maximum number of retry attempts in Connect
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool

	// writeMu serializes id assignment and frame writes; Home Assistant
	// rejects ids that do not increase
	writeMu sync.Mutex

	mu        sync.Mutex
	conn      *websocket.Conn
	nextID    int
	pending   map[int]chan gjson.Result
	subs      map[int]chan StateChange
	haVersion string
	done      chan struct{}
	err       error
}

// NewClient creates a client for a Home Assistant base URL such as
// "http://homeassistant.local:8123".
func NewClient(baseURL, token string) (*Client, error) {
	wsURL, err := WebSocketURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		URL:                   wsURL,
		Token:                 token,
		Dialer:                websocket.DefaultDialer,
		Logger:                zap.NewNop(),
		RequestTimeout:        DefaultRequestTimeout,
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}, nil
}

// WebSocketURL derives the websocket endpoint from a Home Assistant URL.
// http maps to ws and https to wss; a missing scheme means http.
func WebSocketURL(base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("home assistant URL is empty")
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid home assistant URL %q: %w", base, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid home assistant URL %q: missing host", base)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	path := strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(path, websocketPath) {
		path += websocketPath
	}
	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Connect dials and authenticates, retrying with backoff on transient
// failures. Authentication failures are returned immediately.
func (c *Client) Connect(ctx context.Context) error {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ClassifyError("connect cancelled", ctx.Err())
			case <-time.After(currentDelay):
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := c.connectAttempt(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		c.logger().Warn("Connect attempt failed",
			zap.String("url", c.URL),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return lastErr
}

func (c *Client) connectAttempt(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return &Error{Type: ErrTypeProtocol, Message: "already connected"}
	}
	c.mu.Unlock()

	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, c.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return ClassifyError("dial "+c.URL, err)
	}
	logging.LogConnection(c.logger(), c.URL, "websocket_connected")

	version, err := c.authenticate(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.nextID = 0
	c.pending = make(map[int]chan gjson.Result)
	c.subs = make(map[int]chan StateChange)
	c.haVersion = version
	c.done = make(chan struct{})
	c.err = nil
	done := c.done
	c.mu.Unlock()

	logging.LogConnection(c.logger(), c.URL, "authenticated")
	go c.readLoop(conn, done)
	return nil
}

// authenticate runs the auth_required / auth / auth_ok handshake and
// returns the server version.
func (c *Client) authenticate(ctx context.Context, conn *websocket.Conn) (string, error) {
	deadline := time.Now().Add(c.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	hello, err := c.readJSON(conn)
	if err != nil {
		return "", err
	}
	if t := hello.Get("type").String(); t != "auth_required" {
		return "", NewProtocolError(fmt.Sprintf("expected auth_required, got %q", t), nil)
	}

	auth, _ := json.Marshal(map[string]any{"type": "auth", "access_token": c.Token})
	if err := c.writeFrame(conn, auth); err != nil {
		return "", err
	}

	reply, err := c.readJSON(conn)
	if err != nil {
		return "", err
	}
	switch t := reply.Get("type").String(); t {
	case "auth_ok":
		return reply.Get("ha_version").String(), nil
	case "auth_invalid":
		msg := reply.Get("message").String()
		if msg == "" {
			msg = "invalid access token"
		}
		return "", NewAuthError(msg)
	default:
		return "", NewProtocolError(fmt.Sprintf("unexpected auth reply %q", t), nil)
	}
}

func (c *Client) readJSON(conn *websocket.Conn) (gjson.Result, error) {
	mt, data, err := conn.ReadMessage()
	if err != nil {
		return gjson.Result{}, ClassifyError("read", err)
	}
	logging.LogWebSocketMessage(c.logger(), c.URL, "received", mt, data)
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, NewProtocolError("malformed JSON frame", nil)
	}
	return gjson.ParseBytes(data), nil
}

func (c *Client) writeFrame(conn *websocket.Conn, data []byte) error {
	logging.LogWebSocketMessage(c.logger(), c.URL, "sent", websocket.TextMessage, data)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return ClassifyError("write", err)
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	// Subscriptions are only ever written to from this goroutine, so it is
	// the one that closes them.
	defer func() {
		c.mu.Lock()
		for id, sub := range c.subs {
			close(sub)
			delete(c.subs, id)
		}
		c.mu.Unlock()
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			c.shutdown(ClassifyError("connection lost", err))
			return
		}
		logging.LogWebSocketMessage(c.logger(), c.URL, "received", mt, data)

		if !gjson.ValidBytes(data) {
			logging.LogMalformedFrame(c.logger(), c.URL, data)
			continue
		}

		// The server may coalesce several messages into one array frame
		msg := gjson.ParseBytes(data)
		if msg.IsArray() {
			msg.ForEach(func(_, m gjson.Result) bool {
				return c.dispatch(m, done)
			})
			continue
		}
		c.dispatch(msg, done)
	}
}

// dispatch routes one message. It returns false once the client is done.
func (c *Client) dispatch(msg gjson.Result, done chan struct{}) bool {
	id := int(msg.Get("id").Int())

	switch msg.Get("type").String() {
	case "result", "pong":
		c.mu.Lock()
		ch, ok := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()
		if ok {
			ch <- msg
		}

	case "event":
		c.mu.Lock()
		sub, ok := c.subs[id]
		c.mu.Unlock()
		if !ok {
			return true
		}
		event := msg.Get("event")
		if event.Get("event_type").String() != "state_changed" {
			return true
		}
		change, ok := parseStateChange(event.Get("data"))
		if !ok {
			return true
		}
		select {
		case sub <- change:
		case <-done:
			return false
		}

	default:
		c.logger().Debug("Ignoring message", zap.String("type", msg.Get("type").String()), zap.Int("id", id))
	}
	return true
}

func (c *Client) shutdown(err error) {
	c.mu.Lock()
	if c.done == nil {
		c.mu.Unlock()
		return
	}
	select {
	case <-c.done:
		c.mu.Unlock()
		return
	default:
	}

	c.err = err
	close(c.done)
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	logging.LogConnection(c.logger(), c.URL, "closed")
}

func (c *Client) timeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return DefaultRequestTimeout
}

// request sends a command and waits for its result. If sub is non-nil it is
// registered for events carrying the command id before the command is sent.
func (c *Client) request(ctx context.Context, payload map[string]any, sub chan StateChange) (gjson.Result, error) {
	c.writeMu.Lock()

	c.mu.Lock()
	if c.conn == nil || c.done == nil {
		c.mu.Unlock()
		c.writeMu.Unlock()
		return gjson.Result{}, &Error{Type: ErrTypeClosed, Message: "not connected"}
	}
	select {
	case <-c.done:
		err := c.err
		c.mu.Unlock()
		c.writeMu.Unlock()
		return gjson.Result{}, err
	default:
	}
	c.nextID++
	id := c.nextID
	reply := make(chan gjson.Result, 1)
	c.pending[id] = reply
	if sub != nil {
		c.subs[id] = sub
	}
	conn, done := c.conn, c.done
	c.mu.Unlock()

	payload["id"] = id
	data, err := json.Marshal(payload)
	if err == nil {
		err = c.writeFrame(conn, data)
	} else {
		err = NewProtocolError("encode command", err)
	}
	c.writeMu.Unlock()

	if err != nil {
		c.forget(id)
		return gjson.Result{}, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout())
		defer cancel()
	}

	select {
	case msg := <-reply:
		if msg.Get("type").String() == "pong" {
			return msg, nil
		}
		if !msg.Get("success").Bool() {
			c.forget(id)
			return gjson.Result{}, NewResultError(msg.Get("error.code").String(), msg.Get("error.message").String())
		}
		return msg.Get("result"), nil
	case <-ctx.Done():
		c.forget(id)
		return gjson.Result{}, ClassifyError(fmt.Sprintf("waiting for reply to %v", payload["type"]), ctx.Err())
	case <-done:
		return gjson.Result{}, c.Err()
	}
}

func (c *Client) forget(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	delete(c.subs, id)
	c.mu.Unlock()
}

// GetStates returns every entity state.
func (c *Client) GetStates(ctx context.Context) ([]State, error) {
	r, err := c.request(ctx, map[string]any{"type": "get_states"}, nil)
	if err != nil {
		return nil, err
	}
	if !r.IsArray() {
		return nil, NewProtocolError("get_states result is not a list", nil)
	}
	return parseStates(r), nil
}

// ServerConfig is the subset of get_config the dashboard shows.
type ServerConfig struct {
	LocationName string
	Version      string
	TimeZone     string
}

// GetConfig returns the server configuration.
func (c *Client) GetConfig(ctx context.Context) (ServerConfig, error) {
	r, err := c.request(ctx, map[string]any{"type": "get_config"}, nil)
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		LocationName: r.Get("location_name").String(),
		Version:      r.Get("version").String(),
		TimeZone:     r.Get("time_zone").String(),
	}, nil
}

// SubscribeStates subscribes to state_changed events. The channel is closed
// when the connection ends.
func (c *Client) SubscribeStates(ctx context.Context) (<-chan StateChange, error) {
	sub := make(chan StateChange, 64)
	_, err := c.request(ctx, map[string]any{
		"type":       "subscribe_events",
		"event_type": "state_changed",
	}, sub)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// CallService calls domain.service. target is sent as its own field when
// non-nil.
func (c *Client) CallService(ctx context.Context, domain, service string, data, target map[string]any) error {
	payload := map[string]any{
		"type":    "call_service",
		"domain":  domain,
		"service": service,
	}
	if data != nil {
		payload["service_data"] = data
	} else {
		payload["service_data"] = map[string]any{}
	}
	if target != nil {
		payload["target"] = target
	}

	_, err := c.request(ctx, payload, nil)
	logging.LogServiceCall(c.logger(), domain, service, data, target, err)
	return err
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.request(ctx, map[string]any{"type": "ping"}, nil)
	return err
}

// HAVersion returns the version reported during authentication.
func (c *Client) HAVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.haVersion
}

// Done is closed when the connection ends. It is nil before Connect.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Err reports why the connection ended, or nil while it is up.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close ends the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	c.shutdown(ErrClosed)
	return nil
}
