// ABOUTME: Mopidy JSON-RPC client over a persistent socket
// ABOUTME: Connection state machine, backoff, request correlation and event routing
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/mopidy-go/pkg/events"
	"github.com/harperreed/mopidy-go/pkg/models"
)

const (
	// DefaultURL is Mopidy's WebSocket endpoint on a local install
	DefaultURL = "ws://localhost:6680/mopidy/ws"

	DefaultMinDelay = 1 * time.Second
	DefaultMaxDelay = 64 * time.Second
)

// State is the connection lifecycle state
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOnline
	StateReconnectPending
	StateStopped
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOnline:
		return "online"
	case StateReconnectPending:
		return "reconnect-pending"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds client configuration
type Config struct {
	// URL is the WebSocket endpoint (default: DefaultURL)
	URL string

	// MinDelay is the first reconnect delay (default: 1s)
	MinDelay time.Duration

	// MaxDelay caps the doubling reconnect delay (default: 64s)
	MaxDelay time.Duration

	// MaxRetries bounds failed attempts after the first one; 0 retries forever
	MaxRetries int

	// Dialer opens sockets (default: WebSocketDialer)
	Dialer Dialer

	// Events is the hub to emit on; a private one is created when nil
	Events *events.Emitter
}

// Client owns one logical connection to a Mopidy server. It multiplexes
// concurrent requests over the socket and routes server events to its
// emitter. Listeners run on the read goroutine, so they must not block on
// Call; start a goroutine instead. state:online is emitted before the read
// goroutine starts. Disconnect and Send emit on their caller's goroutine.
type Client struct {
	config Config
	events *events.Emitter
	id     string
	wait   func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	conn       Conn
	state      State
	delay      time.Duration
	pending    map[int64]*Future
	nextID     int64
	stopped    bool
	looping    bool
	cancelLoop context.CancelFunc
	// loop identifies the current connect loop; stale loops compare unequal
	loop uint64
}

// NewClient creates a client. Nothing is dialed until Connect.
func NewClient(config Config) *Client {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.MinDelay <= 0 {
		config.MinDelay = DefaultMinDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultMaxDelay
	}
	if config.MaxDelay < config.MinDelay {
		config.MaxDelay = config.MinDelay
	}
	if config.Dialer == nil {
		config.Dialer = WebSocketDialer{}
	}
	em := config.Events
	if em == nil {
		em = events.NewEmitter()
	}

	return &Client{
		config:  config,
		events:  em,
		id:      uuid.New().String(),
		wait:    sleepContext,
		state:   StateDisconnected,
		delay:   config.MinDelay,
		pending: make(map[int64]*Future),
	}
}

// Events returns the hub the client emits on
func (c *Client) Events() *events.Emitter {
	return c.events
}

// ID returns the instance id used in log lines
func (c *Client) ID() string {
	return c.id
}

// URL returns the configured endpoint
func (c *Client) URL() string {
	return c.config.URL
}

// State returns the current connection state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Delay returns the backoff delay the next failed attempt will wait
func (c *Client) Delay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delay
}

// Pending returns the number of outstanding requests
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Connect dials the server, retrying with exponential backoff until it is
// online, MaxRetries is exhausted, ctx is done or Disconnect is called. It
// returns nil immediately if the client is already online or connecting.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.looping || c.state == StateOnline {
		c.mu.Unlock()
		c.logf("Connect ignored, already %s", c.State())
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.stopped = false
	c.looping = true
	c.cancelLoop = cancel
	c.loop++
	gen := c.loop
	c.mu.Unlock()
	defer cancel()

	return c.connectLoop(loopCtx, gen, false)
}

// Disconnect stops the client: any retry loop exits, the socket is closed
// and outstanding requests are rejected
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancelLoop
	c.looping = false
	c.cancelLoop = nil
	c.loop++
	conn := c.conn
	c.conn = nil
	detached := c.pending
	c.pending = make(map[int64]*Future)
	c.state = StateStopped
	c.delay = c.config.MinDelay
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	c.rejectAll(detached, nil)

	c.logf("Disconnected")
	c.events.Emit(EventStateOffline, c, nil)
}

// Close is Disconnect
func (c *Client) Close() error {
	c.Disconnect()
	return nil
}

// connectLoop runs the dial/backoff state machine. waitFirst starts with a
// backoff wait, which is how reconnects after a dropped socket begin. A loop
// whose generation is no longer current only unwinds.
func (c *Client) connectLoop(ctx context.Context, gen uint64, waitFirst bool) error {
	defer func() {
		c.mu.Lock()
		if c.loop == gen {
			c.looping = false
			c.cancelLoop = nil
		}
		c.mu.Unlock()
	}()

	failures := 0
	for attempt := 0; ; attempt++ {
		if attempt > 0 || waitFirst {
			if err := c.backoff(ctx, gen, attempt); err != nil {
				return err
			}
		}

		c.mu.Lock()
		if c.staleLocked(gen) {
			c.mu.Unlock()
			return c.canceled(ctx, gen, nil)
		}
		c.state = StateConnecting
		c.mu.Unlock()

		c.logf("Connecting to %s", c.config.URL)
		conn, err := c.config.Dialer.Dial(ctx, c.config.URL)
		if err == nil {
			c.mu.Lock()
			if c.staleLocked(gen) {
				c.mu.Unlock()
				_ = conn.Close()
				return c.canceled(ctx, gen, nil)
			}
			c.conn = conn
			c.state = StateOnline
			c.delay = c.config.MinDelay
			c.mu.Unlock()

			c.logf("Connected to %s", c.config.URL)
			// Online listeners finish before the first inbound frame is routed
			c.events.Emit(EventStateOnline, c, nil)
			go c.readLoop(conn)
			return nil
		}

		failures++
		c.logf("Connection attempt %d failed: %v", failures, err)
		if ctx.Err() != nil {
			return c.canceled(ctx, gen, err)
		}
		if !Retryable(err) {
			c.settle(gen)
			return fmt.Errorf("connection failed, not retrying: %w", err)
		}
		if c.config.MaxRetries > 0 && failures > c.config.MaxRetries {
			c.settle(gen)
			return fmt.Errorf("%w (%d attempts): %v", ErrMaxRetries, failures, err)
		}
	}
}

// staleLocked reports whether the loop gen should stop. Callers hold mu.
func (c *Client) staleLocked(gen uint64) bool {
	return c.stopped || c.loop != gen
}

// settle marks a failed current loop as disconnected
func (c *Client) settle(gen uint64) {
	c.mu.Lock()
	if !c.staleLocked(gen) {
		c.state = StateDisconnected
	}
	c.mu.Unlock()
}

// backoff announces and waits out the current delay, then doubles it
func (c *Client) backoff(ctx context.Context, gen uint64, attempt int) error {
	c.mu.Lock()
	if c.staleLocked(gen) {
		c.mu.Unlock()
		return c.canceled(ctx, gen, nil)
	}
	delay := c.delay
	c.state = StateReconnectPending
	c.mu.Unlock()

	c.logf("Reconnecting in %v", delay)
	c.events.Emit(EventReconnectionPending, c, Reconnection{Delay: delay, Attempt: attempt})

	if err := c.wait(ctx, delay); err != nil {
		return c.canceled(ctx, gen, err)
	}

	c.mu.Lock()
	if c.staleLocked(gen) {
		c.mu.Unlock()
		return c.canceled(ctx, gen, nil)
	}
	c.delay = min(c.delay*2, c.config.MaxDelay)
	c.mu.Unlock()

	c.events.Emit(EventReconnecting, c, Reconnection{Delay: delay, Attempt: attempt})
	return nil
}

// canceled builds the error a stopped loop returns and settles the state
func (c *Client) canceled(ctx context.Context, gen uint64, cause error) error {
	c.settle(gen)

	if cause == nil {
		cause = ctx.Err()
	}
	return newError(CodeCanceled, nil, cause)
}

// reconnect starts a background loop after the socket dropped
func (c *Client) reconnect() {
	c.mu.Lock()
	if c.stopped || c.looping {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.looping = true
	c.cancelLoop = cancel
	c.loop++
	gen := c.loop
	c.mu.Unlock()
	defer cancel()

	if err := c.connectLoop(ctx, gen, true); err != nil {
		c.logf("Reconnect loop ended: %v", err)
	}
}

// Send registers and writes a request. Failures, including not being
// connected, are delivered through the returned future.
func (c *Client) Send(req Request) *Future {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	f := newFuture(id)
	c.pending[id] = f
	conn, state := c.conn, c.state
	c.mu.Unlock()

	data, err := json.Marshal(envelope{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  req.Method,
		Params:  req.Params,
	})
	if err != nil {
		c.fail(id, newError(CodeUnknown, nil, fmt.Errorf("encode %s: %w", req.Method, err)))
		return f
	}

	if conn == nil {
		code := CodeSocketClosed
		if state == StateConnecting || state == StateReconnectPending {
			code = CodeSocketConnecting
		}
		c.fail(id, newError(code, nil, nil))
		return f
	}

	c.events.Emit(EventOutgoingMessage, c, string(data))

	if err := conn.WriteMessage(data); err != nil {
		code := CodeSocketClosed
		if errorsIsClosing(err) {
			code = CodeSocketClosing
		}
		c.fail(id, newError(code, nil, err))
	}
	return f
}

// Call sends a request and waits for its result
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (any, error) {
	return c.Send(Request{Method: method, Params: params}).Wait(ctx)
}

// fail removes id from the table and rejects it. If cleanup already
// detached the entry, cleanup owns the rejection.
func (c *Client) fail(id int64, err error) {
	c.mu.Lock()
	f, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if ok {
		f.reject(err)
	}
}

// readLoop reads and routes incoming messages until the socket fails
func (c *Client) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, err)
			return
		}
		c.handleMessage(data)
	}
}

// handleClose detaches the outstanding table before rejecting its entries
// so responses and new sends never touch the entries being swept
func (c *Client) handleClose(conn Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		// Disconnect already took this socket down
		c.mu.Unlock()
		return
	}
	c.conn = nil
	detached := c.pending
	c.pending = make(map[int64]*Future)
	stopped := c.stopped
	if !stopped {
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	_ = conn.Close()
	c.logf("Connection lost: %v", cause)
	c.rejectAll(detached, cause)
	c.events.Emit(EventStateOffline, c, nil)

	if !stopped {
		go c.reconnect()
	}
}

func (c *Client) rejectAll(detached map[int64]*Future, cause error) {
	for _, f := range detached {
		if f.Resolved() {
			continue
		}
		f.reject(newError(CodeSocketClosed, nil, cause))
	}
}

// handleMessage routes one inbound frame
func (c *Client) handleMessage(data []byte) {
	c.events.Emit(EventIncomingMessage, c, string(data))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		c.logf("Dropping malformed message: %v", err)
		return
	}

	if _, ok := fields["id"]; ok {
		c.handleResponse(fields)
		return
	}
	if _, ok := fields["event"]; ok {
		c.handleEvent(fields)
		return
	}
	c.logf("Unknown message type: %s", data)
}

func (c *Client) handleResponse(fields map[string]json.RawMessage) {
	var id *int64
	if err := json.Unmarshal(fields["id"], &id); err != nil || id == nil {
		c.logf("Dropping response with unusable id %s", fields["id"])
		return
	}

	c.mu.Lock()
	f, ok := c.pending[*id]
	if ok {
		delete(c.pending, *id)
	}
	c.mu.Unlock()

	if !ok {
		c.logf("Unexpected response received, id=%d", *id)
		return
	}
	if f.Resolved() {
		return
	}

	if raw, ok := fields["result"]; ok {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			f.reject(newError(CodeUnexpectedResponse, map[string]any{"detail": err.Error()}, err))
			return
		}
		result, err := models.Convert(v)
		if err != nil {
			f.reject(newError(CodeUnexpectedResponse, map[string]any{"detail": err.Error()}, err))
			return
		}
		f.resolve(result)
		return
	}

	if raw, ok := fields["error"]; ok {
		f.reject(newServerError(raw))
		return
	}

	f.reject(newError(CodeUnexpectedResponse,
		map[string]any{"detail": "response has neither result nor error"}, nil))
}

func (c *Client) handleEvent(fields map[string]json.RawMessage) {
	var name string
	if err := json.Unmarshal(fields["event"], &name); err != nil || name == "" {
		c.logf("Dropping event with unusable name %s", fields["event"])
		return
	}

	data := make(map[string]any, len(fields)-1)
	for key, raw := range fields {
		if key == "event" {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			c.logf("Dropping event %s: bad field %q: %v", name, key, err)
			return
		}
		data[key] = v
	}

	normalized := NormalizeEventName(name)
	c.events.Emit(EventServer, c, EventData{Name: normalized, Data: data})
	c.events.Emit(normalized, c, data)
}

func (c *Client) logf(format string, args ...any) {
	log.Printf("mopidy[%s]: "+format, append([]any{c.id[:8]}, args...)...)
}

// sleepContext waits d or until ctx is done
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
