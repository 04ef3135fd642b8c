package fhz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olira/fhz2mqtt/internal/fht"
)

// Default timeouts and intervals for transceiver communication.
const (
	// defaultConnectTimeout is the maximum time to wait for a connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultWriteTimeout is the timeout for write operations.
	defaultWriteTimeout = 5 * time.Second

	// defaultReconnectInterval is the initial delay between reconnection attempts.
	defaultReconnectInterval = 5 * time.Second

	// maxReconnectInterval is the maximum delay between reconnection attempts.
	maxReconnectInterval = 2 * time.Minute

	// dispatchQueueSize is the buffer size for the payload dispatch queue.
	dispatchQueueSize = 64
)

// Config holds FHZ connection configuration.
type Config struct {
	// Connection is the transceiver connection URL.
	// Supported formats:
	//   - "tcp://host:port" (transceiver behind ser2net or similar)
	//   - "serial:///dev/ttyUSB0" (local device node)
	Connection string

	// ConnectTimeout is the maximum time to wait for a connection.
	// Default: 10 seconds.
	ConnectTimeout time.Duration

	// ReconnectInterval is the initial delay between reconnection attempts.
	// Default: 5 seconds.
	ReconnectInterval time.Duration
}

// Stats holds operational statistics.
type Stats struct {
	PayloadsTx      uint64
	PayloadsRx      uint64
	PayloadsDropped uint64 // Payloads dropped due to a full dispatch queue
	ErrorsTotal     uint64
	ReconnectsTotal uint64
	LastActivity    time.Time
	Connected       bool
	Reconnecting    bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// deadlineConn is the connection surface the client needs. Both net.Conn
// and *os.File satisfy it.
type deadlineConn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Client provides the connection to the FHZ transceiver.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Payload callbacks are invoked from a single dispatch goroutine,
//     preserving the order frames arrived on the bus.
//
// Auto-Reconnection:
//   - When the connection is lost, the client reconnects with exponential
//     backoff starting at ReconnectInterval up to two minutes.
//   - Reconnection stops only when Close is called.
type Client struct {
	cfg Config

	// Connection state
	connMu    sync.Mutex
	conn      deadlineConn
	reader    *bufio.Reader
	connected bool

	// Serialises writes to the transceiver
	writeMu sync.Mutex

	// Reconnection state
	reconnecting atomic.Bool

	// Payload handler callback
	onPayload  func(fht.Payload)
	callbackMu sync.RWMutex

	// Single dispatch worker keeps split readings ordered
	dispatchQueue chan fht.Payload

	// Shutdown coordination
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex

	// Statistics
	payloadsTx      atomic.Uint64
	payloadsRx      atomic.Uint64
	payloadsDropped atomic.Uint64
	errorsTotal     atomic.Uint64
	reconnectsTotal atomic.Uint64
	lastActivity    atomic.Int64 // Unix timestamp
}

// Connect opens the connection to the FHZ transceiver and starts the
// receive loop.
//
// Parameters:
//   - ctx: Context for cancellation (used for the initial connection)
//   - cfg: Connection configuration
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the connection cannot be established
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = defaultReconnectInterval
	}

	conn, err := openConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:           cfg,
		conn:          conn,
		reader:        bufio.NewReader(conn),
		connected:     true,
		dispatchQueue: make(chan fht.Payload, dispatchQueueSize),
		done:          make(chan struct{}),
	}
	c.lastActivity.Store(time.Now().Unix())

	c.wg.Add(2)
	go c.dispatchLoop()
	go c.receiveLoop()

	return c, nil
}

// openConnection dials or opens the transceiver per the connection URL.
func openConnection(ctx context.Context, cfg Config) (deadlineConn, error) {
	u, err := url.Parse(cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q: %w", ErrConnectionFailed, cfg.Connection, err)
	}

	switch u.Scheme {
	case "tcp":
		dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		var dialer net.Dialer
		conn, err := dialer.DialContext(dialCtx, "tcp", u.Host)
		if err != nil {
			return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFailed, u.Host, err)
		}
		return conn, nil
	case "serial":
		f, err := os.OpenFile(u.Path, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrConnectionFailed, u.Path, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q (use tcp or serial)", ErrConnectionFailed, u.Scheme)
	}
}

// Send frames a payload and writes it to the transceiver.
//
// Parameters:
//   - ctx: Context; its deadline bounds the write when sooner than the default
//   - p: Payload to send (type tag + data)
//
// Returns:
//   - error: ErrNotConnected or ErrSendFailed
func (c *Client) Send(ctx context.Context, p fht.Payload) error {
	c.connMu.Lock()
	conn := c.conn
	connected := c.connected
	c.connMu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	// Serial device nodes may not support deadlines; a blocking write to
	// a tty completes promptly anyway.
	if err := conn.SetWriteDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return fmt.Errorf("%w: set deadline: %w", ErrSendFailed, err)
	}

	if _, err := conn.Write(encodeFrame(p)); err != nil {
		c.errorsTotal.Add(1)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	c.payloadsTx.Add(1)
	c.lastActivity.Store(time.Now().Unix())
	return nil
}

// SetOnPayload registers the callback invoked for every inbound payload.
// The callback runs on the dispatch goroutine and should not block.
func (c *Client) SetOnPayload(callback func(fht.Payload)) {
	c.callbackMu.Lock()
	c.onPayload = callback
	c.callbackMu.Unlock()
}

// SetLogger sets an optional logger.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// HealthCheck reports whether the transceiver link is usable.
//
// Returns:
//   - error: ErrNotConnected when the link is down, nil otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the transceiver link is up.
func (c *Client) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connected
}

// Stats returns a snapshot of operational statistics.
func (c *Client) Stats() Stats {
	return Stats{
		PayloadsTx:      c.payloadsTx.Load(),
		PayloadsRx:      c.payloadsRx.Load(),
		PayloadsDropped: c.payloadsDropped.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
		ReconnectsTotal: c.reconnectsTotal.Load(),
		LastActivity:    time.Unix(c.lastActivity.Load(), 0),
		Connected:       c.IsConnected(),
		Reconnecting:    c.reconnecting.Load(),
	}
}

// Close shuts the client down and waits for its goroutines to exit.
// Safe to call multiple times.
func (c *Client) Close() error {
	c.stopOnce.Do(func() {
		close(c.done)

		c.connMu.Lock()
		c.connected = false
		if c.conn != nil {
			c.conn.Close()
		}
		c.connMu.Unlock()
	})

	c.wg.Wait()
	return nil
}

// isClosed reports whether Close has been called.
func (c *Client) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// receiveLoop reads frames from the transceiver until shutdown. Corrupt
// frames are skipped; connection loss triggers reconnection.
func (c *Client) receiveLoop() {
	defer c.wg.Done()

	for {
		if c.isClosed() {
			return
		}

		c.connMu.Lock()
		reader := c.reader
		c.connMu.Unlock()

		p, err := readFrame(reader)
		if err != nil {
			if errors.Is(err, ErrInvalidFrame) {
				// Noise or desync; the reader resyncs on the next delimiter.
				c.errorsTotal.Add(1)
				c.logDebug("skipping corrupt frame", "error", err)
				continue
			}
			if c.isClosed() {
				return
			}
			c.handleDisconnect(err)
			if !c.reconnect() {
				return
			}
			continue
		}

		c.payloadsRx.Add(1)
		c.lastActivity.Store(time.Now().Unix())

		select {
		case c.dispatchQueue <- p:
		default:
			// Queue full; drop rather than stall the serial reader.
			c.payloadsDropped.Add(1)
			c.errorsTotal.Add(1)
			c.logWarn("dispatch queue full, dropping payload")
		}
	}
}

// dispatchLoop delivers queued payloads to the callback, one at a time.
func (c *Client) dispatchLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case p := <-c.dispatchQueue:
			c.callbackMu.RLock()
			callback := c.onPayload
			c.callbackMu.RUnlock()

			if callback == nil {
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logError("payload callback panic", fmt.Errorf("%v", r))
					}
				}()
				callback(p)
			}()
		}
	}
}

// handleDisconnect marks the connection lost.
func (c *Client) handleDisconnect(err error) {
	c.errorsTotal.Add(1)

	c.connMu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.connMu.Unlock()

	if wasConnected {
		c.logWarn("connection lost, will attempt reconnection", "error", err)
	}
}

// reconnect re-establishes the transceiver connection with exponential
// backoff. Returns false if shutdown was signalled.
func (c *Client) reconnect() bool {
	c.reconnecting.Store(true)
	defer c.reconnecting.Store(false)

	backoff := c.cfg.ReconnectInterval

	for attempt := 1; ; attempt++ {
		select {
		case <-c.done:
			return false
		case <-time.After(backoff):
		}

		c.logInfo("attempting reconnection", "attempt", attempt, "backoff", backoff.String())

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.connMu.Unlock()

		conn, err := openConnection(context.Background(), c.cfg)
		if err != nil {
			c.logError("reconnect failed", err)
			c.errorsTotal.Add(1)

			backoff = time.Duration(float64(backoff) * 1.5)
			if backoff > maxReconnectInterval {
				backoff = maxReconnectInterval
			}
			continue
		}

		c.connMu.Lock()
		c.conn = conn
		c.reader = bufio.NewReader(conn)
		c.connected = true
		c.connMu.Unlock()

		c.reconnectsTotal.Add(1)
		c.logInfo("reconnected", "connection", c.cfg.Connection)
		return true
	}
}

// logDebug logs at debug level if a logger is set.
func (c *Client) logDebug(msg string, keysAndValues ...any) {
	if l := c.getLogger(); l != nil {
		l.Debug(msg, keysAndValues...)
	}
}

// logInfo logs at info level if a logger is set.
func (c *Client) logInfo(msg string, keysAndValues ...any) {
	if l := c.getLogger(); l != nil {
		l.Info(msg, keysAndValues...)
	}
}

// logWarn logs at warn level if a logger is set.
func (c *Client) logWarn(msg string, keysAndValues ...any) {
	if l := c.getLogger(); l != nil {
		l.Warn(msg, keysAndValues...)
	}
}

// logError logs an error if a logger is set.
func (c *Client) logError(msg string, err error) {
	if l := c.getLogger(); l != nil {
		l.Error(msg, "error", err)
	}
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}
