// Package transport connects to a pulse-agent websocket endpoint, decodes the
// snapshot stream, and reports connection lifecycle events. It reconnects
// according to a retry.Policy until its context is cancelled.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gitlab.com/tinyland/lab/pulse-view/metrics"
	"gitlab.com/tinyland/lab/pulse-view/retry"
)

const (
	writeWait        = 10 * time.Second
	defaultPongWait  = 60 * time.Second
	handshakeTimeout = 5 * time.Second
)

// MaxFrameSize is the read limit of a client connection. Agents keep their
// batched frames below it.
const MaxFrameSize = 64 * 1024

// Handler receives the events of a connection. Calls are made sequentially
// from the goroutine running Client.Run.
type Handler interface {
	OnSnapshot(metrics.Snapshot)
	OnConnectionStateChange(metrics.ConnectionState)
	// OnStreamReset is called once per successful connection, before its
	// first snapshot.
	OnStreamReset()
}

// Options configures a Client.
type Options struct {
	// URL is the websocket endpoint, e.g. ws://host:8080/ws.
	URL string
	// Retry is the reconnect policy. The zero value waits retry.DefaultDelay.
	Retry retry.Policy
	// PongWait is how long a silent connection stays open. The agent pings
	// more often than this.
	PongWait time.Duration
	// Dialer overrides the default websocket dialer.
	Dialer *websocket.Dialer
	// Logger receives connection and decode events. Nil discards them.
	Logger *slog.Logger
}

// Client is a reconnecting snapshot stream reader.
type Client struct {
	opts    Options
	handler Handler
	logger  *slog.Logger
	dialer  *websocket.Dialer

	mu    sync.Mutex
	state metrics.ConnectionState
	stats Stats
}

// Stats counts stream activity since the client was created.
type Stats struct {
	Connects  int
	Delivered int
	Dropped   int
}

// New creates a client. It does not dial until Run is called.
func New(opts Options, h Handler) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaultPongWait
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	}
	return &Client{
		opts:    opts,
		handler: h,
		logger:  logger.With("url", opts.URL),
		dialer:  dialer,
		state:   metrics.StateConnecting,
	}
}

// State returns the last reported connection state.
func (c *Client) State() metrics.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a copy of the activity counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Run connects, streams snapshots to the handler, and reconnects after every
// failure. It returns ctx.Err() once ctx is done.
func (c *Client) Run(ctx context.Context) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.setState(metrics.StateConnecting)
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("dial failed", "attempt", attempt+1, "error", err)
			c.setState(metrics.StateError)
		} else {
			attempt = 0
			c.mu.Lock()
			c.stats.Connects++
			c.mu.Unlock()

			c.logger.Info("connected")
			c.setState(metrics.StateConnected)
			c.handler.OnStreamReset()

			err = c.stream(ctx, conn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Info("connection closed", "error", err)
			c.setState(metrics.StateDisconnected)
		}

		wait := c.opts.Retry.Next(attempt)
		c.logger.Debug("waiting before reconnect", "attempt", attempt+1, "delay", wait)
		if err := c.opts.Retry.Wait(ctx, attempt); err != nil {
			return err
		}
		attempt++
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transport: dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("transport: dial: %w", err)
	}
	return conn, nil
}

// stream reads frames until the connection fails or ctx is done.
func (c *Client) stream(ctx context.Context, conn *websocket.Conn) error {
	sessionCtx, cancel := context.WithCancel(ctx)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-sessionCtx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}()
	defer func() {
		cancel()
		<-closed
	}()

	conn.SetReadLimit(MaxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", "error", err)
			}
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))

		snaps, errs := DecodeFrame(frame)
		for _, err := range errs {
			c.logger.Warn("dropping snapshot", "error", err)
		}
		c.mu.Lock()
		c.stats.Delivered += len(snaps)
		c.stats.Dropped += len(errs)
		c.mu.Unlock()

		for _, s := range snaps {
			c.handler.OnSnapshot(s)
		}
	}
}

func (c *Client) setState(s metrics.ConnectionState) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()
	if changed {
		c.logger.Debug("state", "state", s.String())
	}
	c.handler.OnConnectionStateChange(s)
}
