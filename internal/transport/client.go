// Package transport maintains the websocket session with the dashboard
// server: dialing, the read loop, reconnection policy and outbound sends.
// Decoded frames and connection status changes are delivered on one channel
// so the consumer sees a single ordered event stream.
package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coindeck/internal/protocol"
	"coindeck/pkg/retrier"
)

// ErrAuthRejected is returned by Run when the server closes the session with
// a policy violation. The caller should send the user back to login instead
// of reconnecting.
var ErrAuthRejected = errors.New("authentication rejected by server")

// ErrServerGone is returned when the server closes with "going away"; no
// reconnect is attempted.
var ErrServerGone = errors.New("server going away")

// Status is a connection state change, delivered on the events channel
// alongside decoded frames.
type Status int

const (
	StatusConnected Status = iota
	StatusDisconnected
	StatusAuthRejected
)

// DefaultReconnectDelay is the pause between reconnect attempts.
const DefaultReconnectDelay = 3 * time.Second

const authCookie = "auth_token"

// Client is a reconnecting websocket session.
type Client struct {
	url    string
	token  string
	delay  time.Duration
	logger *zap.Logger

	events chan any

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a client for the given websocket endpoint. A zero delay falls
// back to DefaultReconnectDelay.
func New(url, token string, delay time.Duration, logger *zap.Logger) *Client {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:    url,
		token:  token,
		delay:  delay,
		logger: logger,
		events: make(chan any, 256),
	}
}

// Events returns the channel carrying decoded inbound frames and Status
// values. It is closed when Run returns.
func (c *Client) Events() <-chan any {
	return c.events
}

// Run dials the server and pumps frames until the context ends, the server
// rejects authentication, or it announces it is going away. Unexpected
// disconnects reconnect after a fixed delay.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)

	r := retrier.New(
		retrier.WithFixedInterval(c.delay),
		retrier.WithMaxRetries(retrier.Unlimited),
	)
	return r.Do(ctx, func(ctx context.Context) error {
		err := c.session(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return retrier.Permanent(err)
		case errors.Is(err, ErrAuthRejected), errors.Is(err, ErrServerGone):
			return retrier.Permanent(err)
		}
		c.logger.Warn("connection lost, will reconnect",
			zap.String("url", c.url),
			zap.Duration("delay", c.delay),
			zap.Error(err))
		return err
	})
}

// session runs one dial-read cycle and classifies how it ended.
func (c *Client) session(ctx context.Context) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Cookie", authCookie+"="+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return errors.Wrap(err, "dial")
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.deliver(ctx, StatusConnected)

	err = c.readLoop(ctx, conn)

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
	conn.Close()

	err = classifyClose(err)
	switch {
	case errors.Is(err, ErrAuthRejected):
		c.deliver(ctx, StatusAuthRejected)
	default:
		c.deliver(ctx, StatusDisconnected)
	}
	return err
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// unblock ReadMessage when the context ends
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// a bad frame never takes the session down
			c.logger.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}
		c.deliver(ctx, msg)
	}
}

func (c *Client) deliver(ctx context.Context, event any) {
	select {
	case c.events <- event:
	case <-ctx.Done():
	}
}

// classifyClose maps websocket close codes onto the reconnect policy:
// policy violation means the token was rejected, going away means the server
// is shutting the session down for good. Everything else is retryable.
func classifyClose(err error) error {
	if err == nil {
		return nil
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.ClosePolicyViolation:
			return ErrAuthRejected
		case websocket.CloseGoingAway:
			return ErrServerGone
		}
	}
	return err
}

// Send marshals v and writes it to the live connection. It reports false
// when disconnected or when the write fails; the caller surfaces that to
// the user instead of queueing.
func (c *Client) Send(v any) bool {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return false
	}
	if err := conn.WriteJSON(v); err != nil {
		c.logger.Warn("outbound write failed", zap.Error(err))
		return false
	}
	return true
}
