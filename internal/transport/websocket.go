package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roomsync/internal/shared"
	"github.com/gorilla/websocket"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultPingPeriod  = 30 * time.Second
	defaultWriteWait   = 10 * time.Second
	defaultSendBuffer  = 64
	defaultEventBuffer = 64
	maxMessageSize     = 1 << 20
)

// DialOptions configures a [WebSocketClient].
type DialOptions struct {
	URL         string
	DeviceID    string
	TokenSource oauth2.TokenSource // optional; adds an Authorization header
	Dialer      *websocket.Dialer  // defaults to [websocket.DefaultDialer]
	Logger      *log.Logger
	PingPeriod  time.Duration
	WriteWait   time.Duration
	RateLimit   float64 // commands per second; 0 disables limiting
	Burst       int
	SendBuffer  int
	EventBuffer int
}

// DialOptionsFromConfig maps the config file onto [DialOptions].
func DialOptionsFromConfig(cfg *shared.Config, ts oauth2.TokenSource, logger *log.Logger) DialOptions {
	return DialOptions{
		URL:         cfg.Server.SocketURL,
		DeviceID:    cfg.Server.DeviceID,
		TokenSource: ts,
		Logger:      logger,
		PingPeriod:  cfg.Server.PingPeriod,
		WriteWait:   cfg.Server.WriteWait,
		RateLimit:   cfg.Sync.OutboundRate,
		Burst:       cfg.Sync.OutboundBurst,
		SendBuffer:  cfg.Sync.SendBuffer,
	}
}

// WebSocketClient is a [Transport] over a gorilla/websocket connection.
//
// A read pump decodes envelopes onto the events channel; a write pump drains the send buffer through a rate limiter
// and keeps the connection alive with pings.
type WebSocketClient struct {
	conn    *websocket.Conn
	send    chan []byte
	events  chan Event
	limiter *rate.Limiter
	logger  *log.Logger

	pingPeriod time.Duration
	writeWait  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// Dial connects to the room server and starts the pumps. The connection lives until ctx is cancelled or Close is called.
func Dial(ctx context.Context, opts DialOptions) (*WebSocketClient, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("%w: socket url", shared.ErrMissingArgument)
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = defaultPingPeriod
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = defaultWriteWait
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}
	if opts.DeviceID == "" {
		opts.DeviceID = shared.GenerateID()
	}

	header := http.Header{}
	header.Set("X-Device-Id", opts.DeviceID)
	if opts.TokenSource != nil {
		tok, err := opts.TokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMissingCredentials, err)
		}
		header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	}

	conn, resp, err := opts.Dialer.DialContext(ctx, opts.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial %s: %s", shared.ErrServiceUnavailable, opts.URL, resp.Status)
		}
		return nil, fmt.Errorf("%w: dial %s: %v", shared.ErrServiceUnavailable, opts.URL, err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	c := &WebSocketClient{
		conn:       conn,
		send:       make(chan []byte, opts.SendBuffer),
		events:     make(chan Event, opts.EventBuffer),
		limiter:    limiter,
		logger:     shared.WithLogger(opts.Logger, "component", "transport"),
		pingPeriod: opts.PingPeriod,
		writeWait:  opts.WriteWait,
	}
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(2)
	go c.readPump()
	go c.writePump()

	c.logger.Info("connected", "url", opts.URL, "device", opts.DeviceID)
	return c, nil
}

// Events implements [Transport].
func (c *WebSocketClient) Events() <-chan Event {
	return c.events
}

// Emit implements [Transport]. It returns [shared.ErrBackpressure] when the send buffer is full.
func (c *WebSocketClient) Emit(cmd Command) error {
	b, err := cmd.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", cmd.Type, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return shared.ErrTransportClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", shared.ErrBackpressure, cmd.Type)
	}
}

// Close stops both pumps and closes the connection. It is safe to call more than once.
func (c *WebSocketClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *WebSocketClient) pongWait() time.Duration {
	return c.pingPeriod * 10 / 9
}

func (c *WebSocketClient) readPump() {
	defer c.wg.Done()
	defer close(c.events)
	defer c.cancel()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Error("read failed", "err", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
			c.logger.Warn("bad envelope", "err", err, "size", len(data))
			continue
		}

		select {
		case c.events <- ev:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	defer c.wg.Done()
	defer c.conn.Close()
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(c.writeWait))
			return
		case data := <-c.send:
			if err := c.limiter.Wait(c.ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					c.logger.Warn("rate limiter", "err", err)
				}
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("write failed", "err", err)
				c.cancel()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error("ping failed", "err", err)
				c.cancel()
				return
			}
		}
	}
}
