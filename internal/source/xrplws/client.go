// Package xrplws maintains the websocket subscription to an XRPL node and
// delivers parsed stream messages in arrival order. Reconnect policy lives
// here; the normalization engine never sees connection state.
package xrplws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	readWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	// Transactions with large metadata blocks run well past the usual
	// frame sizes.
	maxMessageSize = 4 * 1024 * 1024

	maxBackoff = 30 * time.Second
)

// Handler consumes one parsed stream message. Errors are per-message: the
// client logs them and keeps reading.
type Handler func(ctx context.Context, msg map[string]any) error

// Client subscribes to one node's streams and redelivers messages to a
// handler, reconnecting with backoff on connection loss.
type Client struct {
	feedID  string
	url     string
	streams []string
	dialer  *websocket.Dialer
	log     *slog.Logger

	onReconnect func()

	mu        sync.Mutex
	connected bool
	lastMsg   time.Time
}

// New builds a client for one feed.
func New(feedID, url string, streams []string, log *slog.Logger) *Client {
	return &Client{
		feedID:  feedID,
		url:     url,
		streams: streams,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
		log: log,
	}
}

// OnReconnect registers a hook invoked on every reconnect attempt.
func (c *Client) OnReconnect(fn func()) {
	c.onReconnect = fn
}

// Run connects, subscribes, and delivers messages until ctx is done. The
// only normal return is ctx cancellation; connection loss reconnects with
// exponential backoff and a fresh subscription.
func (c *Client) Run(ctx context.Context, h Handler) error {
	backoff := time.Second
	for {
		err := c.runOnce(ctx, h)
		c.setConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("feed connection lost", "feed", c.feedID, "error", err, "retry_in", backoff)
		if c.onReconnect != nil {
			c.onReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

func (c *Client) runOnce(ctx context.Context, h Handler) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	if err := c.subscribe(conn); err != nil {
		return err
	}
	c.setConnected(true)
	c.log.Info("feed subscribed", "feed", c.feedID, "streams", c.streams)

	// Close the connection when ctx is cancelled so the blocked read
	// returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	go c.pingLoop(conn, done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if kind != websocket.TextMessage {
			continue
		}
		c.touch()

		var msg map[string]any
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Warn("undecodable stream message", "feed", c.feedID, "error", err)
			continue
		}
		if err := h(ctx, msg); err != nil {
			c.log.Error("message handler failed", "feed", c.feedID, "error", err)
		}
	}
}

func (c *Client) subscribe(conn *websocket.Conn) error {
	req := map[string]any{
		"id":      c.feedID + "-subscribe",
		"command": "subscribe",
		"streams": c.streams,
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (c *Client) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// Connected reports whether the client currently holds a subscription.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastMsg = time.Now()
	c.mu.Unlock()
}

// LastMessage returns when the feed last delivered a message.
func (c *Client) LastMessage() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMsg
}

func nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// ServerInfo dials a node, issues a server_info call, and returns the
// reported build version. Used for config validation pings.
func ServerInfo(ctx context.Context, url string) (string, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	req := map[string]any{"id": 1, "command": "server_info"}
	if err := conn.WriteJSON(req); err != nil {
		return "", fmt.Errorf("server_info request: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	var resp struct {
		Status string `json:"status"`
		Result struct {
			Info struct {
				BuildVersion string `json:"build_version"`
			} `json:"info"`
		} `json:"result"`
	}
	if err := conn.ReadJSON(&resp); err != nil {
		return "", fmt.Errorf("server_info response: %w", err)
	}
	if resp.Status != "" && resp.Status != "success" {
		return "", fmt.Errorf("server_info status %q", resp.Status)
	}
	return resp.Result.Info.BuildVersion, nil
}
