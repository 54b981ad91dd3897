package instance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/dshills/stormwin/internal/window"
)

// Client sends requests to a running instance.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
	closed bool
}

// Dial connects to the instance listening on path. It returns an error
// wrapping ErrNotRunning when nobody is listening.
func Dial(ctx context.Context, path string) (*Client, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", path)
		},
		HandshakeTimeout: 5 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, "ws://stormwin/", nil)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("%w at %s", ErrNotRunning, path)
		}
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	return &Client{conn: conn}, nil
}

// Call sends one request and waits for its response.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (gjson.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return gjson.Result{}, ErrClosed
	}

	c.nextID++
	id := c.nextID
	msg, err := encodeRequest(id, method, params)
	if err != nil {
		return gjson.Result{}, err
	}

	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return gjson.Result{}, fmt.Errorf("sending %s: %w", method, err)
	}

	for {
		_, resp, err := c.conn.ReadMessage()
		if err != nil {
			return gjson.Result{}, fmt.Errorf("reading %s response: %w", method, err)
		}
		if gjson.GetBytes(resp, "id").Int() != id {
			continue
		}
		return decodeResponse(resp)
	}
}

// Open asks the instance to open paths.
func (c *Client) Open(ctx context.Context, mode string, paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	_, err := c.Call(ctx, MethodOpen, map[string]any{"mode": mode, "paths": paths})
	return err
}

// SetTheme asks the instance to switch every window to name.
func (c *Client) SetTheme(ctx context.Context, name string) error {
	_, err := c.Call(ctx, MethodTheme, map[string]any{"name": name})
	return err
}

// Windows lists the instance's windows.
func (c *Client) Windows(ctx context.Context) ([]window.Info, error) {
	result, err := c.Call(ctx, MethodWindows, nil)
	if err != nil {
		return nil, err
	}
	var infos []window.Info
	if err := json.Unmarshal([]byte(result.Raw), &infos); err != nil {
		return nil, fmt.Errorf("decoding windows: %w", err)
	}
	return infos, nil
}

// Ping checks that the instance answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, MethodPing, nil)
	return err
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
