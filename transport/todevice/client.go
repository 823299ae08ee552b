// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package todevice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sage-x-project/sas-verify/internal/metrics"
)

// Client sends verification envelopes to a peer device's to-device server
// over a persistent WebSocket connection.
type Client struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	dialTimeout  time.Duration
	writeTimeout time.Duration
	readTimeout  time.Duration

	connected bool
	connMu    sync.RWMutex
}

// NewClient creates a to-device client dialing url on first Send.
func NewClient(url string) *Client {
	return &Client{
		url:          url,
		dialTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
		readTimeout:  10 * time.Second,
	}
}

// Connect establishes the WebSocket connection if not already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	dialer := &websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("to-device dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("to-device dial failed: %w", err)
	}

	c.conn = conn
	c.setConnected(true)
	return nil
}

// Send delivers env and waits for the peer's ack.
func (c *Client) Send(ctx context.Context, env *Envelope) error {
	if err := c.ensureConnected(ctx); err != nil {
		return fmt.Errorf("to-device connect failed: %w", err)
	}

	metrics.ContentSize.Observe(float64(len(env.Content)))

	c.mu.Lock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(env); err != nil {
		c.setConnected(false)
		c.mu.Unlock()
		return fmt.Errorf("send envelope: %w", err)
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("set read deadline: %w", err)
	}
	var ack ackMessage
	err := c.conn.ReadJSON(&ack)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("read ack: %w", err)
	}
	if !ack.OK {
		return fmt.Errorf("peer rejected %s: %s", env.Type, ack.Error)
	}

	return nil
}

func (c *Client) ensureConnected(ctx context.Context) error {
	if c.isConnected() {
		return nil
	}
	return c.Connect(ctx)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := c.conn.Close()
	c.conn = nil
	c.setConnected(false)
	return err
}

func (c *Client) isConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.connected = v
}
