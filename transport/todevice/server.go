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
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sage-x-project/sas-verify/internal/metrics"
	"github.com/sage-x-project/sas-verify/internal/verifylog"
)

// Handler processes a single inbound envelope. A non-nil error is reported
// back to the sender as an ack failure but never closes the connection.
type Handler func(ctx context.Context, env *Envelope) error

// Server accepts WebSocket connections and dispatches inbound envelopes to
// a Handler, the to-device analogue of sasstate.Flow's transition methods.
type Server struct {
	handler      Handler
	upgrader     websocket.Upgrader
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxEventAge  time.Duration
	logger       verifylog.Logger

	connections map[*websocket.Conn]bool
	connMu      sync.RWMutex
}

// NewServer creates a to-device WebSocket server dispatching to handler.
func NewServer(handler Handler) *Server {
	return &Server{
		handler: handler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		readTimeout:  60 * time.Second,
		writeTimeout: 30 * time.Second,
		maxEventAge:  5 * time.Minute,
		logger:       verifylog.GetDefaultLogger(),
		connections:  make(map[*websocket.Conn]bool),
	}
}

// SetLogger overrides the server's logger.
func (s *Server) SetLogger(l verifylog.Logger) { s.logger = l }

// Handler returns an http.Handler that upgrades to WebSocket and serves
// inbound envelopes for the lifetime of the connection.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, fmt.Sprintf("websocket upgrade failed: %v", err), http.StatusBadRequest)
			return
		}

		s.addConnection(conn)
		defer s.removeConnection(conn)
		defer func() { _ = conn.Close() }()

		s.serveConnection(r.Context(), conn)
	})
}

func (s *Server) serveConnection(ctx context.Context, conn *websocket.Conn) {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return
		}

		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("to-device read failed", verifylog.Error(err))
			}
			return
		}

		start := time.Now()
		err := s.handler(ctx, &env)
		metrics.ContentProcessingDuration.Observe(time.Since(start).Seconds())
		metrics.ContentSize.Observe(float64(len(env.Content)))

		status := "success"
		if err != nil {
			status = "failure"
			s.logger.Warn("to-device handler failed",
				verifylog.String("type", string(env.Type)),
				verifylog.Error(err),
			)
		}
		metrics.ContentsProcessed.WithLabelValues(string(env.Type), status).Inc()

		s.sendAck(conn, err)
	}
}

func (s *Server) sendAck(conn *websocket.Conn, handlerErr error) {
	ack := ackMessage{OK: handlerErr == nil}
	if handlerErr != nil {
		ack.Error = handlerErr.Error()
	}

	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return
	}
	if err := conn.WriteJSON(ack); err != nil {
		s.logger.Warn("to-device ack write failed", verifylog.Error(err))
	}
}

func (s *Server) addConnection(conn *websocket.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.connections[conn] = true
}

func (s *Server) removeConnection(conn *websocket.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.connections, conn)
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.connections)
}

// Close closes all active connections.
func (s *Server) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	for conn := range s.connections {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
	s.connections = make(map[*websocket.Conn]bool)
	return nil
}

type ackMessage struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
