// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/songbridge/songbridge/lib/clock"
	"github.com/songbridge/songbridge/lib/netutil"
	"github.com/songbridge/songbridge/protocol"
)

const (
	// pollInterval is the accept and read deadline. Blocking calls
	// wake this often to check the running flag, so Stop is never
	// stuck behind an idle socket.
	pollInterval = 1 * time.Second

	// drainTimeout bounds how long Stop waits for the accept loop
	// and for the connection handlers, separately, before moving on.
	drainTimeout = 3 * time.Second

	readBufferSize = 8192
)

// DispatchFunc executes one decoded request and returns the response
// envelope. The bridge never inspects the outcome; every result is
// written back verbatim.
type DispatchFunc func(ctx context.Context, request protocol.Request) protocol.Response

// Server accepts controller connections and pumps their requests
// through the dispatch function.
type Server struct {
	// ListenAddr is the TCP address to listen on
	// (e.g. "127.0.0.1:9877").
	ListenAddr string

	// Dispatch executes decoded requests. Required.
	Dispatch DispatchFunc

	// Logger receives structured log output. If nil, slog.Default()
	// is used. Per-connection events are logged at Debug level;
	// lifecycle events and failures at Info/Warn.
	Logger *slog.Logger

	// Clock drives the bounded shutdown waits. Defaults to the real
	// clock.
	Clock clock.Clock

	listener   net.Listener
	acceptDone chan struct{}

	mu          sync.Mutex
	running     bool
	connections map[net.Conn]struct{}

	handlers sync.WaitGroup
}

// logger returns the configured logger or the default.
func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) clock() clock.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clock.Real()
}

// Start binds the listener and begins accepting in the background. It
// returns once the socket is bound, or an error if binding fails.
func (s *Server) Start(ctx context.Context) error {
	if s.ListenAddr == "" {
		return fmt.Errorf("bridge: ListenAddr is required")
	}
	if s.Dispatch == nil {
		return fmt.Errorf("bridge: Dispatch is required")
	}

	listener, err := net.Listen("tcp", s.ListenAddr)
	if err != nil {
		return fmt.Errorf("bridge: failed to listen on %s: %w", s.ListenAddr, err)
	}

	s.listener = listener
	s.acceptDone = make(chan struct{})
	s.mu.Lock()
	s.running = true
	s.connections = make(map[net.Conn]struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.acceptDone)
		s.acceptLoop(ctx)
	}()

	s.logger().Info("server started", "listen_addr", listener.Addr().String())
	return nil
}

// Addr returns the listener's address, useful when binding to port 0.
// Returns nil if the server has not been started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the server down: no new connections are accepted, live
// connections are closed out from under their readers, and the
// handler goroutines get a bounded grace period to drain.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for connection := range s.connections {
		connection.Close()
	}
	s.mu.Unlock()

	s.listener.Close()
	s.waitBounded(s.acceptDone, "accept loop")

	handlersDone := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(handlersDone)
	}()
	s.waitBounded(handlersDone, "connection handlers")

	s.logger().Info("server stopped")
}

// waitBounded waits for ch to close, giving up after drainTimeout. A
// handler stuck past the deadline is abandoned rather than held onto.
func (s *Server) waitBounded(ch <-chan struct{}, what string) {
	select {
	case <-ch:
	case <-s.clock().After(drainTimeout):
		s.logger().Warn("shutdown wait timed out", "waiting_for", what)
	}
}

func (s *Server) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// track adds the connection to the registry. It reports false when
// the server is already stopping, in which case the connection must
// be dropped.
func (s *Server) track(connection net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.connections[connection] = struct{}{}
	return true
}

func (s *Server) untrack(connection net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connection)
}

// acceptLoop accepts connections until the server stops. The deadline
// keeps Accept from blocking across a shutdown.
func (s *Server) acceptLoop(ctx context.Context) {
	var connectionCount int64

	for s.isRunning() {
		if deadliner, ok := s.listener.(interface{ SetDeadline(time.Time) error }); ok {
			deadliner.SetDeadline(time.Now().Add(pollInterval))
		}
		connection, err := s.listener.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if !s.isRunning() || netutil.IsExpectedCloseError(err) {
				return
			}
			s.logger().Warn("accept failed", "error", err)
			continue
		}

		if !s.track(connection) {
			connection.Close()
			return
		}

		connectionCount++
		connectionID := connectionCount
		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			s.handleConnection(ctx, connection, connectionID)
		}()
	}
}

// handleConnection reads newline-delimited requests off one socket
// and answers each in order. It returns when the peer disconnects,
// the server stops, or the connection overruns the frame size cap.
func (s *Server) handleConnection(ctx context.Context, connection net.Conn, connectionID int64) {
	logger := s.logger().With("connection_id", connectionID)
	defer func() {
		s.untrack(connection)
		connection.Close()
		logger.Debug("connection closed")
	}()
	logger.Debug("connection accepted", "remote_addr", connection.RemoteAddr())

	decoder := protocol.NewDecoder(logger)
	buffer := make([]byte, readBufferSize)

	for s.isRunning() {
		connection.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := connection.Read(buffer)
		if n > 0 {
			decoder.Feed(buffer[:n])
			if !s.serveBuffered(ctx, connection, decoder, logger) {
				return
			}
		}
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if !netutil.IsExpectedCloseError(err) {
				logger.Warn("read failed", "error", err)
			}
			return
		}
	}
}

// serveBuffered dispatches every complete request currently framed in
// the decoder. It reports false when the connection must close: a
// frame overrun or a failed write.
func (s *Server) serveBuffered(ctx context.Context, connection net.Conn, decoder *protocol.Decoder, logger *slog.Logger) bool {
	for {
		request, err := decoder.Next()
		if err != nil {
			// Overrun is fatal for the connection, but the
			// controller still gets told why.
			logger.Warn("dropping connection", "error", err)
			s.writeResponse(connection, protocol.Error("Request too large (>1MB)"), logger)
			return false
		}
		if request == nil {
			return true
		}

		response := s.Dispatch(ctx, *request)
		if !s.writeResponse(connection, response, logger) {
			return false
		}
	}
}

func (s *Server) writeResponse(connection net.Conn, response protocol.Response, logger *slog.Logger) bool {
	payload, err := protocol.EncodeResponse(response)
	if err != nil {
		// A handler returned something JSON cannot represent.
		// Replace the envelope rather than going silent.
		logger.Error("response not encodable", "error", err)
		payload, _ = protocol.EncodeResponse(protocol.Error("internal error encoding response"))
	}
	if _, err := connection.Write(payload); err != nil {
		if !netutil.IsExpectedCloseError(err) {
			logger.Warn("write failed", "error", err)
		}
		return false
	}
	return true
}
