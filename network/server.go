package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"little-realm/server/logger"
)

const shutdownGrace = 5 * time.Second

// Server accepts connections on the TCP and WebSocket transports and runs a
// Session for each.
type Server struct {
	proc           Processor
	clients        *ClientManager
	timeout        time.Duration
	maxMessageSize int64
	upgrader       websocket.Upgrader

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// NewServer creates a server that hands requests to proc.
func NewServer(proc Processor, handshakeTimeout time.Duration, maxMessageSize int64) *Server {
	return &Server{
		proc:           proc,
		clients:        NewClientManager(),
		timeout:        handshakeTimeout,
		maxMessageSize: maxMessageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeTCP accepts stream connections on ln until ctx is cancelled.
func (s *Server) ServeTCP(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logger.Log.WithField("addr", ln.Addr().String()).Info("TCP listener started")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				logger.Log.WithError(err).Warn("Accept timed out")
				continue
			}
			return err
		}
		s.run(ctx, NewStreamConn(conn, s.maxMessageSize))
	}
}

// Handler returns the HTTP routes: the WebSocket endpoint and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// ServeWebSocket serves Handler on ln until ctx is cancelled.
func (s *Server) ServeWebSocket(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.timeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("HTTP shutdown failed")
		}
	}()

	logger.Log.WithField("addr", ln.Addr().String()).Info("WebSocket listener started")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.track() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to upgrade connection")
		return
	}
	s.serve(r.Context(), NewWSConn(ws, s.maxMessageSize))
}

// Shutdown refuses new connections, closes every live one and waits for their
// sessions to end.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.clients.CloseAll()
	s.wg.Wait()
}

// track registers a connection with the shutdown wait group. It fails once
// Shutdown has begun.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Server) run(ctx context.Context, conn Conn) {
	if !s.track() {
		conn.Close()
		return
	}
	go func() {
		defer s.wg.Done()
		s.serve(ctx, conn)
	}()
}

func (s *Server) serve(ctx context.Context, conn Conn) {
	session := NewSession(uuid.NewString(), conn, s.proc, s.timeout)
	s.clients.AddClient(session)
	defer s.clients.RemoveClient(session.ID)
	// CloseAll may already have run between track and AddClient.
	if s.isClosing() {
		session.Close()
	}
	session.Serve(ctx)
}
