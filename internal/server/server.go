// Package server exposes the alarm daemon to clients: a JSON-RPC 2.0
// endpoint on /rpc and a WebSocket change feed on /events, both served
// over a unix socket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/groupalarm/alarmd/pkg/logger"
)

// Server owns the unix socket listener and the HTTP mux in front of the
// RPC bridge and the event feed.
type Server struct {
	socketPath string
	rpc        *RPCServer
	events     *EventServer
	log        logger.Logger

	mu       sync.Mutex
	listener net.Listener
	httpSrv  *http.Server
}

// New creates a Server. Start must be called to begin listening.
func New(socketPath string, rpc *RPCServer, events *EventServer, l logger.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		rpc:        rpc,
		events:     events,
		log:        l,
	}
}

// Start listens on the unix socket and serves until the context is
// cancelled or Shutdown is called. A stale socket file from a previous
// run is removed first.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	_ = os.Remove(s.socketPath)

	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: s.socketPath, Net: "unix"})
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	_ = os.Chmod(s.socketPath, 0o600)

	mux := http.NewServeMux()
	mux.Handle("/rpc", s.rpc.bridge)
	mux.Handle("/events", s.events)

	srv := &http.Server{Handler: mux}

	s.mu.Lock()
	s.listener = l
	s.httpSrv = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	s.log.Info("listening on %s", s.socketPath)
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops serving, closes the RPC bridge and removes the socket
// file. Safe to call more than once.
func (s *Server) Shutdown() {
	s.mu.Lock()
	srv := s.httpSrv
	s.httpSrv = nil
	s.listener = nil
	s.mu.Unlock()
	if srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("http shutdown: %v", err)
		srv.Close()
	}
	s.rpc.Close()

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		s.log.Error("remove socket file: %v", err)
	}
}
