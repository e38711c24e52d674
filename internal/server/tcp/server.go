// Package tcp accepts client connections and runs one handler goroutine per
// connection. It enforces the global and per-IP session limits and bounds
// how long shutdown waits for sessions still in flight.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/vcalc/internal/logging"
	"golang.org/x/sync/semaphore"
)

// Handler serves one accepted connection. It owns conn and should close it
// before returning.
type Handler interface {
	Handle(ctx context.Context, conn net.Conn) error
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(ctx context.Context, conn net.Conn) error

func (f HandlerFunc) Handle(ctx context.Context, conn net.Conn) error {
	return f(ctx, conn)
}

// Options tunes a Server. Zero limits mean unlimited.
type Options struct {
	MaxSessions      int
	MaxSessionsPerIP int
	// ShutdownTimeout bounds how long Serve waits for running sessions once
	// the listener is closed. Sessions still running after it are abandoned:
	// their connections are closed. Zero abandons them at once.
	ShutdownTimeout time.Duration
}

// Server is the connection dispatcher.
type Server struct {
	address string
	handler Handler
	logger  logging.Logger
	opts    Options

	sessions *semaphore.Weighted
	limiter  *ConnectionLimiter

	mu    sync.Mutex
	addr  net.Addr
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer returns a Server that will listen on address.
func NewServer(address string, h Handler, l logging.Logger, opts Options) *Server {
	s := &Server{
		address: address,
		handler: h,
		logger:  l.With("module", "tcp_server"),
		opts:    opts,
		limiter: NewConnectionLimiter(opts.MaxSessionsPerIP),
		conns:   make(map[net.Conn]struct{}),
	}
	if opts.MaxSessions > 0 {
		s.sessions = semaphore.NewWeighted(int64(opts.MaxSessions))
	}
	return s
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes ln and
// waits for running sessions as described by Options.ShutdownTimeout.
// Failed accepts are retried with a capped backoff. It returns nil after a
// cancelled ctx and an error if ln is closed underneath it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		s.logger.Info(ctx, "Stopping TCP server...")
		_ = ln.Close()
	})
	defer stop()

	s.logger.Info(ctx, "Starting TCP server", "address", ln.Addr().String())

	// sessions run to completion on their own deadlines, not on ctx
	sessionCtx := context.WithoutCancel(ctx)

	var serveErr error
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				serveErr = fmt.Errorf("accept: %w", err)
				break
			}
			// EMFILE and friends clear up once sessions finish
			delay = nextAcceptDelay(delay)
			s.logger.Warn(ctx, "accept failed, retrying", "error", err, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		delay = 0
		s.dispatch(sessionCtx, conn)
	}

	_ = ln.Close()
	s.shutdown(ctx)
	return serveErr
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	return min(2*d, maxAcceptDelay)
}

// Addr returns the listener address once Serve has started, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ActiveSessions returns the number of connections being served.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) dispatch(ctx context.Context, conn net.Conn) {
	ip := remoteIP(conn.RemoteAddr())

	if !s.limiter.TryConnect(ip) {
		s.refuse(ctx, conn, "per-ip session limit reached")
		return
	}
	if s.sessions != nil && !s.sessions.TryAcquire(1) {
		s.limiter.Disconnect(ip)
		s.refuse(ctx, conn, "session limit reached")
		return
	}

	remote := conn.RemoteAddr().String()
	s.track(conn)
	s.logger.Debug(ctx, "connection accepted", "remote", remote)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.limiter.Disconnect(ip)
			if s.sessions != nil {
				s.sessions.Release(1)
			}
			s.untrack(conn)
		}()

		if err := s.handler.Handle(ctx, conn); err != nil {
			s.logger.Debug(ctx, "session ended with error", "remote", remote, "error", err)
		}
		_ = conn.Close()
	}()
}

func (s *Server) refuse(ctx context.Context, conn net.Conn, reason string) {
	s.logger.Warn(ctx, "connection refused", "remote", conn.RemoteAddr().String(), "reason", reason)
	_ = conn.Close()
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.opts.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info(ctx, "TCP server stopped")
		return
	case <-timer.C:
	}

	s.mu.Lock()
	abandoned := make([]string, 0, len(s.conns))
	for conn := range s.conns {
		abandoned = append(abandoned, conn.RemoteAddr().String())
		_ = conn.Close()
	}
	s.mu.Unlock()

	if len(abandoned) > 0 {
		s.logger.Warn(ctx, "abandoned sessions", "count", len(abandoned), "remotes", abandoned)
	}
	<-done
	s.logger.Info(ctx, "TCP server stopped")
}
