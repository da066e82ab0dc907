package cacheserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/protocol"
)

// ErrServerClosed is returned by Serve after Shutdown.
var ErrServerClosed = errors.New("cacheserver: server closed")

// ErrServerRunning is returned when Serve is called twice.
var ErrServerRunning = errors.New("cacheserver: server already running")

// Metrics receives connection events. *metric.Registry implements it.
type Metrics interface {
	ClientAccepted()
	ClientClosed(byServer bool)
	AddBytesRead(n int)
	CommandRateLimited()
}

type nopMetrics struct{}

func (nopMetrics) ClientAccepted()     {}
func (nopMetrics) ClientClosed(bool)   {}
func (nopMetrics) AddBytesRead(int)    {}
func (nopMetrics) CommandRateLimited() {}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics reports connection events to m.
func WithMetrics(m Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Server accepts cache protocol connections.
type Server struct {
	cfg     *Config
	disp    *dispatch.Dispatcher
	pool    *dispatch.Pool
	logger  *slog.Logger
	metrics Metrics

	gate     *semaphore.Weighted
	conns    *Registry
	limiter  *ipLimiters
	recvPool *protocol.BufferPool
	accPool  *protocol.BufferPool
	entropy  *ulid.MonotonicEntropy

	mu       sync.Mutex
	ln       net.Listener
	cancel   context.CancelFunc
	serving  bool
	shutdown bool
	stopped  chan struct{}

	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a server executing commands through disp. pool drains disp
// and is run by Serve.
func New(cfg *Config, disp *dispatch.Dispatcher, pool *dispatch.Pool, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:      cfg,
		disp:     disp,
		pool:     pool,
		logger:   slog.Default(),
		metrics:  nopMetrics{},
		gate:     semaphore.NewWeighted(int64(cfg.MaxConnections)),
		conns:    NewRegistry(),
		limiter:  newIPLimiters(cfg.RateLimit),
		recvPool: protocol.NewBufferPool(cfg.ReceiveBufferSize),
		accPool:  protocol.NewBufferPool(cfg.BufferSize),
		entropy:  ulid.Monotonic(rand.Reader, 0),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Server) Config() Config { return *s.cfg }

// Connections returns the connection registry.
func (s *Server) Connections() *Registry { return s.conns }

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool { return s.running.Load() }

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ListenAndServe binds cfg.Addr and calls Serve. A bind failure is returned
// immediately.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("cacheserver: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or Shutdown is called.
// It runs the accept loop, the purge loop and the worker pool together and
// returns once all of them and every handler have stopped. The dispatcher
// is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	if s.serving {
		s.mu.Unlock()
		return ErrServerRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.serving = true
	s.ln = ln
	s.cancel = cancel
	s.running.Store(true)
	s.mu.Unlock()

	defer close(s.stopped)
	defer cancel()

	s.logger.Info("cache server listening",
		"address", ln.Addr().String(),
		"max_connections", s.cfg.MaxConnections,
		"workers", s.pool.Size(),
	)

	g, gctx := errgroup.WithContext(ctx)
	stopLn := context.AfterFunc(gctx, func() { _ = ln.Close() })
	defer stopLn()

	g.Go(func() error {
		return s.pool.Run(gctx)
	})
	g.Go(func() error {
		s.purgeLoop(gctx)
		return nil
	})
	g.Go(func() error {
		return s.acceptLoop(gctx, ln)
	})

	err := g.Wait()
	s.running.Store(false)
	s.wg.Wait()
	if n := s.disp.Close(); n > 0 {
		s.logger.Warn("failed pending commands on shutdown", "count", n)
	}
	s.logger.Info("cache server stopped")
	return err
}

// Shutdown stops accepting, cancels every handler and waits for Serve to
// return or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	s.running.Store(false)
	cancel()

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		// The permit is held by the handler and released when it exits.
		if err := s.gate.Acquire(ctx, 1); err != nil {
			return nil
		}

		c, err := ln.Accept()
		if err != nil {
			s.gate.Release(1)
			if !s.running.Load() || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return fmt.Errorf("cacheserver: accept: %w", err)
		}

		h := newHandler(s, ulid.MustNew(ulid.Now(), s.entropy).String(), c)
		s.conns.add(h)
		s.metrics.ClientAccepted()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			h.serve(ctx)
		}()
	}
}

func (s *Server) purgeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.conns.Purge(); n > 0 {
				s.logger.Debug("purged closed connections", "count", n, "tracked", s.conns.Len())
			}
			s.limiter.prune()
		}
	}
}
