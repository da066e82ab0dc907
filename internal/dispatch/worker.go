package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/microcache-go/internal/protocol"
	"github.com/yndnr/microcache-go/internal/storage"
)

// Observer receives one call per executed command.
type Observer interface {
	ObserveCommand(kind string, failed bool, queued, exec time.Duration)
}

// WorkerStats counts commands handled by a Pool.
type WorkerStats struct {
	Read   uint64 `json:"read"`
	Good   uint64 `json:"good"`
	Failed uint64 `json:"failed"`
}

// Pool executes commands from a Dispatcher against a Cache.
type Pool struct {
	disp     *Dispatcher
	cache    storage.Cache
	size     int
	logger   *slog.Logger
	observer Observer

	read   atomic.Uint64
	good   atomic.Uint64
	failed atomic.Uint64
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithSize sets the number of workers. Non-positive values select
// runtime.NumCPU().
func WithSize(n int) PoolOption {
	return func(p *Pool) {
		p.size = n
	}
}

// WithLogger sets the pool logger.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver reports executed commands to o.
func WithObserver(o Observer) PoolOption {
	return func(p *Pool) {
		p.observer = o
	}
}

// NewPool creates a worker pool.
func NewPool(disp *Dispatcher, cache storage.Cache, opts ...PoolOption) *Pool {
	p := &Pool{
		disp:   disp,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.size <= 0 {
		p.size = runtime.NumCPU()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Run starts the workers and blocks until ctx is done or the dispatcher is
// closed.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		id := i
		g.Go(func() error {
			return p.loop(ctx, id)
		})
	}
	return g.Wait()
}

func (p *Pool) loop(ctx context.Context, id int) error {
	p.logger.Debug("worker started", "worker", id)
	defer p.logger.Debug("worker stopped", "worker", id)

	for {
		cmd, err := p.disp.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		p.handle(cmd)
	}
}

// handle executes cmd and fulfils its completion. A panic fails the
// completion with ErrInternal.
func (p *Pool) handle(cmd *Command) {
	p.read.Add(1)
	start := time.Now()
	failed := false

	defer func() {
		if r := recover(); r != nil {
			failed = true
			p.logger.Error("command execution panicked",
				"kind", cmd.Kind.String(),
				"key", cmd.Key,
				"panic", r,
			)
			cmd.Completion.Fail(fmt.Errorf("%w: %v", ErrInternal, r))
		}

		if failed {
			p.failed.Add(1)
		} else {
			p.good.Add(1)
		}
		if p.observer != nil {
			var queued time.Duration
			if !cmd.enqueuedAt.IsZero() {
				queued = start.Sub(cmd.enqueuedAt)
			}
			p.observer.ObserveCommand(cmd.Kind.String(), failed, queued, time.Since(start))
		}
	}()

	resp := p.Execute(cmd.Request)
	failed = protocol.IsError(resp)
	cmd.Completion.Resolve(resp)
}

// Execute runs req against the cache and returns the wire response.
func (p *Pool) Execute(req protocol.Request) []byte {
	switch req.Kind {
	case protocol.KindGet:
		v, ok := p.cache.Get(req.Key)
		if !ok {
			return protocol.RespNil
		}
		return protocol.AppendValue(make([]byte, 0, len(v)+2), v)
	case protocol.KindSet:
		p.cache.Set(req.Key, req.Value, req.TTL)
		return protocol.RespOK
	case protocol.KindDelete:
		p.cache.Delete(req.Key)
		return protocol.RespOK
	case protocol.KindStat:
		st := p.cache.Stats()
		return protocol.AppendStats(nil, st.Gets, st.Sets, st.Deletes)
	default:
		return protocol.RespMalformed
	}
}

// Stats returns the pool counters.
func (p *Pool) Stats() WorkerStats {
	return WorkerStats{
		Read:   p.read.Load(),
		Good:   p.good.Load(),
		Failed: p.failed.Load(),
	}
}
