package dispatch

import (
	"bytes"
	"context"
	"sync/atomic"
	"time"

	"github.com/yndnr/microcache-go/internal/protocol"
)

// Completion is a single-assignment result slot.
//
// Exactly one of Resolve or Fail takes effect; later calls are ignored.
type Completion struct {
	set  atomic.Bool
	done chan struct{}
	resp []byte
	err  error
}

// NewCompletion returns an unfulfilled slot.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Resolve fulfils the slot with a response. It reports whether this call
// took effect.
func (c *Completion) Resolve(resp []byte) bool {
	if !c.set.CompareAndSwap(false, true) {
		return false
	}
	c.resp = resp
	close(c.done)
	return true
}

// Fail fulfils the slot with an error. It reports whether this call took
// effect.
func (c *Completion) Fail(err error) bool {
	if !c.set.CompareAndSwap(false, true) {
		return false
	}
	c.err = err
	close(c.done)
	return true
}

// Done is closed once the slot is fulfilled.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the slot is fulfilled or ctx is done.
func (c *Completion) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-c.done:
		return c.resp, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Command is a request queued for execution.
type Command struct {
	protocol.Request
	Completion *Completion

	enqueuedAt time.Time
}

// NewCommand builds a command owning a copy of req.Value, so the caller may
// reuse the buffer req was parsed from.
func NewCommand(req protocol.Request) *Command {
	if req.Value != nil {
		req.Value = bytes.Clone(req.Value)
	}
	return &Command{
		Request:    req,
		Completion: NewCompletion(),
	}
}
