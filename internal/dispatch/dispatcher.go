package dispatch

import (
	"context"
	"sync"
	"time"

	list "github.com/bahlo/generic-list-go"
)

// Dispatcher is an unbounded FIFO of pending commands shared by many
// producers and consumers.
type Dispatcher struct {
	mu     sync.Mutex
	queue  *list.List[*Command]
	closed bool

	// ready holds one token while the queue may be non-empty.
	ready chan struct{}
	done  chan struct{}
}

// NewDispatcher returns an open, empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		queue: list.New[*Command](),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Submit enqueues cmd. It never blocks. After Close it returns ErrClosed
// and cmd is not queued.
func (d *Dispatcher) Submit(cmd *Command) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	cmd.enqueuedAt = time.Now()
	d.queue.PushBack(cmd)
	d.mu.Unlock()

	d.signal()
	return nil
}

// Next removes and returns the oldest command, waiting while the queue is
// empty. It returns ctx.Err() when ctx is done and ErrClosed after Close.
func (d *Dispatcher) Next(ctx context.Context) (*Command, error) {
	for {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return nil, ErrClosed
		}
		if front := d.queue.Front(); front != nil {
			cmd := d.queue.Remove(front)
			more := d.queue.Len() > 0
			d.mu.Unlock()
			if more {
				d.signal()
			}
			return cmd, nil
		}
		d.mu.Unlock()

		select {
		case <-d.ready:
		case <-d.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued commands.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Len()
}

// Close stops accepting commands and fails every queued command with
// ErrClosed. It returns the number of commands failed. Close is idempotent.
func (d *Dispatcher) Close() int {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0
	}
	d.closed = true
	pending := d.queue
	d.queue = list.New[*Command]()
	close(d.done)
	d.mu.Unlock()

	n := 0
	for e := pending.Front(); e != nil; e = e.Next() {
		if e.Value.Completion.Fail(ErrClosed) {
			n++
		}
	}
	return n
}

func (d *Dispatcher) signal() {
	select {
	case d.ready <- struct{}{}:
	default:
	}
}
