package protocol

import (
	"errors"
	"fmt"
)

// ErrBufferExhausted is returned when incoming bytes cannot fit next to the
// bytes still waiting to be consumed.
var ErrBufferExhausted = errors.New("protocol: accumulation buffer exhausted")

// Accumulator collects reads from a connection into a fixed-capacity buffer.
//
// Bytes in [r, w) are unconsumed. Once everything is consumed both heads
// return to zero and the written region is cleared.
type Accumulator struct {
	buf []byte
	r   int
	w   int
}

// NewAccumulator wraps buf. The accumulator never grows buf.
func NewAccumulator(buf []byte) *Accumulator {
	return &Accumulator{buf: buf}
}

// Append copies p after the unconsumed bytes.
//
// If the tail has no room the unconsumed bytes are moved to the front first.
// Append fails without copying when the unconsumed bytes plus p exceed the
// buffer capacity.
func (a *Accumulator) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	pending := a.w - a.r
	if pending+len(p) > len(a.buf) {
		return fmt.Errorf("%w: %d pending, %d incoming, capacity %d",
			ErrBufferExhausted, pending, len(p), len(a.buf))
	}
	if a.w+len(p) > len(a.buf) {
		a.compact()
	}
	a.w += copy(a.buf[a.w:], p)
	return nil
}

// Unread returns the unconsumed bytes. The slice aliases the buffer.
func (a *Accumulator) Unread() []byte {
	return a.buf[a.r:a.w]
}

// Consume marks n unconsumed bytes as processed.
func (a *Accumulator) Consume(n int) {
	if n <= 0 {
		return
	}
	a.r += n
	if a.r >= a.w {
		a.Reset()
	}
}

// Len returns the number of unconsumed bytes.
func (a *Accumulator) Len() int { return a.w - a.r }

// Cap returns the buffer capacity.
func (a *Accumulator) Cap() int { return len(a.buf) }

// Reset drops all buffered bytes.
func (a *Accumulator) Reset() {
	clear(a.buf[:a.w])
	a.r, a.w = 0, 0
}

func (a *Accumulator) compact() {
	n := copy(a.buf, a.buf[a.r:a.w])
	clear(a.buf[n:a.w])
	a.r, a.w = 0, n
}
