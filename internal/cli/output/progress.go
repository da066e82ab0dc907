package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Progress draws a single-line progress bar for a known number of
// operations.
type Progress struct {
	w       io.Writer
	title   string
	total   int64
	current int64
	width   int
	start   time.Time
	last    time.Time
	every   time.Duration
	mu      sync.Mutex
}

// NewProgress creates a progress bar for total operations. Redraws are
// throttled to ten per second.
func NewProgress(w io.Writer, title string, total int64) *Progress {
	now := time.Now()
	return &Progress{
		w:     w,
		title: title,
		total: total,
		width: 40,
		start: now,
		every: 100 * time.Millisecond,
	}
}

// Increment adds n completed operations.
func (p *Progress) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if now := time.Now(); now.Sub(p.last) >= p.every {
		p.last = now
		p.render()
	}
}

// Finish draws the final state and ends the line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *Progress) render() {
	percent := 1.0
	if p.total > 0 {
		percent = min(float64(p.current)/float64(p.total), 1)
	}

	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	rate := 0.0
	if elapsed := time.Since(p.start).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d, %.0f ops/s)",
		p.title, bar, percent*100, p.current, p.total, rate)
}
