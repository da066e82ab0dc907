package cacheserver

import (
	"sync"

	"golang.org/x/time/rate"
)

// ipLimiters holds one token bucket per client IP.
type ipLimiters struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// newIPLimiters returns nil when perSecond is not positive.
func newIPLimiters(perSecond int) *ipLimiters {
	if perSecond <= 0 {
		return nil
	}
	return &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    perSecond,
	}
}

// allow reports whether one more command from ip is permitted now.
// A nil receiver allows everything.
func (l *ipLimiters) allow(ip string) bool {
	if l == nil {
		return true
	}
	return l.getOrCreate(ip).Allow()
}

func (l *ipLimiters) getOrCreate(ip string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[ip]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, ok := l.limiters[ip]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.limit, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

// prune drops buckets that have refilled completely. A fresh bucket would
// behave identically, so nothing is forgotten.
func (l *ipLimiters) prune() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for ip, limiter := range l.limiters {
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.limiters, ip)
			n++
		}
	}
	return n
}

func (l *ipLimiters) len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}
