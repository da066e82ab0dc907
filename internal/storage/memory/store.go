// Package memory provides the in-memory cache store.
//
// Entries live in a sharded map (pkg/cmap). Each entry carries an absolute
// expiry; reads treat an entry with expireAt <= now as missing and remove it.
// Operation counters are atomics and never take the shard locks.
package memory

import (
	"sync/atomic"
	"time"

	"github.com/yndnr/microcache-go/internal/storage"
	"github.com/yndnr/microcache-go/pkg/cmap"
)

var _ storage.Cache = (*Store)(nil)

// entry is immutable once stored.
type entry struct {
	data     []byte
	expireAt time.Time
}

// Store is a concurrent key-value store with TTL expiry.
type Store struct {
	items *cmap.Map[*entry]
	now   func() time.Time

	gets    atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces time.Now. Used by tests to simulate time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithShardCount sets the number of map shards (power of 2).
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.items = cmap.NewWithShards[*entry](n)
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		items: cmap.New[*entry](),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key if it has not expired.
func (s *Store) Get(key string) ([]byte, bool) {
	s.gets.Add(1)

	e, ok := s.items.Get(key)
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expireAt) {
		// A concurrent Set may have replaced the entry; only drop this one.
		s.items.RemoveIf(key, func(cur *entry) bool { return cur == e })
		return nil, false
	}
	return e.data, true
}

// Set stores value under key for ttl.
func (s *Store) Set(key string, value []byte, ttl time.Duration) {
	s.sets.Add(1)
	s.items.Set(key, &entry{data: value, expireAt: s.now().Add(ttl)})
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.deletes.Add(1)
	s.items.Delete(key)
}

// Stats returns the operation counters.
func (s *Store) Stats() storage.Stats {
	return storage.Stats{
		Gets:    s.gets.Load(),
		Sets:    s.sets.Load(),
		Deletes: s.deletes.Load(),
	}
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return s.items.Count()
}

// ShardStats returns the per-shard entry counts.
func (s *Store) ShardStats() []cmap.ShardStats {
	return s.items.Stats()
}

// contains reports whether key is physically present, expired or not.
func (s *Store) contains(key string) bool {
	return s.items.Has(key)
}
