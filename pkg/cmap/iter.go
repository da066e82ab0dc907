package cmap

// Range iterates over all key-value pairs.
//
// The callback returns false to stop iteration. Shards are locked one at a
// time, so the view is not a consistent snapshot. fn must not modify m.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Keys returns all keys.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	m.Range(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Pop removes a key and returns its value.
func (m *Map[V]) Pop(key string) (V, bool) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return val, ok
}

// RemoveIf removes key only if its current value satisfies pred.
// pred runs under the shard write lock.
func (m *Map[V]) RemoveIf(key string, pred func(value V) bool) bool {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.items[key]
	if !ok || !pred(val) {
		return false
	}
	delete(s.items, key)
	return true
}

// Sweep removes every item for which pred returns true and returns the
// removed values. Each shard is write-locked while it is swept.
func (m *Map[V]) Sweep(pred func(key string, value V) bool) []V {
	var removed []V
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if pred(k, v) {
				removed = append(removed, v)
				delete(s.items, k)
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// ShardStats describes one shard.
type ShardStats struct {
	Index int
	Count int
}

// Stats returns per-shard item counts.
func (m *Map[V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, s := range m.shards {
		s.mu.RLock()
		stats[i] = ShardStats{Index: i, Count: len(s.items)}
		s.mu.RUnlock()
	}
	return stats
}
