// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are assigned to shards by a murmur3 hash; each shard has its own
// RWMutex so readers of one shard never block writers of another.
//
// Usage:
//
//	m := cmap.New[*Entry]()
//	m.Set("key", entry)
//	val, ok := m.Get("key")
//
// Read operations (Get, Has, Range) take the shard read lock. Write
// operations (Set, Delete, Pop, RemoveIf, Update) take the shard write lock.
package cmap
