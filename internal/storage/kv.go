package storage

import "time"

// Stats is a snapshot of operation counters. Each counter grows by one per
// call, whether or not the key existed.
type Stats struct {
	Gets    uint64 `json:"gets"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
}

// Cache is a concurrent key-value store with per-entry TTL.
type Cache interface {
	// Get returns the live value for key. The returned slice must not be
	// modified.
	Get(key string) ([]byte, bool)

	// Set stores value under key until ttl elapses, replacing any previous
	// entry. The cache retains value; callers must not modify it afterwards.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string)

	// Stats returns the operation counters.
	Stats() Stats

	// Len returns the number of stored entries, including expired entries
	// not yet observed by a read.
	Len() int
}
