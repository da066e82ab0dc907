// Package storage defines the cache storage contract used by the command
// pipeline.
//
// The only implementation is the in-memory store in storage/memory. Entries
// expire lazily: an expired entry is dropped the first time a read observes
// it.
package storage
