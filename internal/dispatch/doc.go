// Package dispatch decouples connection goroutines from storage execution.
//
// A connection submits a Command to the Dispatcher and waits on the
// command's Completion. A fixed Pool of workers drains the Dispatcher,
// executes each command against a storage.Cache and fulfils the Completion
// exactly once, even when execution panics.
package dispatch
