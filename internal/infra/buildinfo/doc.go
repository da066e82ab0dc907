// Package buildinfo exposes build information injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/microcache-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Commit and GoVersion fall back to the values recorded by the Go toolchain.
package buildinfo
