// Package main provides the entry point for microcache-cli.
//
// microcache-cli talks to microcache-server, supporting single commands,
// an interactive REPL, user profiles and a load generator.
package main
