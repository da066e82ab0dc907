// Package command provides the microcache-cli command definitions.
//
// Commands are built with urfave/cli/v2:
//
//   - root.go: application, global flags, CLI configuration merge
//   - kv.go: get, set, delete and stat
//   - profile.go: user profiles stored through a payload codec
//   - bench.go: load generator
//   - server.go: admin API queries
//   - config.go: local CLI configuration
//   - repl.go: interactive mode, also the default action
package command
