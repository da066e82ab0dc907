// Package repl provides the interactive mode of microcache-cli.
//
// Each line is sent to the server as one protocol frame and the response
// is printed. Lines starting with an unknown verb are answered locally
// with suggestions.
package repl
