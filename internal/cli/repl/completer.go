package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"GET", "SET", "DELETE", "DEL", "STAT",
			"help", "history", "exit", "quit",
		},
	}
}

// Complete returns completion suggestions for the given prefix, matched
// case-insensitively.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToLower(cmd), prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	sort.Strings(suggestions)
	return suggestions
}

// Known reports whether word names a command.
func (c *Completer) Known(word string) bool {
	for _, cmd := range c.commands {
		if strings.EqualFold(cmd, word) {
			return true
		}
	}
	return false
}
