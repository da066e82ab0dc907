// Package output renders microcache-cli results as tables, JSON or YAML.
package output
