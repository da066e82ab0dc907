// Package confloader loads configuration with koanf.
//
// Sources are applied in order, later ones overriding earlier ones:
// defaults already present in the target struct, a YAML file, environment
// variables and finally explicit overrides (command-line flags).
//
// Watcher reports changes to the configuration file through fsnotify so the
// server can re-apply settings that are safe to change at runtime.
package confloader
