package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// payloadKeyPatterns name attributes that may carry cached values.
var payloadKeyPatterns = []string{
	"value",
	"payload",
	"frame",
}

// previewLen is how many leading bytes of a payload are kept.
const previewLen = 16

// redactPayload shortens payload attributes to a preview plus their size.
func redactPayload(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactPayload(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if !IsPayloadKey(a.Key) {
		return a
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, Preview(a.Value.String()))
	case slog.KindAny:
		if b, ok := a.Value.Any().([]byte); ok {
			return slog.String(a.Key, Preview(string(b)))
		}
	}
	return a
}

// Preview returns s unchanged when short, otherwise its first bytes and
// total length.
func Preview(s string) string {
	if len(s) <= previewLen {
		return s
	}
	return fmt.Sprintf("%q...(%d bytes)", s[:previewLen], len(s))
}

// IsPayloadKey reports whether an attribute key names a payload.
func IsPayloadKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range payloadKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}
