package protocol

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidKey is returned when a key cannot be sent as a single token.
var ErrInvalidKey = errors.New("protocol: key must be non-empty and contain no whitespace")

// ValidKey reports whether key can be encoded.
func ValidKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, " \t\r\n")
}

// AppendRequest appends the frame for req, including the '\n' delimiter.
// The SET ttl is written in whole seconds, rounded up.
func AppendRequest(dst []byte, req Request) ([]byte, error) {
	if req.Kind != KindStat && !ValidKey(req.Key) {
		return dst, ErrInvalidKey
	}
	switch req.Kind {
	case KindGet:
		dst = append(dst, "GET "...)
		dst = append(dst, req.Key...)
	case KindSet:
		dst = append(dst, "SET "...)
		dst = append(dst, req.Key...)
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, int64(len(req.Value)), 10)
		dst = append(dst, ' ')
		dst = append(dst, req.Value...)
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, ttlSeconds(req.TTL), 10)
	case KindDelete:
		dst = append(dst, "DELETE "...)
		dst = append(dst, req.Key...)
	case KindStat:
		dst = append(dst, "STAT"...)
	default:
		return dst, errors.New("protocol: cannot encode request without a verb")
	}
	return append(dst, delimiter), nil
}

func ttlSeconds(d time.Duration) int64 {
	s := int64(d / time.Second)
	if d%time.Second > 0 {
		s++
	}
	return s
}
