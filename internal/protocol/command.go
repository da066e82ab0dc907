package protocol

import (
	"bytes"
	"strconv"
	"time"
)

// DefaultTTL applies when a SET carries no ttl or an unparseable one.
const DefaultTTL = 60 * time.Second

// Kind identifies a request verb.
type Kind uint8

const (
	KindNone Kind = iota
	KindGet
	KindSet
	KindDelete
	KindStat
)

// String returns the lowercase verb, used as a metric label.
func (k Kind) String() string {
	switch k {
	case KindGet:
		return "get"
	case KindSet:
		return "set"
	case KindDelete:
		return "delete"
	case KindStat:
		return "stat"
	default:
		return "none"
	}
}

// Request is a classified command line.
//
// Value aliases the frame it was parsed from and is only valid until the
// frame's buffer is reused.
type Request struct {
	Kind  Kind
	Key   string
	Value []byte
	TTL   time.Duration
}

// ParseCommand parses and classifies a single frame.
//
// Verbs are case-insensitive and DEL is accepted for DELETE. A trailing
// '\r' on the command, key and ttl tokens is ignored. GET, SET and DELETE
// without a key, and unknown verbs, yield KindNone.
func ParseCommand(frame []byte) Request {
	p := Parse(frame)
	if p.Empty() {
		// STAT takes no key, so Parse reports it as empty.
		if verbOf(frame) == KindStat {
			return Request{Kind: KindStat}
		}
		return Request{}
	}

	kind := classify(trimCR(p.Command))
	key := trimCR(p.Key)
	switch kind {
	case KindGet, KindDelete:
		return Request{Kind: kind, Key: string(key)}
	case KindSet:
		return Request{
			Kind:  kind,
			Key:   string(key),
			Value: p.Value,
			TTL:   parseTTL(p.TTL),
		}
	case KindStat:
		return Request{Kind: KindStat}
	default:
		return Request{}
	}
}

func classify(cmd []byte) Kind {
	switch {
	case bytes.EqualFold(cmd, []byte("GET")):
		return KindGet
	case bytes.EqualFold(cmd, []byte("SET")):
		return KindSet
	case bytes.EqualFold(cmd, []byte("DELETE")), bytes.EqualFold(cmd, []byte("DEL")):
		return KindDelete
	case bytes.EqualFold(cmd, []byte("STAT")):
		return KindStat
	default:
		return KindNone
	}
}

func verbOf(frame []byte) Kind {
	i := skipSpaces(frame, 0)
	tok, _ := nextToken(frame, i)
	return classify(trimCR(tok))
}

// parseTTL returns the ttl in seconds, falling back to DefaultTTL.
// A parsed zero or negative ttl is kept and expires the entry at once.
func parseTTL(tok []byte) time.Duration {
	tok = trimCR(tok)
	if len(tok) == 0 {
		return DefaultTTL
	}
	n, err := strconv.ParseInt(string(tok), 10, 64)
	if err != nil {
		return DefaultTTL
	}
	return time.Duration(n) * time.Second
}

func trimCR(b []byte) []byte {
	return bytes.TrimRight(b, "\r")
}
