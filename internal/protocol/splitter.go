package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrFrameTooLarge is returned when a frame reaches the configured maximum.
var ErrFrameTooLarge = errors.New("protocol: frame too large")

const delimiter = '\n'

// Frame is a complete line inside a buffer, exclusive of its delimiter.
type Frame struct {
	Offset int
	Length int
}

// Bytes returns the frame's bytes within buf.
func (f Frame) Bytes(buf []byte) []byte {
	return buf[f.Offset : f.Offset+f.Length]
}

// Split locates every complete '\n'-terminated frame in buf.
//
// It returns the number of bytes consumed (frames plus delimiters) and the
// frames appended to dst. Bytes after the last delimiter are not consumed.
//
// A SET whose value starts after the length token is located by its
// declared length, so the value may contain '\n'. The frame ends at the
// delimiter that follows the value and an optional ttl. When the bytes
// after the value do not read that way, or the value is still short while
// the header line already reads as a complete SET with a ttl, the declared
// length is taken as wrong and the frame ends at the first delimiter.
func Split(buf []byte, dst []Frame) (int, []Frame) {
	consumed := 0
	for consumed < len(buf) {
		n, ok := frameEnd(buf[consumed:])
		if !ok {
			break
		}
		dst = append(dst, Frame{Offset: consumed, Length: n})
		consumed += n + 1
	}
	return consumed, dst
}

// CheckFrame returns ErrFrameTooLarge when a frame of length n meets or
// exceeds limit. A limit of zero disables the check.
func CheckFrame(n, limit int) error {
	if limit > 0 && n >= limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, n, limit)
	}
	return nil
}

// frameEnd returns the index of the delimiter closing the first frame of
// line. ok is false while the frame is incomplete.
func frameEnd(line []byte) (int, bool) {
	nl := bytes.IndexByte(line, delimiter)
	if start, size, ok := setValue(line, nl); ok {
		switch idx, st := trailer(line, start+size); st {
		case trailerDone:
			return idx, true
		case trailerPending:
			if nl < 0 || !completeHeader(line[start:nl]) {
				return 0, false
			}
		}
	}
	if nl < 0 {
		return 0, false
	}
	return nl, true
}

// setValue reports where the value of a SET line starts and its declared
// size. nl is the index of the first delimiter in line, or -1. ok is false
// when line is not a SET carrying a positive length followed by a space.
func setValue(line []byte, nl int) (start, size int, ok bool) {
	head := line
	if nl >= 0 {
		head = line[:nl]
	}

	i := skipSpaces(head, 0)
	cmd, i := nextToken(head, i)
	if classify(trimCR(cmd)) != KindSet {
		return 0, 0, false
	}
	i = skipSpaces(head, i)
	key, i := nextToken(head, i)
	if len(key) == 0 {
		return 0, 0, false
	}
	i = skipSpaces(head, i)
	length, i := nextToken(head, i)
	size = Parts{Length: length}.Size()
	if size <= 0 {
		return 0, 0, false
	}
	start = skipSpaces(head, i)
	if start == i {
		// no space after the length: the header line ends here
		return 0, 0, false
	}
	if start == len(head) && nl < 0 {
		// the byte after the spaces has not arrived yet
		return 0, 0, false
	}
	// start == nl: the value's first byte is the delimiter itself.
	return start, size, true
}

type trailerState uint8

const (
	trailerPending trailerState = iota
	trailerDone
	trailerMismatch
)

// trailer scans line from end for `[ <ttl>] [\r]\n` and returns the index of
// the closing delimiter.
func trailer(line []byte, end int) (int, trailerState) {
	if end > len(line) {
		return 0, trailerPending
	}
	i := skipSpaces(line, end)
	for i < len(line) && line[i] != space && line[i] != '\r' && line[i] != delimiter {
		i++
	}
	i = skipSpaces(line, i)
	if i < len(line) && line[i] == '\r' {
		i++
	}
	switch {
	case i == len(line):
		return 0, trailerPending
	case line[i] == delimiter:
		return i, trailerDone
	default:
		return 0, trailerMismatch
	}
}

// completeHeader reports whether the header-line part of a value already
// ends in a space and an integer ttl, as `<value> <ttl>` would.
func completeHeader(b []byte) bool {
	b = trimCR(b)
	sp := bytes.LastIndexByte(b, space)
	if sp <= 0 || sp == len(b)-1 {
		return false
	}
	_, err := strconv.ParseInt(string(b[sp+1:]), 10, 64)
	return err == nil
}
