package protocol

import "strconv"

const space = 0x20

// Parts holds the raw tokens of a single command line.
//
// Every field is a sub-slice of the parsed input; nothing is copied.
// Absent fields are nil.
type Parts struct {
	Command []byte
	Key     []byte
	Length  []byte
	Value   []byte
	TTL     []byte
}

// Empty reports whether the line carried no usable command.
func (p Parts) Empty() bool {
	return len(p.Command) == 0
}

// Size returns the declared value length, or 0 when the length token is
// missing or not an integer.
func (p Parts) Size() int {
	n, err := strconv.Atoi(string(p.Length))
	if err != nil {
		return 0
	}
	return n
}

// Parse splits a command line into its tokens.
//
// Tokens are separated by runs of spaces. The value is taken as exactly
// Size() bytes following the length token. A declared length larger than
// the remaining input leaves the value and ttl absent. A line without a
// command or without a key yields empty Parts.
func Parse(b []byte) Parts {
	var p Parts

	i := skipSpaces(b, 0)
	p.Command, i = nextToken(b, i)
	i = skipSpaces(b, i)
	p.Key, i = nextToken(b, i)
	if len(p.Command) == 0 || len(p.Key) == 0 {
		return Parts{}
	}

	i = skipSpaces(b, i)
	if i >= len(b) {
		return p
	}
	p.Length, i = nextToken(b, i)
	i = skipSpaces(b, i)

	if n := p.Size(); n > 0 {
		if len(b)-i < n {
			return p
		}
		p.Value = b[i : i+n]
		i = skipSpaces(b, i+n)
	}

	if i < len(b) {
		p.TTL, _ = nextToken(b, i)
	}
	return p
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) && b[i] == space {
		i++
	}
	return i
}

// nextToken returns the bytes from i up to the next space (or the end of b)
// and the index just past them.
func nextToken(b []byte, i int) ([]byte, int) {
	start := i
	for i < len(b) && b[i] != space {
		i++
	}
	if i == start {
		return nil, i
	}
	return b[start:i], i
}
