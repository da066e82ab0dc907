package protocol

import "strconv"

// Wire responses. Every response ends with CRLF.
var (
	RespOK          = []byte("OK\r\n")
	RespNil         = []byte("(nil)\r\n")
	RespMalformed   = []byte("-ERR UnknownOrMalformedCommand\r\n")
	RespInternal    = []byte("-ERR InternalError\r\n")
	RespRateLimited = []byte("-ERR rate limit exceeded\r\n")
	RespUnavailable = []byte("-ERR ServerShuttingDown\r\n")
)

var crlf = []byte("\r\n")

// AppendValue appends a GET hit response to dst.
func AppendValue(dst, value []byte) []byte {
	dst = append(dst, value...)
	return append(dst, crlf...)
}

// AppendStats appends a STAT response to dst:
//
//	GET: 000001; SET: 000002; DELETE: 000000;
func AppendStats(dst []byte, gets, sets, deletes uint64) []byte {
	dst = append(dst, "GET: "...)
	dst = appendPadded(dst, gets)
	dst = append(dst, "; SET: "...)
	dst = appendPadded(dst, sets)
	dst = append(dst, "; DELETE: "...)
	dst = appendPadded(dst, deletes)
	dst = append(dst, ';')
	return append(dst, crlf...)
}

// appendPadded writes n with at least six digits.
func appendPadded(dst []byte, n uint64) []byte {
	var tmp [20]byte
	s := strconv.AppendUint(tmp[:0], n, 10)
	for i := len(s); i < 6; i++ {
		dst = append(dst, '0')
	}
	return append(dst, s...)
}

// IsError reports whether resp is an error response.
func IsError(resp []byte) bool {
	return len(resp) > 0 && resp[0] == '-'
}
