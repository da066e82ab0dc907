// Package protocol implements the microcache line protocol.
//
// A request is a single line terminated by '\n':
//
//	GET <key>
//	SET <key> <length> <value> <ttl>
//	DELETE <key>
//	STAT
//
// The SET value is a fixed-length field of exactly <length> bytes and may
// contain spaces or newlines. The package is split into:
//
//   - parser.go: tokenizer producing raw Parts that alias the input
//   - command.go: classification of Parts into a Request
//   - splitter.go: extraction of complete frames from buffered bytes
//   - accumulator.go: the per-connection buffer with read/write heads
//   - response.go: wire responses
//   - pool.go: pooled fixed-size byte buffers
package protocol
