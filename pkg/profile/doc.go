// Package profile encodes user profiles stored as cache values.
//
// Two codecs are provided: JSONCodec, which writes the field names
// Id, UserName and CreatedAt, and BinaryCodec, which writes protobuf wire
// format:
//
//	1: id         varint (int32)
//	2: user_name  bytes
//	3: created_at varint (unix nanoseconds, omitted for the zero time)
//
// The cache itself treats values as opaque bytes.
package profile
