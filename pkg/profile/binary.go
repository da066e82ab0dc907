package profile

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldID        protowire.Number = 1
	fieldUserName  protowire.Number = 2
	fieldCreatedAt protowire.Number = 3
)

// BinaryCodec encodes profiles in protobuf wire format.
type BinaryCodec struct{}

// Name implements Codec.
func (BinaryCodec) Name() string { return "binary" }

// Marshal implements Codec.
func (BinaryCodec) Marshal(p Profile) ([]byte, error) {
	b := make([]byte, 0, 16+len(p.UserName))
	if p.ID != 0 {
		b = protowire.AppendTag(b, fieldID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(p.ID)))
	}
	if p.UserName != "" {
		b = protowire.AppendTag(b, fieldUserName, protowire.BytesType)
		b = protowire.AppendString(b, p.UserName)
	}
	if !p.CreatedAt.IsZero() {
		b = protowire.AppendTag(b, fieldCreatedAt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.CreatedAt.UnixNano()))
	}
	return b, nil
}

// Unmarshal implements Codec. Unknown fields are skipped.
func (BinaryCodec) Unmarshal(b []byte) (Profile, error) {
	var p Profile
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Profile{}, malformed(n)
		}
		b = b[n:]

		switch {
		case num == fieldID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Profile{}, malformed(n)
			}
			p.ID = int32(v)
			b = b[n:]
		case num == fieldUserName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Profile{}, malformed(n)
			}
			p.UserName = v
			b = b[n:]
		case num == fieldCreatedAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Profile{}, malformed(n)
			}
			p.CreatedAt = time.Unix(0, int64(v)).UTC()
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Profile{}, malformed(n)
			}
			b = b[n:]
		}
	}
	return p, nil
}

func malformed(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}
