package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformed is returned when a payload cannot be decoded.
var ErrMalformed = errors.New("profile: malformed payload")

// ErrUnknownCodec is returned by CodecByName.
var ErrUnknownCodec = errors.New("profile: unknown codec")

// Profile is a user profile.
type Profile struct {
	ID        int32     `json:"Id" yaml:"id"`
	UserName  string    `json:"UserName" yaml:"user_name"`
	CreatedAt time.Time `json:"CreatedAt" yaml:"created_at"`
}

// Equal reports whether p and o hold the same values.
func (p Profile) Equal(o Profile) bool {
	return p.ID == o.ID && p.UserName == o.UserName && p.CreatedAt.Equal(o.CreatedAt)
}

// Codec converts profiles to and from bytes.
type Codec interface {
	Name() string
	Marshal(p Profile) ([]byte, error)
	Unmarshal(b []byte) (Profile, error)
}

// CodecByName returns the codec called name ("json" or "binary").
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json", "":
		return JSONCodec{}, nil
	case "binary", "proto":
		return BinaryCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// JSONCodec encodes profiles as JSON.
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements Codec.
func (JSONCodec) Marshal(p Profile) ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(b []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}
