// Package wire hand-encodes the small protobuf payloads sent to the remote
// service. There is no generated schema; field numbers are fixed by the
// remote side and must be reproduced byte-for-byte.
package wire

import (
	"errors"
	"fmt"
	"time"
)

// Wire types used by the payloads we emit.
const (
	TypeVarint = 0
	TypeBytes  = 2
)

// Bounds of google.protobuf.Timestamp: 0001-01-01T00:00:00Z .. 9999-12-31T23:59:59Z.
const (
	minTimestampSeconds = -62135596800
	maxTimestampSeconds = 253402300799
)

// ErrInvalidTimestamp is returned for instants outside the Timestamp range.
var ErrInvalidTimestamp = errors.New("timestamp out of range")

// AppendVarint appends v using 7 bits per byte, least significant group first.
func AppendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// VarintLen reports how many bytes AppendVarint will write for v.
func VarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// AppendTag appends the key for field with the given wire type.
func AppendTag(b []byte, field int, wireType int) []byte {
	return AppendVarint(b, uint64(field)<<3|uint64(wireType))
}

// AppendBytesField appends a length-delimited field. An empty payload still
// produces the tag and a zero length.
func AppendBytesField(b []byte, field int, payload []byte) []byte {
	b = AppendTag(b, field, TypeBytes)
	b = AppendVarint(b, uint64(len(payload)))
	return append(b, payload...)
}

// AppendStringField appends s as a length-delimited field.
func AppendStringField(b []byte, field int, s string) []byte {
	b = AppendTag(b, field, TypeBytes)
	b = AppendVarint(b, uint64(len(s)))
	return append(b, s...)
}

// AppendVarintField appends an integer field.
func AppendVarintField(b []byte, field int, v uint64) []byte {
	b = AppendTag(b, field, TypeVarint)
	return AppendVarint(b, v)
}

// AppendMessageField nests an already encoded message under field.
func AppendMessageField(b []byte, field int, msg []byte) []byte {
	return AppendBytesField(b, field, msg)
}

// Timestamp encodes a google.protobuf.Timestamp carrying only seconds.
// Nanos are always zero and therefore omitted.
func Timestamp(t time.Time) ([]byte, error) {
	secs := t.Unix()
	if secs < minTimestampSeconds || secs > maxTimestampSeconds {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTimestamp, secs)
	}
	return AppendVarintField(nil, 1, uint64(secs)), nil
}
