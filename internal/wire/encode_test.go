package wire

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestAppendVarint(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{1700000000, []byte{0x80, 0xE2, 0xCF, 0xAA, 0x06}},
	}

	for _, tt := range tests {
		got := AppendVarint(nil, tt.value)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("AppendVarint(%d) = % X, want % X", tt.value, got, tt.want)
		}
		if n := VarintLen(tt.value); n != len(tt.want) {
			t.Errorf("VarintLen(%d) = %d, want %d", tt.value, n, len(tt.want))
		}
	}
}

func TestAppendTag_MultiByteFieldNumber(t *testing.T) {
	// (23 << 3) | 2 = 186 needs two bytes.
	got := AppendTag(nil, 23, TypeBytes)
	if !bytes.Equal(got, []byte{0xBA, 0x01}) {
		t.Fatalf("tag for field 23 = % X", got)
	}
}

func TestAppendBytesField_EmptyPayload(t *testing.T) {
	got := AppendBytesField(nil, 1, nil)
	if !bytes.Equal(got, []byte{0x0A, 0x00}) {
		t.Fatalf("empty field = % X", got)
	}
}

func TestAppendBytesField_LongPayloadUsesVarintLength(t *testing.T) {
	payload := bytes.Repeat([]byte{'x'}, 200)
	got := AppendBytesField(nil, 5, payload)
	if !bytes.Equal(got[:3], []byte{0x2A, 0xC8, 0x01}) {
		t.Fatalf("prefix = % X, want 2A C8 01", got[:3])
	}
	if len(got) != 203 {
		t.Fatalf("len = %d, want 203", len(got))
	}
}

func TestTimestamp(t *testing.T) {
	got, err := Timestamp(time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	want := []byte{0x08, 0x80, 0xE2, 0xCF, 0xAA, 0x06}
	if !bytes.Equal(got, want) {
		t.Fatalf("Timestamp = % X, want % X", got, want)
	}
}

func TestTimestamp_OutOfRange(t *testing.T) {
	_, err := Timestamp(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}
