package storageconfig

import (
	"bytes"
	"testing"
)

func TestPackedBytesInlineRoundTrip(t *testing.T) {
	cases := []string{"", "a", "ab", "abc", "abcd"}

	for _, s := range cases {
		payload := []byte(s)

		var pb PackedBytes
		var err error
		if len(payload) == 0 {
			pb, err = NewExternalPackedBytes(PackedBytesSize, 0)
		} else {
			pb, err = NewInlinePackedBytes(payload)
		}
		if err != nil {
			t.Fatalf("encode %q: %v", s, err)
		}

		if got := pb.Size(); got != len(payload) {
			t.Errorf("%q: Size() = %d, want %d", s, got, len(payload))
		}

		if len(payload) > 0 {
			if !pb.IsInline() {
				t.Errorf("%q: expected inline representation", s)
			}
			if got := pb.InlineData(); !bytes.Equal(got, payload) {
				t.Errorf("%q: InlineData() = %q, want %q", s, got, payload)
			}
		}
	}
}

func TestPackedBytesExternalRoundTrip(t *testing.T) {
	const recordAbsOffset = 4096 + 64

	for _, size := range []int{5, 6, 200, 1 << 20} {
		payload := bytes.Repeat([]byte{0xAB}, size)

		payloadAbsOffset := recordAbsOffset + PackedBytesSize
		pb, err := NewExternalPackedBytes(int64(payloadAbsOffset-recordAbsOffset), len(payload))
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}

		if pb.IsInline() {
			t.Fatalf("size %d: expected external representation", size)
		}
		if got := pb.Size(); got != size {
			t.Errorf("size %d: Size() = %d", size, got)
		}
		if got := pb.ExternalOffset(recordAbsOffset); got != int64(payloadAbsOffset) {
			t.Errorf("size %d: ExternalOffset() = %d, want %d", size, got, payloadAbsOffset)
		}
	}
}

func TestNewInlinePackedBytesRejectsTooLong(t *testing.T) {
	if _, err := NewInlinePackedBytes([]byte("toolong")); err == nil {
		t.Fatal("expected error for payload longer than 4 bytes")
	}
}

func TestNewExternalPackedBytesRejectsSmallOffset(t *testing.T) {
	if _, err := NewExternalPackedBytes(PackedBytesSize-1, 10); err == nil {
		t.Fatal("expected error for offset inside the record itself")
	}
}

func TestPackedSizeofStr(t *testing.T) {
	cases := map[int]int{0: 8, 4: 8, 5: 13, 100: 108}
	for length, want := range cases {
		if got := PackedSizeofStr(length); got != want {
			t.Errorf("PackedSizeofStr(%d) = %d, want %d", length, got, want)
		}
	}
}
