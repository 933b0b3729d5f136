package bits

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
)

func TestBitWriterReaderU24RoundTrip(t *testing.T) {
	buf := make([]byte, 3)
	w := NewEncodeBuffer(buf, binary.LittleEndian)
	w.PutUint24(0xABCDEF)

	r := NewReader(NewSliceReader(buf), binary.LittleEndian)
	got := r.MustReadU24()
	if got != 0xABCDEF {
		t.Fatalf("ReadU24() = %x, want %x", got, 0xABCDEF)
	}
}

func TestBitWriterReaderUUIDRoundTrip(t *testing.T) {
	id := uuid.New()
	buf := make([]byte, 16)
	w := NewEncodeBuffer(buf, binary.LittleEndian)
	w.WriteUUID(id)

	r := NewReader(NewSliceReader(buf), binary.LittleEndian)
	got := r.MustReadUUID()
	if got != id {
		t.Fatalf("ReadUUID() = %s, want %s", got, id)
	}
}

func TestBitWriterPadZeroesAdvancesAndZeroes(t *testing.T) {
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = 0xFF
	}

	w := NewEncodeBuffer(buf, binary.LittleEndian)
	w.PadZeroes(8)

	if w.Position() != 8 {
		t.Fatalf("Position() = %d, want 8", w.Position())
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %x", i, v)
		}
	}
}

func TestCRC64DetectsSingleBitFlip(t *testing.T) {
	data := []byte("a 4096 byte config block, more or less")
	a := CRC64(data)

	mutated := append([]byte(nil), data...)
	mutated[3] ^= 0x01

	if b := CRC64(mutated); a == b {
		t.Fatal("CRC64 did not change after a single bit flip")
	}
}
