package storageconfig

import (
	"fmt"

	"github.com/dot5enko/storagefile/bits"
	"github.com/dot5enko/storagefile/storageerr"
)

// PackedBytesSize is the fixed on-disk size of a PackedBytes record: a
// self-relative variable-length byte descriptor that never needs to move
// with the rest of the file, so it's safe to address directly inside an
// mmap'd region.
const PackedBytesSize = 8

// PackedBytes is the raw 8-byte on-disk record. Bytes [0:3) hold a 24-bit
// data_offset, byte 3 is unused, bytes [4:7) hold a 24-bit data_size, and
// byte 7 is reserved. When data_offset < PackedBytesSize the payload is
// inline, living in this record's own last (PackedBytesSize-data_offset)
// bytes; otherwise data_offset is a byte distance from this record's own
// absolute file offset to where the payload actually lives, and data_size
// is authoritative.
type PackedBytes [PackedBytesSize]byte

const maxU24 = 1<<24 - 1

func (b PackedBytes) dataOffset() uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func (b PackedBytes) dataSize() uint32 {
	return uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16
}

// IsInline reports whether the payload is carried inside this record.
func (b PackedBytes) IsInline() bool {
	return b.dataOffset() < PackedBytesSize
}

// Size returns the payload length regardless of representation.
func (b PackedBytes) Size() int {
	if do := b.dataOffset(); do < PackedBytesSize {
		return PackedBytesSize - int(do)
	}
	return int(b.dataSize())
}

// InlineData returns the payload bytes carried inside the record. Only
// meaningful when IsInline is true.
func (b PackedBytes) InlineData() []byte {
	do := b.dataOffset()
	out := make([]byte, PackedBytesSize-int(do))
	copy(out, b[do:])
	return out
}

// ExternalOffset resolves the absolute file offset of the external
// payload, given the absolute file offset of this record itself. Only
// meaningful when IsInline is false.
func (b PackedBytes) ExternalOffset(recordAbsOffset int64) int64 {
	return recordAbsOffset + int64(b.dataOffset())
}

// NewInlinePackedBytes builds a PackedBytes whose payload (1 to 4 bytes)
// is carried entirely inside the record.
func NewInlinePackedBytes(payload []byte) (PackedBytes, error) {
	if len(payload) == 0 || len(payload) > 4 {
		return PackedBytes{}, fmt.Errorf("%w: inline packed bytes payload must be 1-4 bytes, got %d", storageerr.ErrInvalidArgument, len(payload))
	}

	var b PackedBytes
	w := bits.NewEncodeBuffer(b[:], leOrder)
	dataOffset := PackedBytesSize - len(payload)
	w.PutUint24(uint32(dataOffset))
	w.WriteByte(0)
	w.PutUint24(0)
	w.WriteByte(0)
	copy(b[dataOffset:], payload)
	return b, nil
}

// NewExternalPackedBytes builds a PackedBytes descriptor pointing at a
// payload living elsewhere in the file. relOffset is the byte distance
// from this record's own absolute offset to the payload; it must be at
// least PackedBytesSize (payload never overlaps its own descriptor) and
// size must fit a 24-bit field.
func NewExternalPackedBytes(relOffset int64, size int) (PackedBytes, error) {
	if relOffset < PackedBytesSize || relOffset > maxU24 {
		return PackedBytes{}, fmt.Errorf("%w: external packed bytes offset %d out of range", storageerr.ErrOutOfRange, relOffset)
	}
	if size < 0 || size > maxU24 {
		return PackedBytes{}, fmt.Errorf("%w: external packed bytes size %d out of range", storageerr.ErrOutOfRange, size)
	}

	var b PackedBytes
	w := bits.NewEncodeBuffer(b[:], leOrder)
	w.PutUint24(uint32(relOffset))
	w.WriteByte(0)
	w.PutUint24(uint32(size))
	w.WriteByte(0)
	return b, nil
}

// PackedSizeofStrData returns how many extra bytes beyond PackedBytesSize
// a string of the given length needs on disk: none for <=4 bytes (inline),
// otherwise its full length.
func PackedSizeofStrData(length int) int {
	if length <= 4 {
		return 0
	}
	return length
}

// PackedSizeofStr returns the total on-disk footprint (descriptor plus any
// external bytes) of a string of the given length.
func PackedSizeofStr(length int) int {
	return PackedBytesSize + PackedSizeofStrData(length)
}
