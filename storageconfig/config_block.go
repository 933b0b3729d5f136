package storageconfig

import (
	"fmt"
	"math"

	"github.com/davecgh/go-spew/spew"
	"github.com/dot5enko/storagefile/bits"
	"github.com/dot5enko/storagefile/storageerr"
)

const (
	// ConfigBlockSize is the fixed footprint of every block in the chain.
	ConfigBlockSize = 4096

	// ConfigBlockHeaderSize is how many bytes precede the slot array: magic,
	// version, prev_offset, next_offset, slot_count, and header padding.
	ConfigBlockHeaderSize = 64

	// MaxConfigSlotsPerBlock is how many ConfigSlotSize slots fit between
	// the header and the trailing reserved/crc region.
	MaxConfigSlotsPerBlock = 62

	// ConfigBlockPayloadCapacity is everything but the trailing CRC-64.
	ConfigBlockPayloadCapacity = ConfigBlockSize - 8

	configBlockCRCOffset = ConfigBlockSize - 8
)

// configBlockMagic marks the start of a valid config block.
const configBlockMagic uint64 = 0x53746f72614c6648

// NullFileOffset marks the head of a chain (no prev) or its tail (no
// next). math.MinInt64 can never be a legitimate chain distance, since no
// valid block sits at a negative absolute file offset.
const NullFileOffset int64 = math.MinInt64

// ConfigBlock is the decoded form of one 4096-byte block in the chain.
// PrevOffset and NextOffset are self-relative: the byte distance from
// this block's own absolute offset to its neighbor, or NullFileOffset at
// either end of the chain.
type ConfigBlock struct {
	Version    uint64
	PrevOffset int64
	NextOffset int64
	Slots      []ConfigSlot
}

// Encode serializes the block, computing and appending its CRC-64 over
// the full 4096 bytes with the CRC-64 field itself held at zero.
func (b ConfigBlock) Encode() ([]byte, error) {
	if len(b.Slots) > MaxConfigSlotsPerBlock {
		return nil, fmt.Errorf("%w: %d slots exceeds max %d per block", storageerr.ErrInvalidArgument, len(b.Slots), MaxConfigSlotsPerBlock)
	}

	buf := make([]byte, ConfigBlockSize)
	w := bits.NewEncodeBuffer(buf, leOrder)
	w.PutUint64(configBlockMagic)
	w.PutUint64(b.Version)
	w.PutInt64(b.PrevOffset)
	w.PutInt64(b.NextOffset)
	w.PutUint16(uint16(len(b.Slots)))
	w.PadZeroes(ConfigBlockHeaderSize - w.Position())

	for _, slot := range b.Slots {
		slotBuf := make([]byte, ConfigSlotSize)
		slot.Encode(slotBuf)
		w.Write(slotBuf)
	}
	w.PadZeroes(configBlockCRCOffset - w.Position())

	crc := bits.CRC64(buf)
	leOrder.PutUint64(buf[configBlockCRCOffset:], crc)

	return buf, nil
}

// DecodeConfigBlock parses and validates a 4096-byte block: magic,
// version, and CRC-64 must all check out or the caller gets back
// storageerr.ErrDataLoss (with a dump of the offending bytes on a CRC-64
// or magic failure).
func DecodeConfigBlock(buf []byte) (ConfigBlock, error) {
	if len(buf) != ConfigBlockSize {
		return ConfigBlock{}, fmt.Errorf("%w: config block must be %d bytes, got %d", storageerr.ErrInvalidArgument, ConfigBlockSize, len(buf))
	}

	storedCRC := leOrder.Uint64(buf[configBlockCRCOffset:])
	scratch := make([]byte, ConfigBlockSize)
	copy(scratch, buf)
	leOrder.PutUint64(scratch[configBlockCRCOffset:], 0)
	computedCRC := bits.CRC64(scratch)
	if computedCRC != storedCRC {
		return ConfigBlock{}, fmt.Errorf("%w: crc64 mismatch: stored=%x computed=%x\n%s", storageerr.ErrDataLoss, storedCRC, computedCRC, spew.Sdump(buf))
	}

	r := bits.NewReader(bits.NewSliceReader(buf), leOrder)
	magic := r.MustReadU64()
	if magic != configBlockMagic {
		return ConfigBlock{}, fmt.Errorf("%w: bad config block magic %x\n%s", storageerr.ErrDataLoss, magic, spew.Sdump(buf[:ConfigBlockHeaderSize]))
	}

	version := r.MustReadU64()
	if version != CurrentVersion {
		return ConfigBlock{}, fmt.Errorf("%w: unrecognized config block version %d", storageerr.ErrDataLoss, version)
	}

	prev := r.MustReadI64()
	next := r.MustReadI64()
	count := r.MustReadU16()
	if count > MaxConfigSlotsPerBlock {
		return ConfigBlock{}, fmt.Errorf("%w: slot count %d exceeds max %d", storageerr.ErrDataLoss, count, MaxConfigSlotsPerBlock)
	}

	slots := make([]ConfigSlot, count)
	offset := ConfigBlockHeaderSize
	for i := range slots {
		slots[i] = DecodeConfigSlot(buf[offset : offset+ConfigSlotSize])
		offset += ConfigSlotSize
	}

	return ConfigBlock{Version: version, PrevOffset: prev, NextOffset: next, Slots: slots}, nil
}
