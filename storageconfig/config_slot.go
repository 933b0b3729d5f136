package storageconfig

import (
	"encoding/binary"

	"github.com/dot5enko/storagefile/bits"
)

// leOrder is the byte order for every packed on-disk structure in this
// package, matching the rest of the bits codec used throughout this repo.
var leOrder = binary.LittleEndian

const (
	// ConfigSlotSize is the fixed footprint of one tagged slot inside a
	// PackedConfigBlock: a 2-byte tag followed by a fixed payload region.
	ConfigSlotSize = 64

	configSlotTagSize = 2

	// ConfigSlotPayloadSize is how many bytes of tag-specific payload a
	// slot carries.
	ConfigSlotPayloadSize = ConfigSlotSize - configSlotTagSize
)

// ConfigSlot is the decoded form of one slot. Payload is left undecoded;
// callers dispatch on Tag to interpret it (DecodePageDeviceConfig,
// DecodeVolumeConfig, ...).
type ConfigSlot struct {
	Tag     Tag
	Payload [ConfigSlotPayloadSize]byte
}

func (s ConfigSlot) Encode(dst []byte) {
	w := bits.NewEncodeBuffer(dst[:ConfigSlotSize], leOrder)
	w.PutUint16(uint16(s.Tag))
	w.Write(s.Payload[:])
}

func DecodeConfigSlot(src []byte) ConfigSlot {
	r := bits.NewReader(bits.NewSliceReader(src[:ConfigSlotSize]), leOrder)
	var s ConfigSlot
	s.Tag = Tag(r.MustReadU16())
	_ = r.ReadBytes(ConfigSlotPayloadSize, s.Payload[:])
	return s
}
