package storageconfig

import (
	"github.com/dot5enko/storagefile/bits"
	"github.com/google/uuid"
)

// VolumeConfigNameOffset and VolumeConfigMetadataOffset are the byte
// offsets of the Name and Metadata PackedBytes records within a volume
// slot's payload (i.e. relative to payload[0], which itself sits
// configSlotTagSize bytes into the slot). Exported so storagefile's
// builder can compute each PackedBytes record's own absolute file offset
// without duplicating this layout.
const (
	VolumeConfigNameOffset     = 32
	VolumeConfigMetadataOffset = 40
)

// PackedVolumeConfig is the decoded payload of a volume slot: an
// identity, a pointer to its root page device, and two optional
// variable-length blobs (a display name and opaque metadata) addressed
// through PackedBytes.
type PackedVolumeConfig struct {
	UUID               uuid.UUID
	RootPageDeviceUUID uuid.UUID
	Name               PackedBytes
	Metadata           PackedBytes
}

const volumeConfigEncodedSize = 16 + 16 + PackedBytesSize + PackedBytesSize // 48

func EncodeVolumeConfig(dst []byte, c PackedVolumeConfig) {
	w := bits.NewEncodeBuffer(dst[:ConfigSlotPayloadSize], leOrder)
	w.WriteUUID(c.UUID)
	w.WriteUUID(c.RootPageDeviceUUID)
	w.Write(c.Name[:])
	w.Write(c.Metadata[:])
	w.PadZeroes(ConfigSlotPayloadSize - volumeConfigEncodedSize)
}

func DecodeVolumeConfig(src []byte) PackedVolumeConfig {
	r := bits.NewReader(bits.NewSliceReader(src[:ConfigSlotPayloadSize]), leOrder)

	var c PackedVolumeConfig
	c.UUID = r.MustReadUUID()
	c.RootPageDeviceUUID = r.MustReadUUID()
	_ = r.ReadBytes(PackedBytesSize, c.Name[:])
	_ = r.ReadBytes(PackedBytesSize, c.Metadata[:])

	return c
}
