package storageconfig

import (
	"fmt"

	"github.com/dot5enko/storagefile/bits"
	"github.com/dot5enko/storagefile/storageerr"
	"github.com/google/uuid"
)

const (
	MinPageSizeLog2 = 9  // 512 bytes
	MaxPageSizeLog2 = 24 // 16 MiB
)

// PackedPageDeviceConfig is the decoded payload of a page-device slot. All
// page devices in a storage file share this shape; they differ only in
// identity and geometry, never in the slot's wire layout.
type PackedPageDeviceConfig struct {
	UUID         uuid.UUID
	DeviceID     uint64
	PageCount    uint64
	PageSizeLog2 uint16

	// Page0Offset is the byte distance from this config's own absolute
	// slot offset to the first page of its page array. Self-relative so
	// the whole storage file can be relocated in one copy without fixing
	// up addresses.
	Page0Offset int64
}

func (c PackedPageDeviceConfig) PageSize() uint64 {
	return uint64(1) << c.PageSizeLog2
}

func (c PackedPageDeviceConfig) Validate() error {
	if c.PageSizeLog2 < MinPageSizeLog2 || c.PageSizeLog2 > MaxPageSizeLog2 {
		return fmt.Errorf("%w: page_size_log2 %d out of range [%d,%d]", storageerr.ErrInvalidArgument, c.PageSizeLog2, MinPageSizeLog2, MaxPageSizeLog2)
	}
	if c.PageCount == 0 {
		return fmt.Errorf("%w: page_count must be at least 1", storageerr.ErrInvalidArgument)
	}
	return nil
}

const pageDeviceConfigEncodedSize = 16 + 8 + 8 + 2 + 8 // 42

func EncodePageDeviceConfig(dst []byte, c PackedPageDeviceConfig) {
	w := bits.NewEncodeBuffer(dst[:ConfigSlotPayloadSize], leOrder)
	w.WriteUUID(c.UUID)
	w.PutUint64(c.DeviceID)
	w.PutUint64(c.PageCount)
	w.PutUint16(c.PageSizeLog2)
	w.PutInt64(c.Page0Offset)
	w.PadZeroes(ConfigSlotPayloadSize - pageDeviceConfigEncodedSize)
}

func DecodePageDeviceConfig(src []byte) (PackedPageDeviceConfig, error) {
	r := bits.NewReader(bits.NewSliceReader(src[:ConfigSlotPayloadSize]), leOrder)

	var c PackedPageDeviceConfig
	c.UUID = r.MustReadUUID()
	c.DeviceID = r.MustReadU64()
	c.PageCount = r.MustReadU64()
	c.PageSizeLog2 = r.MustReadU16()
	c.Page0Offset = r.MustReadI64()

	return c, c.Validate()
}
