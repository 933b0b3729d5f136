package storagefile

import (
	"fmt"
	"reflect"

	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
)

// StorageFile is the in-memory view of a fully-read config-block chain:
// every block, in order, ready to be queried by object kind or indexed
// into a StorageContext for recovery.
type StorageFile struct {
	blocks []*configBlockView
}

// FindObjectsByType returns every slot whose payload decodes as T, each
// paired with its absolute file offset. T must be a config type registered
// in this package's objectKinds (PackedPageDeviceConfig,
// PackedVolumeConfig).
func FindObjectsByType[T any](f *StorageFile) ([]FileOffsetPtr[T], error) {
	var zero T
	kind, ok := objectKinds[reflect.TypeOf(zero)]
	if !ok {
		return nil, fmt.Errorf("%w: no registered object kind for %T", storageerr.ErrInvalidArgument, zero)
	}

	var out []FileOffsetPtr[T]
	for _, blk := range f.blocks {
		for i, slot := range blk.raw.Slots {
			if slot.Tag != kind.tag {
				continue
			}
			decoded, err := kind.decode(slot.Payload[:])
			if err != nil {
				return nil, fmt.Errorf("decode slot %d in block at %d: %w", i, blk.absoluteOffset, err)
			}
			typed, ok := decoded.(T)
			if !ok {
				continue
			}
			slotAbsOffset := blk.absoluteOffset + storageconfig.ConfigBlockHeaderSize + int64(i)*storageconfig.ConfigSlotSize
			out = append(out, FileOffsetPtr[T]{AbsoluteOffset: slotAbsOffset, view: typed})
		}
	}
	return out, nil
}
