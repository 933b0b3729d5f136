package storagefile

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/dot5enko/storagefile/rawfile"
	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type indexKey struct {
	tag  storageconfig.Tag
	uuid uuid.UUID
}

type indexedSlot struct {
	tag           storageconfig.Tag
	payload       [storageconfig.ConfigSlotPayloadSize]byte
	slotAbsOffset int64
	file          rawfile.RawBlockFile
}

// StorageContext indexes one or more StorageFiles by (tag, uuid) and
// recovers live objects from that index on demand, deduping concurrent
// recovers of the same object the way the teacher's loadGroup deduped
// concurrent slab loads.
type StorageContext struct {
	mu    sync.RWMutex
	index map[indexKey]indexedSlot

	recoverGroup singleflight.Group
}

func NewStorageContext() *StorageContext {
	return &StorageContext{index: map[indexKey]indexedSlot{}}
}

// AddExistingFile indexes every slot in an already-read StorageFile
// against file, the RawBlockFile backing it. A duplicate (tag, uuid) pair,
// across files or within one, is rejected.
func (c *StorageContext) AddExistingFile(file rawfile.RawBlockFile, sf *StorageFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, blk := range sf.blocks {
		for i, slot := range blk.raw.Slots {
			id, ok := extractUUID(slot)
			if !ok {
				continue
			}

			key := indexKey{tag: slot.Tag, uuid: id}
			if _, exists := c.index[key]; exists {
				return fmt.Errorf("%w: uuid %s already indexed for tag %s", storageerr.ErrAlreadyExists, id, slot.Tag)
			}

			slotAbsOffset := blk.absoluteOffset + storageconfig.ConfigBlockHeaderSize + int64(i)*storageconfig.ConfigSlotSize
			c.index[key] = indexedSlot{tag: slot.Tag, payload: slot.Payload, slotAbsOffset: slotAbsOffset, file: file}
			added++
		}
	}

	color.Green(" +++ indexed storage file: %d object(s)", added)
	return nil
}

// extractUUID reads the identity uuid every registered payload kind
// carries as its first 16 bytes.
func extractUUID(slot storageconfig.ConfigSlot) (uuid.UUID, bool) {
	if slot.Tag == storageconfig.TagInvalid {
		return uuid.UUID{}, false
	}
	var id uuid.UUID
	copy(id[:], slot.Payload[:16])
	return id, true
}

// RecoverObject recovers the live object identified by id, using
// ConfigT's registered tag to pick it out of the index and the matching
// RecoveryFunc to bring it to life. Concurrent recovers of the same
// (ConfigT, id) pair collapse into a single underlying call.
func RecoverObject[ConfigT any](ctx context.Context, c *StorageContext, id uuid.UUID, runtimeOptions any) (LiveObject, error) {
	var zeroConfig ConfigT
	kind, ok := objectKinds[reflect.TypeOf(zeroConfig)]
	if !ok {
		return nil, fmt.Errorf("%w: no registered object kind for %T", storageerr.ErrInvalidArgument, zeroConfig)
	}

	key := indexKey{tag: kind.tag, uuid: id}
	groupKey := fmt.Sprintf("%d:%s", kind.tag, id)

	result, err, _ := c.recoverGroup.Do(groupKey, func() (any, error) {
		c.mu.RLock()
		slot, found := c.index[key]
		c.mu.RUnlock()
		if !found {
			return nil, fmt.Errorf("%w: uuid %s not indexed for tag %s", storageerr.ErrNotFound, id, kind.tag)
		}

		config, err := kind.decode(slot.payload[:])
		if err != nil {
			return nil, fmt.Errorf("decode recovered config for %s: %w", id, err)
		}

		fn, err := recoveryFuncFor(kind.tag)
		if err != nil {
			return nil, err
		}

		live, err := fn(ctx, slot.slotAbsOffset, config, slot.file, runtimeOptions)
		if err != nil {
			return nil, fmt.Errorf("recover object %s: %w", id, err)
		}
		return live, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(LiveObject), nil
}
