package storagefile

import (
	"context"
	"fmt"
	"math"

	"github.com/dot5enko/storagefile/bits"
	"github.com/dot5enko/storagefile/compression"
	"github.com/dot5enko/storagefile/rawfile"
	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// FastIoRingPageDeviceInit, when true, skips the explicit zero-fill writes
// for a page device's array and relies on TruncateAtLeast having already
// zero-extended the file. Off by default: only a real file on a
// filesystem that guarantees zero-extension can safely flip this.
const FastIoRingPageDeviceInit = false

type dataRegionKind int

const (
	kindZeroFillSectors dataRegionKind = iota
	kindBytes
)

const zeroFillSectorSize = 512

// zeroFillPoolSize bounds how many in-flight zero-fill buffers Flush
// keeps alive at once; writes are sequential so a small pool is enough to
// avoid a fresh allocation per sector.
const zeroFillPoolSize = 8

// pendingDataRegion is a data-plane write planned by AddObject but not yet
// issued. end is the logical end offset this region reserves in the file
// (drives TruncateAtLeast sizing and the next block's placement), which
// for a page device's array is its full size even though the region only
// actually writes sectorCount consecutive 512-byte sectors starting at
// page 0.
type pendingDataRegion struct {
	kind dataRegionKind
	end  int64

	offset      int64 // kindZeroFillSectors
	sectorCount int    // kindZeroFillSectors

	bytesOffset int64  // kindBytes
	bytes       []byte // kindBytes
}

type pendingBlock struct {
	offset int64
	slots  []storageconfig.ConfigSlot
}

// StorageFileBuilder plans a storage file's config-block chain and data
// regions, then writes everything in one Flush call. Nothing touches
// RawBlockFile until Flush runs: AddPageDeviceConfig/AddVolumeConfig only
// compute offsets and stage in-memory state.
type StorageFileBuilder struct {
	file       rawfile.RawBlockFile
	baseOffset int64

	blocks      []*pendingBlock
	dataRegions []pendingDataRegion

	cursor       int64
	nextDeviceID uint64
}

func NewStorageFileBuilder(file rawfile.RawBlockFile, baseOffset int64) *StorageFileBuilder {
	return &StorageFileBuilder{file: file, baseOffset: baseOffset}
}

// reserveSlot opens a new config block if the current one is full (or
// none exists yet) and returns the next free slot in it.
func (b *StorageFileBuilder) reserveSlot() (blk *pendingBlock, slotIndex int, slotAbsOffset int64) {
	needNewBlock := len(b.blocks) == 0 || len(b.blocks[len(b.blocks)-1].slots) >= storageconfig.MaxConfigSlotsPerBlock

	if needNewBlock {
		var newBlockOffset int64
		if len(b.blocks) == 0 {
			newBlockOffset = bits.RoundUp(b.baseOffset, storageconfig.ConfigBlockSize)
		} else {
			newBlockOffset = bits.RoundUp(b.cursor, storageconfig.ConfigBlockSize)
		}
		b.blocks = append(b.blocks, &pendingBlock{offset: newBlockOffset})
		b.cursor = newBlockOffset + storageconfig.ConfigBlockSize
	}

	blk = b.blocks[len(b.blocks)-1]
	slotIndex = len(blk.slots)
	blk.slots = append(blk.slots, storageconfig.ConfigSlot{})

	slotAbsOffset = blk.offset + storageconfig.ConfigBlockHeaderSize + int64(slotIndex)*storageconfig.ConfigSlotSize
	return blk, slotIndex, slotAbsOffset
}

// PageDeviceConfigOptions describes a page device to add. UUID and
// DeviceID default to a fresh random uuid and an auto-incrementing id
// respectively when left nil.
type PageDeviceConfigOptions struct {
	UUID         *uuid.UUID
	DeviceID     *uint64
	PageCount    uint64
	PageSizeLog2 uint16
}

func (b *StorageFileBuilder) AddPageDeviceConfig(opts PageDeviceConfigOptions) (FileOffsetPtr[storageconfig.PackedPageDeviceConfig], error) {
	var zero FileOffsetPtr[storageconfig.PackedPageDeviceConfig]

	if opts.PageSizeLog2 < storageconfig.MinPageSizeLog2 || opts.PageSizeLog2 > storageconfig.MaxPageSizeLog2 {
		return zero, fmt.Errorf("%w: page_size_log2 %d out of range", storageerr.ErrInvalidArgument, opts.PageSizeLog2)
	}
	if opts.PageCount == 0 {
		return zero, fmt.Errorf("%w: page_count must be at least 1", storageerr.ErrInvalidArgument)
	}

	pageSize := int64(1) << opts.PageSizeLog2
	totalPageBytes := int64(opts.PageCount) * pageSize
	if totalPageBytes/pageSize != int64(opts.PageCount) {
		return zero, fmt.Errorf("%w: page_count*page_size overflows", storageerr.ErrOutOfRange)
	}

	blk, slotIndex, slotAbsOffset := b.reserveSlot()

	page0 := bits.RoundUp(b.cursor, pageSize)
	if page0 > math.MaxInt64-totalPageBytes {
		return zero, fmt.Errorf("%w: page array would overflow file offset range", storageerr.ErrOutOfRange)
	}
	newCursor := page0 + totalPageBytes
	b.cursor = newCursor

	var id uuid.UUID
	if opts.UUID != nil {
		id = *opts.UUID
	} else {
		id = uuid.New()
	}

	var deviceID uint64
	if opts.DeviceID != nil {
		deviceID = *opts.DeviceID
	} else {
		deviceID = b.nextDeviceID
		b.nextDeviceID++
	}

	cfg := storageconfig.PackedPageDeviceConfig{
		UUID:         id,
		DeviceID:     deviceID,
		PageCount:    opts.PageCount,
		PageSizeLog2: opts.PageSizeLog2,
		Page0Offset:  page0 - slotAbsOffset,
	}

	var payload [storageconfig.ConfigSlotPayloadSize]byte
	storageconfig.EncodePageDeviceConfig(payload[:], cfg)
	blk.slots[slotIndex] = storageconfig.ConfigSlot{Tag: storageconfig.TagPageDevice, Payload: payload}

	b.dataRegions = append(b.dataRegions, pendingDataRegion{
		kind:        kindZeroFillSectors,
		offset:      page0,
		sectorCount: int(opts.PageCount),
		end:         newCursor,
	})

	return FileOffsetPtr[storageconfig.PackedPageDeviceConfig]{AbsoluteOffset: slotAbsOffset, view: cfg}, nil
}

// VolumeConfigOptions describes a volume to add. Metadata is compressed
// with lz4 before being stored; pass nil for no metadata.
type VolumeConfigOptions struct {
	UUID               *uuid.UUID
	RootPageDeviceUUID uuid.UUID
	Name               string
	Metadata           []byte
}

func (b *StorageFileBuilder) AddVolumeConfig(opts VolumeConfigOptions) (FileOffsetPtr[storageconfig.PackedVolumeConfig], error) {
	var zero FileOffsetPtr[storageconfig.PackedVolumeConfig]

	compressedMetadata, err := compression.CompressLz4Bytes(opts.Metadata)
	if err != nil {
		return zero, fmt.Errorf("%w: compress volume metadata: %s", storageerr.ErrInvalidArgument, err)
	}

	blk, slotIndex, slotAbsOffset := b.reserveSlot()

	var id uuid.UUID
	if opts.UUID != nil {
		id = *opts.UUID
	} else {
		id = uuid.New()
	}

	nameRecordAbsOffset := slotAbsOffset + 2 + storageconfig.VolumeConfigNameOffset
	metaRecordAbsOffset := slotAbsOffset + 2 + storageconfig.VolumeConfigMetadataOffset

	namePB, nameRegion, err := b.planPackedBytesField([]byte(opts.Name), nameRecordAbsOffset)
	if err != nil {
		return zero, fmt.Errorf("volume name: %w", err)
	}
	metaPB, metaRegion, err := b.planPackedBytesField(compressedMetadata, metaRecordAbsOffset)
	if err != nil {
		return zero, fmt.Errorf("volume metadata: %w", err)
	}

	cfg := storageconfig.PackedVolumeConfig{
		UUID:               id,
		RootPageDeviceUUID: opts.RootPageDeviceUUID,
		Name:               namePB,
		Metadata:           metaPB,
	}

	var payload [storageconfig.ConfigSlotPayloadSize]byte
	storageconfig.EncodeVolumeConfig(payload[:], cfg)
	blk.slots[slotIndex] = storageconfig.ConfigSlot{Tag: storageconfig.TagVolume, Payload: payload}

	if nameRegion != nil {
		b.dataRegions = append(b.dataRegions, *nameRegion)
	}
	if metaRegion != nil {
		b.dataRegions = append(b.dataRegions, *metaRegion)
	}

	return FileOffsetPtr[storageconfig.PackedVolumeConfig]{AbsoluteOffset: slotAbsOffset, view: cfg}, nil
}

// planPackedBytesField decides whether payload fits inline or needs an
// external data region, allocating file space from the builder's data
// cursor in the latter case.
func (b *StorageFileBuilder) planPackedBytesField(payload []byte, recordAbsOffset int64) (storageconfig.PackedBytes, *pendingDataRegion, error) {
	switch {
	case len(payload) == 0:
		pb, err := storageconfig.NewExternalPackedBytes(storageconfig.PackedBytesSize, 0)
		return pb, nil, err

	case len(payload) <= 4:
		pb, err := storageconfig.NewInlinePackedBytes(payload)
		return pb, nil, err

	default:
		offset := b.cursor
		relOffset := offset - recordAbsOffset
		pb, err := storageconfig.NewExternalPackedBytes(relOffset, len(payload))
		if err != nil {
			return storageconfig.PackedBytes{}, nil, err
		}
		b.cursor = offset + int64(len(payload))
		region := pendingDataRegion{
			kind:        kindBytes,
			bytesOffset: offset,
			bytes:       append([]byte(nil), payload...),
			end:         b.cursor,
		}
		return pb, &region, nil
	}
}

func (b *StorageFileBuilder) finalFileSize() int64 {
	var size int64
	for _, blk := range b.blocks {
		if end := blk.offset + storageconfig.ConfigBlockSize; end > size {
			size = end
		}
	}
	for _, r := range b.dataRegions {
		if r.end > size {
			size = r.end
		}
	}
	return size
}

// Flush writes every planned data region and config block to the
// underlying RawBlockFile. Calling Flush with nothing added is a no-op:
// no I/O of any kind is issued.
func (b *StorageFileBuilder) Flush(ctx context.Context) error {
	if len(b.blocks) == 0 {
		return nil
	}

	if err := b.file.TruncateAtLeast(ctx, b.finalFileSize()); err != nil {
		return fmt.Errorf("%w: truncate: %s", storageerr.ErrIO, err)
	}

	if FastIoRingPageDeviceInit {
		color.Yellow(" ~~~ skipping explicit zero-fill: relying on truncate_at_least to zero-extend")
	}

	pool := rawfile.NewFixedSizeBufferPool(zeroFillPoolSize, zeroFillSectorSize)
	for _, region := range b.dataRegions {
		switch region.kind {
		case kindZeroFillSectors:
			if FastIoRingPageDeviceInit {
				continue
			}
			for i := 0; i < region.sectorCount; i++ {
				off := region.offset + int64(i)*zeroFillSectorSize
				buf, id := pool.Get()
				err := writeAllAt(ctx, b.file, off, buf)
				pool.Return(id)
				if err != nil {
					return err
				}
			}
		case kindBytes:
			if len(region.bytes) == 0 {
				continue
			}
			if err := writeAllAt(ctx, b.file, region.bytesOffset, region.bytes); err != nil {
				return err
			}
		}
	}

	for i, blk := range b.blocks {
		cb := storageconfig.ConfigBlock{Version: storageconfig.CurrentVersion, Slots: blk.slots}
		if i == 0 {
			cb.PrevOffset = storageconfig.NullFileOffset
		} else {
			cb.PrevOffset = b.blocks[i-1].offset - blk.offset
		}
		if i == len(b.blocks)-1 {
			cb.NextOffset = storageconfig.NullFileOffset
		} else {
			cb.NextOffset = b.blocks[i+1].offset - blk.offset
		}

		encoded, err := cb.Encode()
		if err != nil {
			return fmt.Errorf("encode config block at %d: %w", blk.offset, err)
		}
		if err := writeAllAt(ctx, b.file, blk.offset, encoded); err != nil {
			return err
		}
	}

	color.Green(" +++ flushed storage file: %d config block(s), base offset %d", len(b.blocks), b.baseOffset)
	return nil
}

func writeAllAt(ctx context.Context, file rawfile.RawBlockFile, offset int64, buf []byte) error {
	for len(buf) > 0 {
		n, err := file.WriteSome(ctx, offset, buf)
		if err != nil {
			return fmt.Errorf("%w: write_some at %d: %s", storageerr.ErrIO, offset, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: write_some at %d made no progress", storageerr.ErrIO, offset)
		}
		buf = buf[n:]
		offset += int64(n)
	}
	return nil
}
