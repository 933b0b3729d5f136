// Package volume provides the live object recovered from a
// PackedVolumeConfig slot, exercising PackedBytes and the lz4-compressed
// metadata blob end to end.
package volume

import (
	"context"
	"fmt"

	"github.com/dot5enko/storagefile/compression"
	"github.com/dot5enko/storagefile/rawfile"
	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
	"github.com/dot5enko/storagefile/storagefile"
	"github.com/google/uuid"
)

// Volume is the recovered form of a volume: its identity, its root page
// device, and its (decompressed) name/metadata blobs.
type Volume struct {
	uuid               uuid.UUID
	rootPageDeviceUUID uuid.UUID
	name               string
	metadata           []byte
}

func (v *Volume) UUID() uuid.UUID               { return v.uuid }
func (v *Volume) RootPageDeviceUUID() uuid.UUID { return v.rootPageDeviceUUID }
func (v *Volume) Name() string                  { return v.name }
func (v *Volume) Metadata() []byte              { return v.metadata }
func (v *Volume) Close() error                  { return nil }

type RuntimeOptions struct{}

func init() {
	storagefile.RegisterRecovery(storageconfig.TagVolume, recoverVolume)
}

func recoverVolume(ctx context.Context, slotAbsOffset int64, config any, file rawfile.RawBlockFile, runtimeOptions any) (storagefile.LiveObject, error) {
	cfg, ok := config.(storageconfig.PackedVolumeConfig)
	if !ok {
		return nil, fmt.Errorf("%w: volume recovery got unexpected config type %T", storageerr.ErrInvalidArgument, config)
	}

	name, err := resolvePackedBytes(ctx, file, cfg.Name, slotAbsOffset+2+storageconfig.VolumeConfigNameOffset)
	if err != nil {
		return nil, fmt.Errorf("resolve volume name: %w", err)
	}

	rawMetadata, err := resolvePackedBytes(ctx, file, cfg.Metadata, slotAbsOffset+2+storageconfig.VolumeConfigMetadataOffset)
	if err != nil {
		return nil, fmt.Errorf("resolve volume metadata: %w", err)
	}

	metadata, err := compression.DecompressLz4Bytes(rawMetadata)
	if err != nil {
		return nil, fmt.Errorf("decompress volume metadata: %w", err)
	}

	return &Volume{
		uuid:               cfg.UUID,
		rootPageDeviceUUID: cfg.RootPageDeviceUUID,
		name:               string(name),
		metadata:           metadata,
	}, nil
}

func resolvePackedBytes(ctx context.Context, file rawfile.RawBlockFile, pb storageconfig.PackedBytes, recordAbsOffset int64) ([]byte, error) {
	if pb.IsInline() {
		return pb.InlineData(), nil
	}

	size := pb.Size()
	if size == 0 {
		return nil, nil
	}

	buf := make([]byte, size)
	off := pb.ExternalOffset(recordAbsOffset)
	n, err := file.ReadSome(ctx, off, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: read external bytes at %d: %s", storageerr.ErrIO, off, err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: short read of external bytes at %d (%d of %d)", storageerr.ErrIO, off, n, size)
	}
	return buf, nil
}
