// Package pagedevice provides the live object recovered from a
// PackedPageDeviceConfig slot. It implements the recovery contract
// storagefile's registry dispatches to; the page data plane itself (read,
// write, allocate a page) is out of scope here.
package pagedevice

import (
	"context"
	"fmt"

	"github.com/dot5enko/storagefile/rawfile"
	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
	"github.com/dot5enko/storagefile/storagefile"
	"github.com/google/uuid"
)

// PageDevice is the recovered, runnable form of a page device: its
// identity and geometry, plus the absolute offset of its page array and
// the file it lives in.
type PageDevice struct {
	uuid         uuid.UUID
	deviceID     uint64
	pageCount    uint64
	pageSizeLog2 uint16
	page0Offset  int64
	file         rawfile.RawBlockFile
}

func (d *PageDevice) UUID() uuid.UUID    { return d.uuid }
func (d *PageDevice) DeviceID() uint64   { return d.deviceID }
func (d *PageDevice) PageCount() uint64  { return d.pageCount }
func (d *PageDevice) PageSize() uint64   { return uint64(1) << d.pageSizeLog2 }
func (d *PageDevice) Page0Offset() int64 { return d.page0Offset }
func (d *PageDevice) Close() error       { return nil }

// RuntimeOptions is presently empty; it exists so callers of
// storagefile.RecoverObject have a stable place to pass page-device-
// specific knobs (a cache size, an io_uring handle) without changing the
// registry's signature later.
type RuntimeOptions struct{}

func init() {
	storagefile.RegisterRecovery(storageconfig.TagPageDevice, recoverPageDevice)
}

func recoverPageDevice(ctx context.Context, slotAbsOffset int64, config any, file rawfile.RawBlockFile, runtimeOptions any) (storagefile.LiveObject, error) {
	cfg, ok := config.(storageconfig.PackedPageDeviceConfig)
	if !ok {
		return nil, fmt.Errorf("%w: page device recovery got unexpected config type %T", storageerr.ErrInvalidArgument, config)
	}

	return &PageDevice{
		uuid:         cfg.UUID,
		deviceID:     cfg.DeviceID,
		pageCount:    cfg.PageCount,
		pageSizeLog2: cfg.PageSizeLog2,
		page0Offset:  slotAbsOffset + cfg.Page0Offset,
		file:         file,
	}, nil
}
