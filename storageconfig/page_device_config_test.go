package storageconfig

import (
	"errors"
	"testing"

	"github.com/dot5enko/storagefile/storageerr"
	"github.com/google/uuid"
)

func TestPageDeviceConfigRoundTrip(t *testing.T) {
	cfg := PackedPageDeviceConfig{
		UUID:         uuid.New(),
		DeviceID:     42,
		PageCount:    1000,
		PageSizeLog2: 16,
		Page0Offset:  -123456,
	}

	var payload [ConfigSlotPayloadSize]byte
	EncodePageDeviceConfig(payload[:], cfg)

	decoded, err := DecodePageDeviceConfig(payload[:])
	if err != nil {
		t.Fatalf("DecodePageDeviceConfig: %v", err)
	}

	if decoded != cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, cfg)
	}
	if decoded.PageSize() != 1<<16 {
		t.Errorf("PageSize() = %d, want %d", decoded.PageSize(), uint64(1)<<16)
	}
}

func TestPageDeviceConfigValidatesPageSize(t *testing.T) {
	cfg := PackedPageDeviceConfig{UUID: uuid.New(), PageCount: 1, PageSizeLog2: MaxPageSizeLog2 + 1}
	if err := cfg.Validate(); !errors.Is(err, storageerr.ErrInvalidArgument) {
		t.Fatalf("Validate() = %v, want ErrInvalidArgument", err)
	}
}

func TestPageDeviceConfigValidatesPageCount(t *testing.T) {
	cfg := PackedPageDeviceConfig{UUID: uuid.New(), PageCount: 0, PageSizeLog2: 12}
	if err := cfg.Validate(); !errors.Is(err, storageerr.ErrInvalidArgument) {
		t.Fatalf("Validate() = %v, want ErrInvalidArgument", err)
	}
}
