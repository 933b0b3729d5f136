package storageconfig

import (
	"errors"
	"testing"

	"github.com/dot5enko/storagefile/storageerr"
	"github.com/google/uuid"
)

func samplePageDeviceSlot(t *testing.T) ConfigSlot {
	t.Helper()

	cfg := PackedPageDeviceConfig{
		UUID:         uuid.New(),
		DeviceID:     7,
		PageCount:    100,
		PageSizeLog2: 12,
		Page0Offset:  4096,
	}

	var payload [ConfigSlotPayloadSize]byte
	EncodePageDeviceConfig(payload[:], cfg)
	return ConfigSlot{Tag: TagPageDevice, Payload: payload}
}

func TestConfigBlockRoundTrip(t *testing.T) {
	slot := samplePageDeviceSlot(t)

	block := ConfigBlock{
		Version:    CurrentVersion,
		PrevOffset: NullFileOffset,
		NextOffset: 8192,
		Slots:      []ConfigSlot{slot},
	}

	encoded, err := block.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != ConfigBlockSize {
		t.Fatalf("Encode() length = %d, want %d", len(encoded), ConfigBlockSize)
	}

	decoded, err := DecodeConfigBlock(encoded)
	if err != nil {
		t.Fatalf("DecodeConfigBlock: %v", err)
	}

	if decoded.Version != block.Version {
		t.Errorf("Version = %d, want %d", decoded.Version, block.Version)
	}
	if decoded.PrevOffset != block.PrevOffset {
		t.Errorf("PrevOffset = %d, want %d", decoded.PrevOffset, block.PrevOffset)
	}
	if decoded.NextOffset != block.NextOffset {
		t.Errorf("NextOffset = %d, want %d", decoded.NextOffset, block.NextOffset)
	}
	if len(decoded.Slots) != 1 {
		t.Fatalf("len(Slots) = %d, want 1", len(decoded.Slots))
	}
	if decoded.Slots[0].Tag != TagPageDevice {
		t.Errorf("Slots[0].Tag = %v, want %v", decoded.Slots[0].Tag, TagPageDevice)
	}
}

func TestConfigBlockDetectsCorruption(t *testing.T) {
	block := ConfigBlock{Version: CurrentVersion, PrevOffset: NullFileOffset, NextOffset: NullFileOffset}
	encoded, err := block.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	encoded[100] ^= 0xFF

	_, err = DecodeConfigBlock(encoded)
	if !errors.Is(err, storageerr.ErrDataLoss) {
		t.Fatalf("DecodeConfigBlock after corruption: got %v, want ErrDataLoss", err)
	}
}

func TestConfigBlockRejectsTooManySlots(t *testing.T) {
	slots := make([]ConfigSlot, MaxConfigSlotsPerBlock+1)
	block := ConfigBlock{Version: CurrentVersion, Slots: slots}

	if _, err := block.Encode(); !errors.Is(err, storageerr.ErrInvalidArgument) {
		t.Fatalf("Encode with too many slots: got %v, want ErrInvalidArgument", err)
	}
}

func TestConfigSlotAbsoluteOffsetFormula(t *testing.T) {
	const blockOffset = 4096

	for slotIndex := 0; slotIndex < MaxConfigSlotsPerBlock; slotIndex++ {
		got := blockOffset + ConfigBlockHeaderSize + int64(slotIndex)*ConfigSlotSize
		want := int64(blockOffset) + 64 + int64(slotIndex)*64
		if got != want {
			t.Fatalf("slot %d: offset formula mismatch: %d != %d", slotIndex, got, want)
		}
	}
}
