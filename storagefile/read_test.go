package storagefile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dot5enko/storagefile/rawfile"
	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
	"github.com/dot5enko/storagefile/storagefile"
)

func writeBlock(t *testing.T, mock *rawfile.Mock, offset int64, blk storageconfig.ConfigBlock) {
	t.Helper()
	encoded, err := blk.Encode()
	if err != nil {
		t.Fatalf("Encode block at %d: %v", offset, err)
	}
	if _, err := mock.WriteSome(context.Background(), offset, encoded); err != nil {
		t.Fatalf("write block at %d: %v", offset, err)
	}
}

func TestReadStorageFileRejectsNonHeadStart(t *testing.T) {
	const block1Offset = 0
	const block2Offset = storageconfig.ConfigBlockSize

	mock := rawfile.NewMock()
	writeBlock(t, mock, block1Offset, storageconfig.ConfigBlock{
		Version:    storageconfig.CurrentVersion,
		PrevOffset: storageconfig.NullFileOffset,
		NextOffset: block2Offset - block1Offset,
	})
	writeBlock(t, mock, block2Offset, storageconfig.ConfigBlock{
		Version:    storageconfig.CurrentVersion,
		PrevOffset: block1Offset - block2Offset,
		NextOffset: storageconfig.NullFileOffset,
	})

	_, err := storagefile.ReadStorageFile(context.Background(), mock, block2Offset)
	if !errors.Is(err, storageerr.ErrDataLoss) {
		t.Fatalf("ReadStorageFile from a non-head block: got %v, want ErrDataLoss", err)
	}
}

func TestReadStorageFileDetectsCycle(t *testing.T) {
	const block1Offset = 0
	const block2Offset = storageconfig.ConfigBlockSize

	mock := rawfile.NewMock()
	writeBlock(t, mock, block1Offset, storageconfig.ConfigBlock{
		Version:    storageconfig.CurrentVersion,
		PrevOffset: storageconfig.NullFileOffset,
		NextOffset: block2Offset - block1Offset,
	})
	writeBlock(t, mock, block2Offset, storageconfig.ConfigBlock{
		Version:    storageconfig.CurrentVersion,
		PrevOffset: block1Offset - block2Offset,
		NextOffset: block1Offset - block2Offset,
	})

	_, err := storagefile.ReadStorageFile(context.Background(), mock, block1Offset)
	if !errors.Is(err, storageerr.ErrDataLoss) {
		t.Fatalf("ReadStorageFile over a cyclic chain: got %v, want ErrDataLoss", err)
	}
}

func TestReadStorageFileRoundsStartOffsetUpToBlockSize(t *testing.T) {
	mock := rawfile.NewMock()
	writeBlock(t, mock, storageconfig.ConfigBlockSize, storageconfig.ConfigBlock{
		Version:    storageconfig.CurrentVersion,
		PrevOffset: storageconfig.NullFileOffset,
		NextOffset: storageconfig.NullFileOffset,
	})

	if _, err := storagefile.ReadStorageFile(context.Background(), mock, 1); err != nil {
		t.Fatalf("ReadStorageFile with unaligned start offset: %v", err)
	}
}
