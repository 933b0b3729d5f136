package storagefile

import (
	"context"
	"fmt"
	"log"

	"github.com/dot5enko/storagefile/bits"
	"github.com/dot5enko/storagefile/rawfile"
	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
)

// configBlockView is a decoded block paired with its own absolute file
// offset, so the chain can be walked and slots resolved against it.
type configBlockView struct {
	raw            storageconfig.ConfigBlock
	absoluteOffset int64
}

// ReadStorageFile walks the config-block chain starting at the first
// block at or after startOffset and returns every block found, in chain
// order. The starting block must be a chain head (PrevOffset ==
// NullFileOffset); anything else, a bad magic, a bad version, a CRC-64
// mismatch, or a cycle, fails with storageerr.ErrDataLoss.
func ReadStorageFile(ctx context.Context, file rawfile.RawBlockFile, startOffset int64) (*StorageFile, error) {
	offset := bits.RoundUp(startOffset, storageconfig.ConfigBlockSize)

	decoded, err := readConfigBlockAt(ctx, file, offset)
	if err != nil {
		return nil, err
	}
	if decoded.PrevOffset != storageconfig.NullFileOffset {
		return nil, fmt.Errorf("%w: block at %d is not a chain head (prev_offset=%d)", storageerr.ErrDataLoss, offset, decoded.PrevOffset)
	}

	blocks := []*configBlockView{{raw: decoded, absoluteOffset: offset}}
	seen := map[int64]bool{offset: true}

	for decoded.NextOffset != storageconfig.NullFileOffset {
		nextOffset := offset + decoded.NextOffset
		if seen[nextOffset] {
			return nil, fmt.Errorf("%w: cyclic config block chain detected at offset %d", storageerr.ErrDataLoss, nextOffset)
		}

		decoded, err = readConfigBlockAt(ctx, file, nextOffset)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, &configBlockView{raw: decoded, absoluteOffset: nextOffset})
		seen[nextOffset] = true
		offset = nextOffset
	}

	log.Printf(" -- read storage file chain: %d config block(s) starting at %d", len(blocks), blocks[0].absoluteOffset)
	return &StorageFile{blocks: blocks}, nil
}

func readConfigBlockAt(ctx context.Context, file rawfile.RawBlockFile, offset int64) (storageconfig.ConfigBlock, error) {
	raw := make([]byte, storageconfig.ConfigBlockSize)

	n, err := readAllAt(ctx, file, offset, raw)
	if err != nil {
		return storageconfig.ConfigBlock{}, err
	}
	if n != len(raw) {
		return storageconfig.ConfigBlock{}, fmt.Errorf("%w: short read of config block at %d (%d of %d bytes)", storageerr.ErrIO, offset, n, len(raw))
	}

	decoded, err := storageconfig.DecodeConfigBlock(raw)
	if err != nil {
		return storageconfig.ConfigBlock{}, fmt.Errorf("decode config block at %d: %w", offset, err)
	}
	return decoded, nil
}

func readAllAt(ctx context.Context, file rawfile.RawBlockFile, offset int64, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := file.ReadSome(ctx, offset+int64(total), buf[total:])
		if err != nil {
			return total, fmt.Errorf("%w: read_some at %d: %s", storageerr.ErrIO, offset+int64(total), err)
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}
