package rawfile

import (
	"context"
	"fmt"
	"io"

	"github.com/dot5enko/storagefile/storageerr"
	"golang.org/x/exp/mmap"
)

// MMapFile is a read-only RawBlockFile backed by a memory-mapped file. It
// exists to exercise the design requirement that every on-disk offset in
// this package stays self-relative and therefore safe to dereference
// straight out of a mapped region, with no relocation step.
type MMapFile struct {
	r *mmap.ReaderAt
}

func OpenMMap(path string) (*MMapFile, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap open %s: %s", storageerr.ErrIO, path, err)
	}
	return &MMapFile{r: r}, nil
}

func (m *MMapFile) Close() error {
	return m.r.Close()
}

func (m *MMapFile) ReadSome(ctx context.Context, offset int64, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := m.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: mmap read at %d: %s", storageerr.ErrIO, offset, err)
	}
	return n, nil
}

func (m *MMapFile) WriteSome(context.Context, int64, []byte) (int, error) {
	return 0, fmt.Errorf("%w: mmap-backed raw file", storageerr.ErrReadOnly)
}

func (m *MMapFile) TruncateAtLeast(context.Context, int64) error {
	return fmt.Errorf("%w: mmap-backed raw file", storageerr.ErrReadOnly)
}
