package rawfile

import (
	"context"
	"fmt"
	"os"

	"github.com/dot5enko/storagefile/storageerr"
	"golang.org/x/sys/unix"
)

// File is a RawBlockFile backed by a real file, read and written through
// pread(2)/pwrite(2) so concurrent callers never fight over a shared file
// offset.
type File struct {
	f *os.File
}

func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %s", storageerr.ErrIO, path, err)
	}
	return &File{f: f}, nil
}

func (r *File) Close() error {
	return r.f.Close()
}

func (r *File) WriteSome(ctx context.Context, offset int64, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := unix.Pwrite(int(r.f.Fd()), buf, offset)
	if err != nil {
		return n, fmt.Errorf("%w: pwrite at %d: %s", storageerr.ErrIO, offset, err)
	}
	return n, nil
}

func (r *File) ReadSome(ctx context.Context, offset int64, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := unix.Pread(int(r.f.Fd()), buf, offset)
	if err != nil {
		return n, fmt.Errorf("%w: pread at %d: %s", storageerr.ErrIO, offset, err)
	}
	return n, nil
}

func (r *File) TruncateAtLeast(ctx context.Context, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := r.f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %s", storageerr.ErrIO, err)
	}
	if info.Size() >= size {
		return nil
	}

	if err := unix.Ftruncate(int(r.f.Fd()), size); err != nil {
		return fmt.Errorf("%w: ftruncate to %d: %s", storageerr.ErrIO, size, err)
	}
	return nil
}
