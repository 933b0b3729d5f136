// Package rawfile provides the external-collaborator abstraction that
// storagefile's builder and reader write through: a block-addressable
// file that knows nothing about config blocks, page devices, or volumes.
package rawfile

import "context"

// RawBlockFile is the narrow interface storagefile needs from whatever
// actually holds the bytes: a real file, a read-only mmap, or (in tests)
// an in-memory stand-in.
type RawBlockFile interface {
	// WriteSome writes as much of buf as it can starting at offset,
	// returning how many bytes were actually written. Callers must retry
	// on a short write; WriteSome itself never retries.
	WriteSome(ctx context.Context, offset int64, buf []byte) (int, error)

	// ReadSome reads as much as it can into buf starting at offset,
	// returning how many bytes were actually read.
	ReadSome(ctx context.Context, offset int64, buf []byte) (int, error)

	// TruncateAtLeast grows the file to at least size bytes. It is a
	// no-op if the file is already that large or larger.
	TruncateAtLeast(ctx context.Context, size int64) error
}
