// Package storageerr holds the sentinel errors shared by storageconfig,
// rawfile, and storagefile, so callers can branch on failure kind with
// errors.Is instead of parsing messages.
package storageerr

import "errors"

var (
	// ErrInvalidArgument means the caller passed a value that is malformed
	// independent of any on-disk state (bad page size, payload too long, ...).
	ErrInvalidArgument = errors.New("storage: invalid argument")

	// ErrOutOfRange means a computed offset or size doesn't fit in its
	// on-disk encoding (e.g. a 24-bit field).
	ErrOutOfRange = errors.New("storage: value out of range")

	// ErrIO wraps a failure reported by the underlying RawBlockFile.
	ErrIO = errors.New("storage: io error")

	// ErrDataLoss means bytes were read successfully but failed validation:
	// bad magic, bad version, or a CRC-64 mismatch.
	ErrDataLoss = errors.New("storage: data loss")

	// ErrNotFound means a uuid was looked up but never indexed.
	ErrNotFound = errors.New("storage: object not found")

	// ErrAlreadyExists means a uuid collides with one already indexed.
	ErrAlreadyExists = errors.New("storage: object already exists")

	// ErrReadOnly means a write was attempted against a read-only RawBlockFile.
	ErrReadOnly = errors.New("storage: file is read-only")
)
