package storagefile

// FileOffsetPtr pairs a decoded view with the absolute file offset it was
// read from (or will be written to), mirroring how config-block offsets
// are threaded through every recovery and construction path in this
// package: a decoded value is useless on its own once any field inside it
// is expressed relative to where it lives on disk.
type FileOffsetPtr[T any] struct {
	AbsoluteOffset int64
	view           T
}

func (p FileOffsetPtr[T]) Get() T {
	return p.view
}
