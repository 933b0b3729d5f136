package compression

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	zw.Write(src)
	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// CompressLz4Bytes is CompressLz4 without the caller needing its own
// bytes.Buffer. An empty src compresses to nil, not an empty lz4 frame.
func CompressLz4Bytes(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := CompressLz4(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressLz4Bytes reverses CompressLz4Bytes.
func DecompressLz4Bytes(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	zr := lz4.NewReader(bytes.NewReader(src))
	return io.ReadAll(zr)
}
