package rawfile_test

import (
	"testing"

	"github.com/dot5enko/storagefile/rawfile"
)

func TestFixedSizeBufferPoolReuse(t *testing.T) {
	pool := rawfile.NewFixedSizeBufferPool(2, 512)

	buf1, id1 := pool.Get()
	if len(buf1) != 512 {
		t.Fatalf("len(buf1) = %d, want 512", len(buf1))
	}
	_, id2 := pool.Get()
	if id1 == id2 {
		t.Fatalf("Get() returned the same buffer id twice without a Return: %d", id1)
	}

	pool.Return(id1)
	pool.Return(id2)

	buf3, _ := pool.Get()
	if len(buf3) != 512 {
		t.Fatalf("len(buf3) = %d, want 512", len(buf3))
	}
}

func TestFixedSizeBufferPoolBuffersDontOverlap(t *testing.T) {
	pool := rawfile.NewFixedSizeBufferPool(3, 16)

	a, _ := pool.Get()
	b, _ := pool.Get()

	for i := range a {
		a[i] = 0xAA
	}
	for i := range b {
		b[i] = 0xBB
	}

	for i, v := range a {
		if v != 0xAA {
			t.Fatalf("buffer a corrupted at %d: %x", i, v)
		}
	}
}
