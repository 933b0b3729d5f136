package bits

import "testing"

func TestRoundUp(t *testing.T) {
	cases := []struct {
		value, alignment, want int64
	}{
		{0, 4096, 0},
		{1, 4096, 4096},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
		{512, 512, 512},
		{513, 512, 1024},
	}

	for _, c := range cases {
		if got := RoundUp(c.value, c.alignment); got != c.want {
			t.Errorf("RoundUp(%d, %d) = %d, want %d", c.value, c.alignment, got, c.want)
		}
	}
}

func TestRoundUpPanicsOnNonPositiveAlignment(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a non-positive alignment")
		}
	}()
	RoundUp(10, 0)
}

func TestRoundUpLog2(t *testing.T) {
	if got := RoundUpLog2(4097, 12); got != 8192 {
		t.Errorf("RoundUpLog2(4097, 12) = %d, want 8192", got)
	}
	if got := RoundUpLog2(0, 9); got != 0 {
		t.Errorf("RoundUpLog2(0, 9) = %d, want 0", got)
	}
}
