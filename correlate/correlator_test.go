package correlate

import (
	"math"
	"testing"
)

func TestCorrelatePerfectAlignmentMaximizesPrompt(t *testing.T) {
	n := 1000
	code := make([]int8, n)
	for i := range code {
		if i%2 == 0 {
			code[i] = 1
		} else {
			code[i] = -1
		}
	}
	in := make([]complex128, n)
	carr := make([]complex128, n)
	for i := range in {
		in[i] = complex(float64(code[i]), 0)
		carr[i] = complex(1, 0) // no carrier rotation
	}

	c := New(n)
	out := c.Correlate(in, carr, code, code, code)

	if real(out.P) != float64(n) {
		t.Errorf("prompt correlation with identical code: got %v, want %v", real(out.P), n)
	}
	if imag(out.P) != 0 {
		t.Errorf("prompt imaginary part should be 0, got %v", imag(out.P))
	}
}

func TestCorrelateMisalignedCodeNearZero(t *testing.T) {
	n := 2000
	code := make([]int8, n)
	flipped := make([]int8, n)
	for i := range code {
		v := int8(1)
		if (i/7)%2 == 1 {
			v = -1
		}
		code[i] = v
		flipped[i] = -v
	}
	in := make([]complex128, n)
	carr := make([]complex128, n)
	for i := range in {
		in[i] = complex(float64(code[i]), 0)
		carr[i] = complex(1, 0)
	}

	c := New(n)
	out := c.Correlate(in, carr, flipped, flipped, flipped)
	if real(out.P) != -float64(n) {
		t.Fatalf("anti-correlated code should give -n: got %v", real(out.P))
	}
}

func TestCorrelateZeroInputGivesZeroOutput(t *testing.T) {
	n := 500
	code := make([]int8, n)
	for i := range code {
		code[i] = 1
	}
	in := make([]complex128, n) // all zero
	carr := make([]complex128, n)
	for i := range carr {
		carr[i] = complex(1, 0)
	}

	c := New(n)
	out := c.Correlate(in, carr, code, code, code)
	if out.E != 0 || out.P != 0 || out.L != 0 {
		t.Fatalf("expected all-zero correlator output, got %+v", out)
	}
	if math.Hypot(real(out.P), imag(out.P)) != 0 {
		t.Fatalf("expected zero magnitude prompt")
	}
}
