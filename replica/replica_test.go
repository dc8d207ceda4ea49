package replica

import (
	"math"
	"testing"

	"github.com/mcwell/l1ca-track/codegen"
)

func testGenerator(t *testing.T) (*Generator, codegen.Table) {
	t.Helper()
	table, err := codegen.Generate(1)
	if err != nil {
		t.Fatal(err)
	}
	return NewGenerator(table, 0.5, 4_000_000, 0, 4200), table
}

func TestCodeWrapEdges(t *testing.T) {
	g, table := testGenerator(t)
	L := int64(table.Len())

	if got := table.At(wrapChipIndex(-1, L)); got != table.At(int(L)) {
		t.Errorf("index just before 0 should read chip L: got %d want %d", got, table.At(int(L)))
	}
	if got := table.At(wrapChipIndex(toFixed(float64(L)), L)); got != table.At(1) {
		t.Errorf("index at L should wrap to chip 1: got %d want %d", got, table.At(1))
	}
	_ = g
}

func TestCodeProducesBipolarChips(t *testing.T) {
	g, _ := testGenerator(t)
	n := 4000
	early, prompt, late := g.Code(n, codegen.CodeRateHz, 0)
	for i := 0; i < n; i++ {
		for _, v := range []int8{early[i], prompt[i], late[i]} {
			if v != 1 && v != -1 {
				t.Fatalf("sample %d: non-bipolar chip %d", i, v)
			}
		}
	}
}

func TestCarrierUnitMagnitude(t *testing.T) {
	g, _ := testGenerator(t)
	n := 1000
	carr := g.Carrier(n, 1500, 0)
	for i, c := range carr {
		mag := math.Hypot(real(c), imag(c))
		if math.Abs(mag-1) > 1e-9 {
			t.Fatalf("sample %d: carrier magnitude %v not unit", i, mag)
		}
	}
}

func TestCarrierConjugateSign(t *testing.T) {
	g, _ := testGenerator(t)
	// Zero Doppler and zero IF means phase should stay at zero: cos=1, sin=0.
	carr := g.Carrier(5, 0, 0)
	for i, c := range carr {
		if math.Abs(real(c)-1) > 1e-9 || math.Abs(imag(c)) > 1e-9 {
			t.Fatalf("sample %d: expected (1,0) at zero phase/doppler, got %v", i, c)
		}
	}
}

func TestFracCyclesStaysInUnitRange(t *testing.T) {
	for _, cycles := range []float64{-5.75, -0.001, 0, 0.999, 3.25, 1e6 + 0.125} {
		f := toFixed(cycles)
		frac := fracCycles(f)
		if frac < 0 || frac >= 1 {
			t.Fatalf("fracCycles(%v) = %v out of [0,1)", cycles, frac)
		}
	}
}
