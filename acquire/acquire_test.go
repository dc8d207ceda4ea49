package acquire

import (
	"math"
	"testing"

	"github.com/mcwell/l1ca-track/codegen"
)

// buildSignal synthesizes one code period of noise-free baseband
// samples for prn at the given Doppler, zero IF, so Search's recovered
// Doppler can be checked directly against the bin grid.
func buildSignal(t *testing.T, prn int, n int, fsHz, dopplerHz float64) []complex64 {
	t.Helper()
	table, err := codegen.Generate(prn)
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}
	stepChips := codegen.CodeRateHz / fsHz
	out := make([]complex64, n)
	for i := 0; i < n; i++ {
		chipIdx := 1 + int(float64(i)*stepChips)%table.Len()
		chip := float64(table.At(chipIdx))
		phase := 2 * math.Pi * dopplerHz * float64(i) / fsHz
		s, c := math.Sincos(phase)
		out[i] = complex64(complex(chip*c, chip*s))
	}
	return out
}

func TestSearchFindsCorrectDoppler(t *testing.T) {
	const fs = 4 * codegen.CodeRateHz
	n := int(fs * codegen.CodeLengthChips / codegen.CodeRateHz)
	const trueDoppler = 2000.0

	signal := buildSignal(t, 7, n, fs, trueDoppler)
	bins := []float64{-4000, -2000, 0, 2000, 4000}

	result, err := Search(signal, 7, fs, 0, bins)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !result.Acquired {
		t.Fatalf("expected acquisition, got PeakRatio=%v", result.PeakRatio)
	}
	if result.DopplerHz != trueDoppler {
		t.Errorf("DopplerHz = %v, want %v", result.DopplerHz, trueDoppler)
	}
}

func TestSearchRejectsWrongPRN(t *testing.T) {
	const fs = 4 * codegen.CodeRateHz
	n := int(fs * codegen.CodeLengthChips / codegen.CodeRateHz)

	signal := buildSignal(t, 7, n, fs, 0)
	bins := []float64{0}

	result, err := Search(signal, 12, fs, 0, bins)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Acquired {
		t.Errorf("PRN 7's signal should not acquire against PRN 12's code (ratio=%v)", result.PeakRatio)
	}
}
