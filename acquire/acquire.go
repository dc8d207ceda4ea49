// Package acquire implements a single-satellite cold acquisition
// search: a circular FFT correlation against the local C/A code,
// repeated across a Doppler search grid, producing the
// delay/Doppler/peak-ratio triple a tracking Channel needs to start
// pull-in.
package acquire

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/mcwell/l1ca-track/codegen"
)

// Result is one acquisition search outcome for a single PRN.
type Result struct {
	DelaySamples float64
	DopplerHz    float64
	PeakRatio    float64
	Acquired     bool
}

// Threshold is the minimum peak-to-second-peak power ratio a result
// must clear to be considered acquired.
const Threshold = 2.0

// Search correlates one code period of iq (length n, at sampling rate
// fsHz and IF ifHz) against the PRN's C/A code across dopplerBins,
// returning the strongest delay/Doppler pair found.
func Search(iq []complex64, prn int, fsHz, ifHz float64, dopplerBins []float64) (Result, error) {
	table, err := codegen.Generate(prn)
	if err != nil {
		return Result{}, err
	}

	n := len(iq)
	code := make([]complex128, n)
	stepChips := codegen.CodeRateHz / fsHz
	for i := 0; i < n; i++ {
		chipIdx := 1 + int(float64(i)*stepChips)%table.Len()
		code[i] = complex(float64(table.At(chipIdx)), 0)
	}

	fft := fourier.NewCmplxFFT(n)
	codeFFT := fft.Coefficients(nil, code)

	mixed := make([]complex128, n)
	dataFFT := make([]complex128, n)
	prod := make([]complex128, n)

	var best Result
	best.PeakRatio = -1
	for _, fd := range dopplerBins {
		for i := 0; i < n; i++ {
			phase := 2 * math.Pi * (ifHz + fd) * float64(i) / fsHz
			s, c := math.Sincos(phase)
			mixed[i] = complex128(iq[i]) * complex(c, -s)
		}
		dataFFT = fft.Coefficients(dataFFT, mixed)
		for j := 0; j < n; j++ {
			prod[j] = dataFFT[j] * cmplx.Conj(codeFFT[j])
		}
		corr := fft.Sequence(nil, prod)

		peakIdx, peakPower, secondPower := peaks(corr)
		ratio := peakPower / secondPower

		if ratio > best.PeakRatio {
			best = Result{
				DelaySamples: float64(peakIdx),
				DopplerHz:    fd,
				PeakRatio:    ratio,
			}
		}
	}
	best.Acquired = best.PeakRatio > Threshold
	return best, nil
}

// peaks finds the largest power bin and the largest power bin at least
// two chip-widths away from it, so the second peak cannot just be a
// shoulder of the main correlation lobe.
func peaks(corr []complex128) (peakIdx int, peakPower, secondPower float64) {
	n := len(corr)
	power := make([]float64, n)
	peakIdx = 0
	for i, v := range corr {
		power[i] = real(v)*real(v) + imag(v)*imag(v)
		if power[i] > power[peakIdx] {
			peakIdx = i
		}
	}
	peakPower = power[peakIdx]

	exclude := n / 200 // about five chip-widths when n spans one 1023-chip code period
	if exclude < 1 {
		exclude = 1
	}
	secondPower = 0
	for i, p := range power {
		d := i - peakIdx
		if d < 0 {
			d = -d
		}
		if d <= exclude || n-d <= exclude {
			continue
		}
		if p > secondPower {
			secondPower = p
		}
	}
	if secondPower == 0 {
		secondPower = 1e-12
	}
	return peakIdx, peakPower, secondPower
}
