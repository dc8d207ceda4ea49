// Package lock implements the Lock & C/N0 Estimator: windowed SNV
// C/N0 estimation and a carrier-lock test over a buffer of recent
// Prompt correlator outputs, feeding a hysteretic loss-of-lock fail
// counter.
package lock

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Defaults mirror common GNSS receiver tuning values for the SNV
// estimator and carrier-lock test.
const (
	DefaultBufferSize        = 20
	DefaultMinValidCN0       = 25.0
	DefaultMaxFailCount      = 50
	DefaultCarrierLockThresh = 0.85
)

// Result is the outcome of one completed estimation window.
type Result struct {
	CN0DbHz       float64
	CN0Valid      bool
	LockIndicator float64
	LossOfLock    bool
}

// Estimator accumulates Prompt samples into a fixed-size window and,
// once full, produces a C/N0 estimate and carrier-lock indicator,
// updating a hysteretic fail counter. It holds no knowledge of the
// tracking Driver; Add is the only mutating call.
type Estimator struct {
	integrationPeriodSecs float64
	lockThreshold         float64
	minValidCN0           float64
	maxFail               int

	buf []complex128
	n   int // samples currently buffered, 0..len(buf)

	failCounter int
}

// New builds an Estimator with a window of bufferSize Prompt samples.
func New(bufferSize int, integrationPeriodSecs, lockThreshold, minValidCN0 float64, maxFail int) *Estimator {
	return &Estimator{
		integrationPeriodSecs: integrationPeriodSecs,
		lockThreshold:         lockThreshold,
		minValidCN0:           minValidCN0,
		maxFail:               maxFail,
		buf:                   make([]complex128, 0, bufferSize),
	}
}

// FailCount reports the current hysteretic fail counter, mainly for
// tests and diagnostics.
func (e *Estimator) FailCount() int { return e.failCounter }

// Add feeds one Prompt correlator sample into the window. It returns
// a Result with ready=false until the window fills; once full it
// computes the estimate, resets the window, and updates the fail
// counter with hysteresis: a failing window increments it, a passing
// window decrements it, and exceeding maxFail reports loss of lock and
// resets it to 0.
func (e *Estimator) Add(prompt complex128) (result Result, ready bool) {
	e.buf = append(e.buf, prompt)
	if len(e.buf) < cap(e.buf) {
		return Result{}, false
	}

	result = e.estimate()
	e.buf = e.buf[:0]

	if result.LockIndicator < e.lockThreshold || result.CN0DbHz < e.minValidCN0 {
		e.failCounter++
	} else if e.failCounter > 0 {
		e.failCounter--
	}
	if e.failCounter > e.maxFail {
		result.LossOfLock = true
		e.failCounter = 0
	}
	return result, true
}

// estimate computes the SNV C/N0 figure and carrier-lock indicator
// over the current (full) window.
func (e *Estimator) estimate() Result {
	n := len(e.buf)
	sqMag := make([]float64, n)
	fourthMag := make([]float64, n)
	reParts := make([]float64, n)
	imParts := make([]float64, n)
	for i, p := range e.buf {
		mag2 := real(p)*real(p) + imag(p)*imag(p)
		sqMag[i] = mag2
		fourthMag[i] = mag2 * mag2
		reParts[i] = real(p)
		imParts[i] = imag(p)
	}

	m2 := stat.Mean(sqMag, nil)
	m4 := stat.Mean(fourthMag, nil)

	var cn0 float64
	valid := true
	if m4 > 2*m2*m2 {
		valid = false
	} else {
		pn2 := 2*m2*m2 - m4
		if pn2 <= 0 {
			valid = false
		} else {
			pn := math.Sqrt(pn2)
			ps := m2 - pn
			if pn <= 0 || ps <= 0 {
				valid = false
			} else {
				cn0 = 10 * math.Log10((ps/pn)/e.integrationPeriodSecs)
			}
		}
	}
	if !valid {
		cn0 = 0
	}

	sumRe := floats.Sum(reParts)
	sumIm := floats.Sum(imParts)
	nbd := sumRe*sumRe - sumIm*sumIm
	nbp := sumRe*sumRe + sumIm*sumIm
	var indicator float64
	if nbp != 0 {
		indicator = nbd / nbp
	}

	return Result{
		CN0DbHz:       cn0,
		CN0Valid:      valid,
		LockIndicator: indicator,
	}
}
