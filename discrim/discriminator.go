// Package discrim implements the carrier and code discriminators:
// pure functions mapping correlator outputs to scalar phase/frequency
// errors.
package discrim

import (
	"math"
	"math/cmplx"
)

// Carrier computes the two-quadrant arctangent carrier phase error in
// cycles, domain (-0.5, 0.5]. Undefined at P == 0+0i; that case
// returns 0.
func Carrier(p complex128) float64 {
	if p == 0 {
		return 0
	}
	return cmplx.Phase(p) / (2 * math.Pi)
}

// Code computes the noncoherent early-minus-late envelope code phase
// error in chips, normalized and scaled by (1-earlyLateSpacingChips).
// Undefined when |E|+|L| == 0; returns 0 in that case.
func Code(e, l complex128, earlyLateSpacingChips float64) float64 {
	ea := cmplx.Abs(e)
	la := cmplx.Abs(l)
	denom := ea + la
	if denom == 0 {
		return 0
	}
	return (ea - la) / denom * (1 - earlyLateSpacingChips)
}
