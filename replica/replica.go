// Package replica implements the Replica Generator: for a given block
// it resamples the local C/A code at three delays (Early, Prompt,
// Late) and produces the carrier wipe-off rotation, using 64-bit
// fixed-point phase accumulators so long tracks do not accumulate
// floating-point phase drift. The phase accumulator is the part that
// matters for long-run coherence; sin/cos evaluation itself still uses
// math.Sincos rather than a fixed-point lookup table.
package replica

import (
	"math"

	"github.com/mcwell/l1ca-track/codegen"
)

// fixedFrac is the number of fractional bits in the Q32.32 phase
// accumulators used for both code and carrier phase.
const fixedFrac = 32

// fixedOne represents one whole unit (one chip, or one full carrier
// cycle) in Q32.32 fixed point.
const fixedOne = int64(1) << fixedFrac

// toFixed converts a floating-point quantity (chips, or carrier
// cycles) into Q32.32 fixed point.
func toFixed(x float64) int64 {
	return int64(math.Round(x * float64(fixedOne)))
}

// Block holds the reusable per-block replica buffers: three code
// sequences and the carrier wipe-off rotation. Its lifetime is one
// block; the Generator reuses the same backing arrays across blocks.
type Block struct {
	Early, Prompt, Late []int8
	Carrier             []complex128
}

// Generator produces Replica Blocks against a fixed code table. It
// holds no mutable tracking state of its own: every call is a pure
// function of its arguments plus the preallocated buffers it reuses.
type Generator struct {
	table                 codegen.Table
	earlyLateSpacingChips float64
	fsHz                  float64
	ifHz                  float64

	buf Block
}

// NewGenerator allocates the reusable replica buffers sized for
// maxBlockSamples, the largest block length the generator will ever
// be asked to fill.
func NewGenerator(table codegen.Table, earlyLateSpacingChips, fsHz, ifHz float64, maxBlockSamples int) *Generator {
	return &Generator{
		table:                 table,
		earlyLateSpacingChips: earlyLateSpacingChips,
		fsHz:                  fsHz,
		ifHz:                  ifHz,
		buf: Block{
			Early:   make([]int8, maxBlockSamples),
			Prompt:  make([]int8, maxBlockSamples),
			Late:    make([]int8, maxBlockSamples),
			Carrier: make([]complex128, maxBlockSamples),
		},
	}
}

// Code fills the reused Early/Prompt/Late buffers (truncated to n
// samples) for a block of n samples, given the current code-rate
// estimate and the fractional code-phase remainder carried over from
// the previous block. The caller must not retain the returned slices
// past the next call.
func (g *Generator) Code(n int, codeFreqChips, remCodePhaseSamples float64) (early, prompt, late []int8) {
	early = g.buf.Early[:n]
	prompt = g.buf.Prompt[:n]
	late = g.buf.Late[:n]

	L := int64(g.table.Len())
	stepChips := codeFreqChips / g.fsHz
	remCodePhaseChips := remCodePhaseSamples * stepChips
	promptStart := -remCodePhaseChips

	promptFxp := toFixed(promptStart)
	earlyFxp := toFixed(promptStart + g.earlyLateSpacingChips)
	lateFxp := toFixed(promptStart - g.earlyLateSpacingChips)
	stepFxp := toFixed(stepChips)

	for i := 0; i < n; i++ {
		early[i] = g.table.At(wrapChipIndex(earlyFxp, L))
		prompt[i] = g.table.At(wrapChipIndex(promptFxp, L))
		late[i] = g.table.At(wrapChipIndex(lateFxp, L))
		earlyFxp += stepFxp
		promptFxp += stepFxp
		lateFxp += stepFxp
	}
	return early, prompt, late
}

// wrapChipIndex turns a Q32.32 chip-phase accumulator into a 1-based
// table index. The table's wrap-guard entries make a single step past
// either boundary well-defined without a modulo; a full modulo is
// applied regardless so the indexer stays correct even when an
// early/late spacing or step size exceeds that single-slot guard.
func wrapChipIndex(phaseFxp int64, lengthChips int64) int {
	raw := phaseFxp >> fixedFrac
	m := raw % lengthChips
	if m < 0 {
		m += lengthChips
	}
	return int(1 + m)
}

// Carrier fills the reused carrier wipe-off buffer (truncated to n
// samples) for a block of n samples: carr[i] = cos(phi) - j*sin(phi),
// the carrier conjugate used to wipe off the incoming baseband
// signal. phi starts at remCarrPhaseRad and advances by
// 2*pi*(ifHz+dopplerHz)/fsHz each sample, tracked internally in
// fixed-point cycles to avoid the drift that repeated float addition
// of phase would introduce over a long track.
func (g *Generator) Carrier(n int, dopplerHz, remCarrPhaseRad float64) []complex128 {
	carr := g.buf.Carrier[:n]

	phaseStepRad := 2 * math.Pi * (g.ifHz + dopplerHz) / g.fsHz
	phaseFxp := toFixed(remCarrPhaseRad / (2 * math.Pi))
	stepFxp := toFixed(phaseStepRad / (2 * math.Pi))

	for i := 0; i < n; i++ {
		rad := fracCycles(phaseFxp) * 2 * math.Pi
		sin, cos := math.Sincos(rad)
		carr[i] = complex(cos, -sin)
		phaseFxp += stepFxp
	}
	return carr
}

// fracCycles extracts the fractional part of a Q32.32 cycle count in
// [0, 1), regardless of sign or magnitude of the accumulator.
func fracCycles(phaseFxp int64) float64 {
	frac := phaseFxp & (fixedOne - 1)
	return float64(frac) / float64(fixedOne)
}
