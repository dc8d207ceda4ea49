// Package correlate implements the Correlator: given an input
// baseband block, the carrier wipe-off, and the Early/Prompt/Late code
// replicas, it accumulates three complex inner products per block.
package correlate

import "gonum.org/v1/gonum/cmplxs"

// Output holds the three complex correlator accumulators for one
// block: Early, Prompt, Late.
type Output struct {
	E, P, L complex128
}

// Correlator holds the reusable per-block scratch buffers so repeated
// calls to Correlate never allocate.
type Correlator struct {
	wiped      []complex128
	earlyCplx  []complex128
	promptCplx []complex128
	lateCplx   []complex128
}

// New allocates scratch buffers sized for the largest anticipated
// block length.
func New(maxBlockSamples int) *Correlator {
	return &Correlator{
		wiped:      make([]complex128, maxBlockSamples),
		earlyCplx:  make([]complex128, maxBlockSamples),
		promptCplx: make([]complex128, maxBlockSamples),
		lateCplx:   make([]complex128, maxBlockSamples),
	}
}

// Correlate computes E = sum(in*carr*early), P = sum(in*carr*prompt),
// L = sum(in*carr*late) over n samples. in and carr must have at
// least n samples; early/prompt/late must have exactly n samples (the
// replica generator's per-block output).
func (c *Correlator) Correlate(in, carr []complex128, early, prompt, late []int8) Output {
	n := len(early)
	wiped := c.wiped[:n]
	for i := 0; i < n; i++ {
		wiped[i] = in[i] * carr[i]
	}

	e := c.earlyCplx[:n]
	p := c.promptCplx[:n]
	l := c.lateCplx[:n]
	for i := 0; i < n; i++ {
		e[i] = complex(float64(early[i]), 0)
		p[i] = complex(float64(prompt[i]), 0)
		l[i] = complex(float64(late[i]), 0)
	}

	// cmplxs.Dot conjugates its first argument; the code replicas are
	// real, so passing them first leaves the wiped-off signal unconjugated.
	return Output{
		E: cmplxs.Dot(e, wiped),
		P: cmplxs.Dot(p, wiped),
		L: cmplxs.Dot(l, wiped),
	}
}
