// Package loopfilter implements the Loop Filters: a second-order
// controller used for both the carrier (PLL) and code (DLL) loops,
// parameterized by noise bandwidth and reset via Initialize at the
// start of a track. The carrier and code filters share the same
// recurrence; a frequency-lock cross-term some PLL implementations
// fold in is deliberately left out (see DESIGN.md).
package loopfilter

// dampingDivisor and proportionalScale derive the loop gains from
// bandwidth at a damping ratio of approximately 0.707: natural
// frequency = bandwidth/0.53, proportional gain = 1.414*wn.
const dampingDivisor = 0.53
const proportionalScale = 1.414

// Filter is a discrete-time second-order loop filter. The same type
// serves as both the carrier (PLL) and code (DLL) filter — they differ
// only in the bandwidth passed to New and in how the Driver interprets
// and combines their output.
type Filter struct {
	w2        float64 // integrator gain, derived from bandwidth
	aw        float64 // proportional gain, derived from bandwidth
	value     float64 // current filter output (the running estimate)
	prevError float64
}

// New derives the loop gains from the noise bandwidth in Hz.
func New(bandwidthHz float64) *Filter {
	wn := bandwidthHz / dampingDivisor
	return &Filter{
		w2: wn * wn,
		aw: proportionalScale * wn,
	}
}

// Initialize resets the filter's running estimate and internal error
// memory. Must be called whenever a track (re)starts.
func (f *Filter) Initialize(value float64) {
	f.value = value
	f.prevError = 0
}

// Update advances the filter by one integration period (one code
// period, in seconds) given the latest discriminator error, and
// returns the updated estimate.
func (f *Filter) Update(errorValue, integrationPeriodSecs float64) float64 {
	f.value += f.aw*(errorValue-f.prevError) + f.w2*integrationPeriodSecs*errorValue
	f.prevError = errorValue
	return f.value
}

// Value returns the filter's current estimate without advancing it.
func (f *Filter) Value() float64 { return f.value }
