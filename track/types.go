package track

// AcquisitionHandoff is the message passed from an external
// acquisition stage into a Channel's StartTracking call: everything
// the Driver needs to seed pull-in alignment.
type AcquisitionHandoff struct {
	PRN                int
	System             byte // 'G' for GPS, 'S' for SBAS, etc.
	DelaySamples       float64
	DopplerHz          float64
	SampleStampSamples uint64
}

// Output is one tracking output record, emitted once per block
// regardless of loop state.
type Output struct {
	PromptI, PromptQ   float64
	TimestampSecs      float64
	AccCarrierPhaseRad float64
	AccCodePhaseSecs   float64
	CarrierDopplerHz   float64
	CodeFreqChips      float64
	CN0DbHz            float64
	CarrierLockTest    float64
	Valid              bool
}
