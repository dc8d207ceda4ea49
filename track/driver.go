package track

import (
	"log"
	"math"

	"github.com/mcwell/l1ca-track/codegen"
	"github.com/mcwell/l1ca-track/correlate"
	"github.com/mcwell/l1ca-track/discrim"
	"github.com/mcwell/l1ca-track/lock"
	"github.com/mcwell/l1ca-track/loopfilter"
	"github.com/mcwell/l1ca-track/replica"
)

// round performs round-half-up via floor(x+0.5), used throughout for
// sample-count arithmetic that is always non-negative in practice.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Channel is one satellite's tracking loop: it owns all mutable loop
// state and drives the Replica Generator, Correlator, Discriminators,
// Loop Filters and Lock/C/N0 Estimator once per block.
type Channel struct {
	id  int
	cfg Config

	replicaGen    *replica.Generator
	corr          *correlate.Correlator
	carrierFilter *loopfilter.Filter
	codeFilter    *loopfilter.Filter
	lockEst       *lock.Estimator
	queue         *Queue
	dump          *DumpWriter
	logger        *log.Logger

	inScratch []complex128 // reused block-input conversion buffer

	// Mutable loop state.
	enabled             bool
	pullingIn           bool
	sampleCounter       uint64
	acqSampleStamp      uint64
	acqCodePhaseSamples float64
	acqCarrierDopplerHz float64
	carrierDopplerHz    float64
	codeFreqChips       float64
	remCodePhaseSamples float64
	remCarrPhaseRad     float64
	accCarrierPhaseRad  float64
	accCodePhaseSecs    float64
	currentPrnLength    int
	cn0DbHz             float64
	carrierLockTest     float64
}

// NewChannel builds an idle Channel for the given PRN. maxBlockSamples
// sizes every reusable per-block buffer and must be at least the
// largest block length the channel will ever be asked to process;
// cfg.VectorLengthSamples*2 is a safe margin against Doppler-driven
// code-rate swings. queue, logger and dump are all optional (nil is a
// valid, no-op choice for each).
func NewChannel(id, prn int, cfg Config, maxBlockSamples int, queue *Queue, logger *log.Logger, dump *DumpWriter) (*Channel, error) {
	table, err := codegen.Generate(prn)
	if err != nil {
		return nil, err
	}
	return &Channel{
		id:               id,
		cfg:              cfg,
		replicaGen:       replica.NewGenerator(table, cfg.EarlyLateSpacingChips, cfg.FsInHz, cfg.IfFreqHz, maxBlockSamples),
		corr:             correlate.New(maxBlockSamples),
		carrierFilter:    loopfilter.New(cfg.PllBwHz),
		codeFilter:       loopfilter.New(cfg.DllBwHz),
		lockEst:          lock.New(cfg.CN0BufferSize, float64(cfg.VectorLengthSamples)/cfg.FsInHz, cfg.CarrierLockThresh, cfg.MinValidCN0, cfg.MaxFailCount),
		queue:            queue,
		dump:             dump,
		logger:           logger,
		inScratch:        make([]complex128, maxBlockSamples),
		currentPrnLength: cfg.VectorLengthSamples,
	}, nil
}

// ID returns the channel's caller-assigned identifier, used to tag
// Events posted to its Queue.
func (c *Channel) ID() int { return c.id }

// Enabled reports whether the channel is tracking or pulling in, i.e.
// not idle.
func (c *Channel) Enabled() bool { return c.enabled }

// StartTracking seeds pull-in alignment from an acquisition result and
// transitions the channel from idle into pull-in.
func (c *Channel) StartTracking(acq AcquisitionHandoff) {
	c.acqSampleStamp = acq.SampleStampSamples
	c.acqCodePhaseSamples = acq.DelaySamples
	c.acqCarrierDopplerHz = acq.DopplerHz
	c.carrierDopplerHz = acq.DopplerHz

	c.carrierFilter.Initialize(acq.DopplerHz)

	if c.cfg.CarrierAidingEnabled {
		c.codeFilter.Initialize(0)
		c.codeFreqChips = c.cfg.Satellite.CodeRateHz
	} else {
		scaledDoppler := acq.DopplerHz * c.cfg.Satellite.CodeRateHz / c.cfg.Satellite.CarrierFreqHz
		c.codeFilter.Initialize(scaledDoppler)
		c.codeFreqChips = c.cfg.Satellite.CodeRateHz + scaledDoppler
	}

	c.currentPrnLength = round(c.cfg.FsInHz * c.cfg.Satellite.CodeLengthChips / c.codeFreqChips)
	c.remCodePhaseSamples = 0
	c.remCarrPhaseRad = 0
	c.accCarrierPhaseRad = 0
	c.accCodePhaseSecs = 0
	c.cn0DbHz = 0
	c.carrierLockTest = 0
	c.lockEst = lock.New(c.cfg.CN0BufferSize, float64(c.currentPrnLength)/c.cfg.FsInHz, c.cfg.CarrierLockThresh, c.cfg.MinValidCN0, c.cfg.MaxFailCount)

	c.enabled = true
	c.pullingIn = true
}

// Process advances the channel by exactly one block and returns the
// block's output record plus the number of input samples consumed.
// input must hold at least the block's required length; callers
// should keep feeding samples until consumed tracks their supply.
func (c *Channel) Process(input []complex64) (Output, int) {
	if !c.enabled {
		return c.idleBlock(input), c.idleConsume(input)
	}
	if c.pullingIn {
		return c.pullInBlock(input)
	}
	return c.trackingBlock(input)
}

func (c *Channel) idleConsume(input []complex64) int {
	n := c.currentPrnLength
	if n > len(input) {
		n = len(input)
	}
	return n
}

func (c *Channel) idleBlock(input []complex64) Output {
	n := c.idleConsume(input)
	c.sampleCounter += uint64(n)
	return Output{
		TimestampSecs: float64(c.sampleCounter) / c.cfg.FsInHz,
		Valid:         false,
	}
}

// pullInBlock performs the one-time code-phase alignment shift and
// transitions the channel into steady-state tracking.
func (c *Channel) pullInBlock(input []complex64) (Output, int) {
	m := int64(c.currentPrnLength)
	diff := int64(c.sampleCounter) - int64(c.acqSampleStamp)
	mod := diff % m
	if mod < 0 {
		mod += m
	}
	shift := int(m - mod)

	consumed := round(c.acqCodePhaseSamples) + shift
	if consumed < 0 {
		consumed = 0
	}
	if consumed > len(input) {
		consumed = len(input)
	}

	c.sampleCounter += uint64(consumed)
	c.remCodePhaseSamples = 0
	c.remCarrPhaseRad = 0
	c.accCarrierPhaseRad = 0
	c.accCodePhaseSecs = 0
	c.pullingIn = false

	return Output{
		TimestampSecs:    float64(c.sampleCounter) / c.cfg.FsInHz,
		CarrierDopplerHz: c.carrierDopplerHz,
		CodeFreqChips:    c.codeFreqChips,
		Valid:            false,
	}, consumed
}

// trackingBlock runs one full DLL/PLL update: generate replicas,
// correlate, discriminate, filter, re-derive the next block length,
// and feed the lock/C-N0 estimator.
func (c *Channel) trackingBlock(input []complex64) (Output, int) {
	n := c.currentPrnLength
	if n > len(input) {
		n = len(input)
	}

	remCodePhaseAtBlockStart := c.remCodePhaseSamples

	inC := c.inScratch[:n]
	for i := 0; i < n; i++ {
		inC[i] = complex(float64(real(input[i])), float64(imag(input[i])))
	}

	early, prompt, late := c.replicaGen.Code(n, c.codeFreqChips, c.remCodePhaseSamples)
	carr := c.replicaGen.Carrier(n, c.carrierDopplerHz, c.remCarrPhaseRad)
	corrOut := c.corr.Correlate(inC, carr, early, prompt, late)

	if isNaN(corrOut.P) || math.IsInf(real(corrOut.P), 0) || math.IsInf(imag(corrOut.P), 0) {
		consumed := len(input)
		c.sampleCounter += uint64(consumed)
		if c.logger != nil {
			c.logger.Printf("track: channel %d: NaN/Inf prompt correlator output at sample %d, dropping block", c.id, c.sampleCounter)
		}
		return Output{
			TimestampSecs:    (float64(c.sampleCounter) + remCodePhaseAtBlockStart) / c.cfg.FsInHz,
			CarrierDopplerHz: c.carrierDopplerHz,
			CodeFreqChips:    c.codeFreqChips,
			CN0DbHz:          c.cn0DbHz,
			CarrierLockTest:  c.carrierLockTest,
			Valid:            false,
		}, consumed
	}

	c.sampleCounter += uint64(n)
	T := float64(n) / c.cfg.FsInHz

	carrErrCycles := discrim.Carrier(corrOut.P)
	c.carrierDopplerHz = c.carrierFilter.Update(carrErrCycles, T)

	codeErrChips := discrim.Code(corrOut.E, corrOut.L, c.cfg.EarlyLateSpacingChips)
	codeFilt := c.codeFilter.Update(codeErrChips, T)
	if c.cfg.CarrierAidingEnabled {
		c.codeFreqChips = c.cfg.Satellite.CodeRateHz*(1+c.carrierDopplerHz/c.cfg.Satellite.CarrierFreqHz) + codeFilt
	} else {
		c.codeFreqChips = c.cfg.Satellite.CodeRateHz + codeFilt
	}

	c.accCarrierPhaseRad -= 2 * math.Pi * c.carrierDopplerHz * T
	c.remCarrPhaseRad = wrapRadians(c.remCarrPhaseRad + 2*math.Pi*(c.cfg.IfFreqHz+c.carrierDopplerHz)*T)
	c.accCodePhaseSecs += T * codeFilt / c.cfg.Satellite.CodeRateHz

	tPrn := c.cfg.Satellite.CodeLengthChips / c.codeFreqChips
	kBlk := tPrn*c.cfg.FsInHz + c.remCodePhaseSamples
	nextLen := round(kBlk)
	c.remCodePhaseSamples = kBlk - float64(nextLen)
	nextSampleBoundary := float64(c.sampleCounter) + float64(n)
	c.currentPrnLength = nextLen

	result, ready := c.lockEst.Add(corrOut.P)
	if ready {
		c.cn0DbHz = result.CN0DbHz
		c.carrierLockTest = result.LockIndicator
		if result.LossOfLock {
			c.enabled = false
			if c.queue != nil {
				c.queue.Send(Event{ChannelID: c.id, Type: LossOfLock})
			}
		}
	}

	out := Output{
		PromptI:            real(corrOut.P),
		PromptQ:            imag(corrOut.P),
		TimestampSecs:      (float64(c.sampleCounter) + remCodePhaseAtBlockStart) / c.cfg.FsInHz,
		AccCarrierPhaseRad: c.accCarrierPhaseRad,
		AccCodePhaseSecs:   c.accCodePhaseSecs,
		CarrierDopplerHz:   c.carrierDopplerHz,
		CodeFreqChips:      c.codeFreqChips,
		CN0DbHz:            c.cn0DbHz,
		CarrierLockTest:    c.carrierLockTest,
		Valid:              true,
	}

	if c.dump != nil {
		rec := DumpRecord{
			EarlyMag:             float32(abs(corrOut.E)),
			PromptMag:            float32(abs(corrOut.P)),
			LateMag:              float32(abs(corrOut.L)),
			PromptI:              float32(out.PromptI),
			PromptQ:              float32(out.PromptQ),
			SampleCounter:        c.sampleCounter,
			AccCarrierPhaseRad:   c.accCarrierPhaseRad,
			CarrierDopplerHz:     c.carrierDopplerHz,
			CodeFreqChips:        c.codeFreqChips,
			CarrierErrHz:         carrErrCycles,
			CarrierDopplerHzFilt: c.carrierDopplerHz,
			CodeErrChips:         codeErrChips,
			CodeErrChipsFilt:     codeFilt,
			CN0DbHz:              c.cn0DbHz,
			CarrierLockTest:      c.carrierLockTest,
			RemCodePhaseSamples:  c.remCodePhaseSamples,
			NextSampleBoundary:   nextSampleBoundary,
		}
		if err := c.dump.Write(rec); err != nil && c.logger != nil {
			c.logger.Printf("track: channel %d: dump write failed: %v", c.id, err)
		}
	}

	return out, n
}

func isNaN(c complex128) bool {
	return math.IsNaN(real(c)) || math.IsNaN(imag(c))
}

func abs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// wrapRadians reduces phase into [0, 2*pi).
func wrapRadians(phase float64) float64 {
	const twoPi = 2 * math.Pi
	phase = math.Mod(phase, twoPi)
	if phase < 0 {
		phase += twoPi
	}
	return phase
}
