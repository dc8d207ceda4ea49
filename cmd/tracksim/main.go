// Command tracksim demonstrates the full acquire -> pull-in -> track
// pipeline against a noise-free synthetic GPS L1 C/A signal, for a
// single satellite channel.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/mcwell/l1ca-track/acquire"
	"github.com/mcwell/l1ca-track/codegen"
	"github.com/mcwell/l1ca-track/track"
)

func main() {
	prn := flag.Int("prn", 7, "GPS PRN to simulate and track")
	dopplerHz := flag.Float64("doppler", 1500, "true Doppler shift of the simulated signal, in Hz")
	delaySamples := flag.Float64("delay", 137, "true code-phase delay of the simulated signal, in samples")
	blocks := flag.Int("blocks", 20, "number of code periods to track after pull-in")
	aiding := flag.Bool("aiding", true, "enable carrier-aided code tracking")
	flag.Parse()

	logger := log.New(os.Stdout, "tracksim: ", log.LstdFlags)

	const fsHz = 4 * codegen.CodeRateHz
	const ifHz = 0

	signal := simulate(*prn, fsHz, ifHz, *dopplerHz, *delaySamples, *blocks+3)

	acqBlockSamples := int(fsHz * codegen.CodeLengthChips / codegen.CodeRateHz)
	dopplerBins := make([]float64, 0, 21)
	for d := -5000.0; d <= 5000.0; d += 500 {
		dopplerBins = append(dopplerBins, d)
	}
	acqResult, err := acquire.Search(signal[:acqBlockSamples], *prn, fsHz, ifHz, dopplerBins)
	if err != nil {
		logger.Fatalf("acquisition search failed: %v", err)
	}
	if !acqResult.Acquired {
		logger.Fatalf("PRN %d not acquired (peak ratio %.2f)", *prn, acqResult.PeakRatio)
	}
	logger.Printf("acquired PRN %d: delay=%.1f samples doppler=%.0f Hz peak_ratio=%.2f",
		*prn, acqResult.DelaySamples, acqResult.DopplerHz, acqResult.PeakRatio)

	cfg, err := track.NewConfig(track.Config{
		IfFreqHz:              ifHz,
		FsInHz:                fsHz,
		VectorLengthSamples:   acqBlockSamples,
		PllBwHz:               25,
		DllBwHz:               2,
		EarlyLateSpacingChips: 0.5,
		CarrierAidingEnabled:  *aiding,
		Satellite:             track.GPSL1CA,
	})
	if err != nil {
		logger.Fatalf("invalid tracking configuration: %v", err)
	}

	queue := track.NewQueue(4)
	ch, err := track.NewChannel(0, *prn, cfg, 2*acqBlockSamples, queue, logger, nil)
	if err != nil {
		logger.Fatalf("failed to build tracking channel: %v", err)
	}
	ch.StartTracking(track.AcquisitionHandoff{
		PRN:                *prn,
		System:             'G',
		DelaySamples:       acqResult.DelaySamples,
		DopplerHz:          acqResult.DopplerHz,
		SampleStampSamples: 0,
	})

	pos := acqBlockSamples // the block already consumed for acquisition
	remaining := signal[pos:]

	for i := 0; i < *blocks+1 && len(remaining) > 0; i++ {
		out, consumed := ch.Process(remaining)
		remaining = remaining[consumed:]
		if out.Valid {
			logger.Printf("block %2d: I=%10.1f Q=%10.1f doppler=%8.1fHz code_freq=%.3fHz cn0=%.1fdB-Hz lock=%.2f",
				i, out.PromptI, out.PromptQ, out.CarrierDopplerHz, out.CodeFreqChips, out.CN0DbHz, out.CarrierLockTest)
		} else {
			logger.Printf("block %2d: not yet tracking (state transition)", i)
		}
		select {
		case ev := <-queue.Events():
			logger.Printf("control event: channel %d type %v", ev.ChannelID, ev.Type)
		default:
		}
	}
}

// simulate builds a noise-free baseband stream of n code periods for
// prn with a constant Doppler and a fixed initial code delay, the way
// a ground-truth generator for this demo would — not a faithful RF
// front-end model, just enough signal to exercise acquisition and
// tracking end to end.
func simulate(prn int, fsHz, ifHz, dopplerHz, delaySamples float64, periods int) []complex64 {
	table, err := codegen.Generate(prn)
	if err != nil {
		log.Fatalf("tracksim: codegen.Generate(%d): %v", prn, err)
	}
	n := int(fsHz*codegen.CodeLengthChips/codegen.CodeRateHz) * periods
	stepChips := codegen.CodeRateHz / fsHz

	out := make([]complex64, n)
	for i := 0; i < n; i++ {
		chipPos := float64(i)*stepChips - delaySamples*stepChips
		chipIdx := int(math.Floor(chipPos))
		chipIdx %= table.Len()
		if chipIdx < 0 {
			chipIdx += table.Len()
		}
		chip := float64(table.At(chipIdx + 1))

		phase := 2 * math.Pi * (ifHz + dopplerHz) * float64(i) / fsHz
		s, c := math.Sincos(phase)
		out[i] = complex64(complex(chip*c, chip*s))
	}
	return out
}
