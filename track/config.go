// Package track implements the Tracking Driver: it owns all loop
// state, performs pull-in alignment, drives the Replica Generator,
// Correlator, Discriminators, Loop Filters and Lock/C/N0 Estimator
// once per block, manages the variable block length so each block
// spans exactly one code period, emits output records, and signals
// loss of lock.
package track

import (
	"errors"
	"fmt"

	"github.com/mcwell/l1ca-track/codegen"
	"github.com/mcwell/l1ca-track/lock"
)

// Satellite parameterizes the tracking core over the GNSS signal being
// tracked: the loop arithmetic reads code length, code rate and
// carrier frequency from this struct. NewChannel always builds its
// code table with codegen.Generate, the GPS L1 C/A generator.
type Satellite struct {
	CodeLengthChips float64 // e.g. 1023 for GPS L1 C/A
	CodeRateHz      float64 // nominal chipping rate, e.g. 1.023e6
	CarrierFreqHz   float64 // nominal RF carrier frequency, for carrier aiding
}

// GPSL1CA is the Satellite parameterization for the signal this
// repository ships a code generator for (codegen.Generate).
var GPSL1CA = Satellite{
	CodeLengthChips: codegen.CodeLengthChips,
	CodeRateHz:      codegen.CodeRateHz,
	CarrierFreqHz:   1575.42e6,
}

// Config is the tracking channel's immutable configuration. Build one
// with NewConfig, which validates it once at construction; nothing in
// this package mutates a Config afterwards.
type Config struct {
	IfFreqHz              float64
	FsInHz                float64
	VectorLengthSamples   int
	PllBwHz               float64
	DllBwHz               float64
	EarlyLateSpacingChips float64
	CarrierAidingEnabled  bool
	DumpEnabled           bool
	DumpPathPrefix        string
	Satellite             Satellite

	CN0BufferSize    int
	MinValidCN0      float64
	MaxFailCount     int
	CarrierLockThresh float64
}

// NewConfig rejects non-positive bandwidths, sampling rate, or an
// early-late spacing outside (0,1), and fills in the lock/C/N0
// estimator defaults when left zero.
func NewConfig(cfg Config) (Config, error) {
	if cfg.FsInHz <= 0 {
		return Config{}, errors.New("track: sampling rate must be positive")
	}
	if cfg.PllBwHz <= 0 {
		return Config{}, errors.New("track: PLL bandwidth must be positive")
	}
	if cfg.DllBwHz <= 0 {
		return Config{}, errors.New("track: DLL bandwidth must be positive")
	}
	if cfg.EarlyLateSpacingChips <= 0 || cfg.EarlyLateSpacingChips >= 1 {
		return Config{}, fmt.Errorf("track: early-late spacing %v chips must be in (0,1)", cfg.EarlyLateSpacingChips)
	}
	if cfg.Satellite.CodeLengthChips <= 0 || cfg.Satellite.CodeRateHz <= 0 || cfg.Satellite.CarrierFreqHz <= 0 {
		return Config{}, errors.New("track: satellite parameters must be positive")
	}
	if cfg.VectorLengthSamples <= 0 {
		cfg.VectorLengthSamples = int(cfg.FsInHz*cfg.Satellite.CodeLengthChips/cfg.Satellite.CodeRateHz + 0.5)
	}
	if cfg.CN0BufferSize <= 0 {
		cfg.CN0BufferSize = lock.DefaultBufferSize
	}
	if cfg.MinValidCN0 == 0 {
		cfg.MinValidCN0 = lock.DefaultMinValidCN0
	}
	if cfg.MaxFailCount <= 0 {
		cfg.MaxFailCount = lock.DefaultMaxFailCount
	}
	if cfg.CarrierLockThresh == 0 {
		cfg.CarrierLockThresh = lock.DefaultCarrierLockThresh
	}
	return cfg, nil
}
