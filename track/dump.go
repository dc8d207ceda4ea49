package track

import (
	"encoding/binary"
	"io"
)

// DumpRecord is one binary dump row, written once per tracking block.
// Field order and widths are fixed so an external reader can parse the
// file without a schema.
type DumpRecord struct {
	EarlyMag, PromptMag, LateMag float32
	PromptI, PromptQ             float32
	SampleCounter                uint64
	AccCarrierPhaseRad           float64
	CarrierDopplerHz             float64
	CodeFreqChips                float64
	CarrierErrHz                 float64
	CarrierDopplerHzFilt         float64
	CodeErrChips                 float64
	CodeErrChipsFilt             float64
	CN0DbHz                      float64
	CarrierLockTest              float64
	RemCodePhaseSamples          float64
	NextSampleBoundary           float64
}

// DumpWriter serializes DumpRecords to an io.Writer in little-endian,
// fixed field order, one binary.Write per field.
type DumpWriter struct {
	w io.Writer
}

// NewDumpWriter wraps w for dump output.
func NewDumpWriter(w io.Writer) *DumpWriter {
	return &DumpWriter{w: w}
}

// Write appends one record. A write error here must never affect
// tracking state: the Driver logs and continues on failure rather
// than propagating it into the loop.
func (d *DumpWriter) Write(r DumpRecord) error {
	fields := []any{
		r.EarlyMag, r.PromptMag, r.LateMag,
		r.PromptI, r.PromptQ,
		r.SampleCounter,
		r.AccCarrierPhaseRad,
		r.CarrierDopplerHz,
		r.CodeFreqChips,
		r.CarrierErrHz,
		r.CarrierDopplerHzFilt,
		r.CodeErrChips,
		r.CodeErrChipsFilt,
		r.CN0DbHz,
		r.CarrierLockTest,
		r.RemCodePhaseSamples,
		r.NextSampleBoundary,
	}
	for _, f := range fields {
		if err := binary.Write(d.w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
