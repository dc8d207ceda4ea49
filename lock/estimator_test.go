package lock

import (
	"math"
	"testing"
)

func fillWindow(t *testing.T, e *Estimator, samples []complex128) Result {
	t.Helper()
	var last Result
	var ready bool
	for _, s := range samples {
		last, ready = e.Add(s)
	}
	if !ready {
		t.Fatal("window never became ready")
	}
	return last
}

func TestNotReadyUntilWindowFull(t *testing.T) {
	e := New(5, 0.001, DefaultCarrierLockThresh, DefaultMinValidCN0, DefaultMaxFailCount)
	for i := 0; i < 4; i++ {
		if _, ready := e.Add(complex(1, 0)); ready {
			t.Fatalf("became ready early at sample %d", i)
		}
	}
	if _, ready := e.Add(complex(1, 0)); !ready {
		t.Fatal("expected ready on the 5th sample")
	}
}

func TestStrongConstantSignalLooksLocked(t *testing.T) {
	e := New(20, 0.001, DefaultCarrierLockThresh, DefaultMinValidCN0, DefaultMaxFailCount)
	samples := make([]complex128, 20)
	for i := range samples {
		samples[i] = complex(1000, 0)
	}
	r := fillWindow(t, e, samples)
	if math.Abs(r.LockIndicator-1) > 1e-9 {
		t.Errorf("constant real Prompt should give lock indicator ~1, got %v", r.LockIndicator)
	}
}

func TestZeroSignalFlagsUnreliableCN0(t *testing.T) {
	e := New(20, 0.001, DefaultCarrierLockThresh, DefaultMinValidCN0, DefaultMaxFailCount)
	samples := make([]complex128, 20) // all zero
	r := fillWindow(t, e, samples)
	if r.CN0Valid {
		t.Errorf("all-zero window should flag CN0 invalid")
	}
	if r.CN0DbHz != 0 {
		t.Errorf("invalid CN0 should report 0, got %v", r.CN0DbHz)
	}
}

func TestFailCounterIncrementsOnWeakSignal(t *testing.T) {
	e := New(5, 0.001, DefaultCarrierLockThresh, DefaultMinValidCN0, 50)
	samples := make([]complex128, 5) // all zero -> unreliable every round
	for round := 0; round < 3; round++ {
		fillWindow(t, e, samples)
	}
	if e.FailCount() != 3 {
		t.Errorf("FailCount() = %d, want 3 after 3 failing rounds", e.FailCount())
	}
}

func TestFailCounterDecrementsOnGoodSignalAndFloorsAtZero(t *testing.T) {
	e := New(5, 0.001, 0.0, 0.0, 50) // permissive thresholds: any nonzero signal "locks"
	good := []complex128{complex(1000, 0), complex(1000, 0), complex(1000, 0), complex(1000, 0), complex(1000, 0)}
	fillWindow(t, e, good)
	if e.FailCount() != 0 {
		t.Fatalf("good signal should not raise the fail counter, got %d", e.FailCount())
	}
	fillWindow(t, e, good)
	if e.FailCount() != 0 {
		t.Errorf("fail counter should floor at 0, got %d", e.FailCount())
	}
}

func TestLossOfLockEmittedAndCounterReset(t *testing.T) {
	e := New(1, 0.001, DefaultCarrierLockThresh, DefaultMinValidCN0, 2)
	var last Result
	for i := 0; i < 3; i++ {
		last, _ = e.Add(complex(0, 0)) // unreliable every round
	}
	if !last.LossOfLock {
		t.Fatal("expected loss-of-lock after exceeding max fail count")
	}
	if e.FailCount() != 0 {
		t.Errorf("fail counter should reset to 0 after loss-of-lock, got %d", e.FailCount())
	}
}
