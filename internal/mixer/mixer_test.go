package mixer

import "testing"

func TestNew_SizeAtLeastOneSecondOfOutput(t *testing.T) {
	m := New(1789773, 44100, 0)
	if m.size < 44100 {
		t.Errorf("expected buffer size >= sample rate, got %d", m.size)
	}
}

func TestAddDelta_ZeroDeltaIsNoOp(t *testing.T) {
	m := New(1789773, 44100, 4096)
	before := make([]int32, len(m.buf))
	copy(before, m.buf)
	m.AddDelta(100, 0)
	for i := range m.buf {
		if m.buf[i] != before[i] {
			t.Fatal("expected zero delta to leave the buffer untouched")
		}
	}
}

func TestEndFrame_MakesSamplesAvailable(t *testing.T) {
	m := New(1789773, 44100, 4096)
	if m.SamplesAvail() != 0 {
		t.Fatal("expected no samples available before any EndFrame")
	}
	// One NES frame's worth of CPU cycles.
	m.EndFrame(29780)
	if m.SamplesAvail() == 0 {
		t.Error("expected samples available after EndFrame advances the clock")
	}
}

func TestReadSamplesI16_DrainsAvailableSamples(t *testing.T) {
	m := New(1789773, 44100, 4096)
	m.AddDelta(1000, 16000)
	m.EndFrame(29780)
	avail := m.SamplesAvail()
	out := make([]int16, avail)
	n := m.ReadSamplesI16(out)
	if n != avail {
		t.Errorf("expected to read %d samples, got %d", avail, n)
	}
	if m.SamplesAvail() != 0 {
		t.Errorf("expected buffer drained after reading all samples, got %d remaining", m.SamplesAvail())
	}
}

func TestReadSamples_ScalesToFloatRange(t *testing.T) {
	m := New(1789773, 44100, 4096)
	m.AddDelta(1000, 16000)
	m.EndFrame(29780)
	out := make([]float32, m.SamplesAvail())
	m.ReadSamples(out)
	for _, v := range out {
		if v < -1.0 || v > 1.0 {
			t.Errorf("expected sample in [-1,1], got %f", v)
		}
	}
}

func TestClampToI16CStyle_PassesThroughInRangeValues(t *testing.T) {
	if got := clampToI16CStyle(100); got != 100 {
		t.Errorf("expected in-range value unchanged, got %d", got)
	}
}

func TestClampToI16CStyle_FoldsOutOfRangeValues(t *testing.T) {
	got := clampToI16CStyle(40000) // overflows int16
	if got == 40000 {
		t.Error("expected out-of-range value to be folded, not passed through")
	}
}

func TestSetRates_UpdatesFactorWithoutPanicking(t *testing.T) {
	m := New(1789773, 44100, 4096)
	m.SetRates(1789773, 48000)
}

func TestClear_ResetsAvailAndIntegrator(t *testing.T) {
	m := New(1789773, 44100, 4096)
	m.AddDelta(1000, 16000)
	m.EndFrame(29780)
	m.integrator = 500
	m.Clear()
	if m.SamplesAvail() != 0 {
		t.Error("expected Clear to reset samples avail to 0")
	}
	if m.integrator != 0 {
		t.Error("expected Clear to reset the integrator")
	}
}
