package savestate

import (
	"testing"

	"nesgo/internal/apu"
	"nesgo/internal/bus"
	"nesgo/internal/cpu"
	"nesgo/internal/framebuffer"
	"nesgo/internal/mixer"
	"nesgo/internal/ppu"
)

type fakeMapper struct {
	bank uint8
}

func (m *fakeMapper) SaveState() []byte { return []byte{m.bank} }
func (m *fakeMapper) LoadState(data []byte) error {
	if len(data) > 0 {
		m.bank = data[0]
	}
	return nil
}

func newTestMachine() (Machine, *fakeMapper) {
	cpuCore := cpu.New()
	ppuCore := ppu.New()
	mx := mixer.New(1789773, 44100, 4096)
	apuCore := apu.New(mx)
	b := bus.New(cpuCore, ppuCore, apuCore)
	mapper := &fakeMapper{bank: 3}

	return Machine{
		CPU: cpuCore, PPU: ppuCore, APU: apuCore, Mixer: mx, Bus: b,
		MapperID: 4, Mapper: mapper,
	}, mapper
}

func TestSaveBaselineThenLoad_RestoresCPURegisters(t *testing.T) {
	machine, _ := newTestMachine()
	mgr := NewManager(machine, [32]uint8{0xAB, 0xCD})

	machine.CPU.A = 0x42
	machine.CPU.X = 0x11
	machine.CPU.PC = 0xC000

	saved, err := mgr.SaveBaseline(1000)
	if err != nil {
		t.Fatalf("SaveBaseline: %v", err)
	}

	machine.CPU.A = 0
	machine.CPU.X = 0
	machine.CPU.PC = 0

	if err := mgr.LoadBaseline(saved); err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}
	if machine.CPU.A != 0x42 || machine.CPU.X != 0x11 || machine.CPU.PC != 0xC000 {
		t.Errorf("CPU registers not restored: A=%#x X=%#x PC=%#x", machine.CPU.A, machine.CPU.X, machine.CPU.PC)
	}
}

func TestLoadBaseline_RejectsMismatchedRomHash(t *testing.T) {
	machine, _ := newTestMachine()
	mgr := NewManager(machine, [32]uint8{0x11})

	saved, err := mgr.SaveBaseline(0)
	if err != nil {
		t.Fatalf("SaveBaseline: %v", err)
	}

	other := NewManager(machine, [32]uint8{0x22})
	if err := other.LoadBaseline(saved); err == nil {
		t.Error("expected an error loading a state saved for a different ROM")
	}
}

func TestLoadBaseline_RestoresMapperState(t *testing.T) {
	machine, mapper := newTestMachine()
	mgr := NewManager(machine, [32]uint8{})

	mapper.bank = 7
	saved, err := mgr.SaveBaseline(0)
	if err != nil {
		t.Fatalf("SaveBaseline: %v", err)
	}

	mapper.bank = 0
	if err := mgr.LoadBaseline(saved); err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}
	if mapper.bank != 7 {
		t.Errorf("expected mapper bank restored to 7, got %d", mapper.bank)
	}
}

func TestRewinder_CanRewindRequiresTwoFrames(t *testing.T) {
	machine, _ := newTestMachine()
	r := NewRewinder(machine, 60)

	indices := make([]byte, framebuffer.Width*framebuffer.Height)
	if err := r.PushFrame(indices); err != nil {
		t.Fatalf("PushFrame: %v", err)
	}
	if r.CanRewind() {
		t.Error("expected CanRewind to be false with only one frame pushed")
	}

	if err := r.PushFrame(indices); err != nil {
		t.Fatalf("PushFrame: %v", err)
	}
	if !r.CanRewind() {
		t.Error("expected CanRewind to be true with two frames pushed")
	}
}

func TestRewinder_RewindOneFrame_RestoresPriorRegisterState(t *testing.T) {
	machine, _ := newTestMachine()
	r := NewRewinder(machine, 60)
	indices := make([]byte, framebuffer.Width*framebuffer.Height)

	machine.CPU.A = 1
	if err := r.PushFrame(indices); err != nil {
		t.Fatalf("PushFrame: %v", err)
	}

	machine.CPU.A = 2
	if err := r.PushFrame(indices); err != nil {
		t.Fatalf("PushFrame: %v", err)
	}

	if _, err := r.RewindOneFrame(); err != nil {
		t.Fatalf("RewindOneFrame: %v", err)
	}
	if machine.CPU.A != 1 {
		t.Errorf("expected A restored to 1 after rewinding one frame, got %d", machine.CPU.A)
	}
}

func TestRewinder_RewindOneFrame_RestoresIndexPlane(t *testing.T) {
	machine, _ := newTestMachine()
	r := NewRewinder(machine, 60)

	first := make([]byte, framebuffer.Width*framebuffer.Height)
	for i := range first {
		first[i] = 5
	}
	if err := r.PushFrame(first); err != nil {
		t.Fatalf("PushFrame: %v", err)
	}

	second := make([]byte, framebuffer.Width*framebuffer.Height)
	for i := range second {
		second[i] = 9
	}
	if err := r.PushFrame(second); err != nil {
		t.Fatalf("PushFrame: %v", err)
	}

	restored, err := r.RewindOneFrame()
	if err != nil {
		t.Fatalf("RewindOneFrame: %v", err)
	}
	for i, v := range restored {
		if v != 5 {
			t.Fatalf("index plane byte %d: want 5, got %d", i, v)
		}
	}
}

func TestRewinder_TrimsToCapacity(t *testing.T) {
	machine, _ := newTestMachine()
	r := NewRewinder(machine, 3)
	indices := make([]byte, framebuffer.Width*framebuffer.Height)

	for i := 0; i < 10; i++ {
		if err := r.PushFrame(indices); err != nil {
			t.Fatalf("PushFrame %d: %v", i, err)
		}
	}
	if len(r.frames) != 3 {
		t.Errorf("expected history trimmed to capacity 3, got %d", len(r.frames))
	}
}

func TestRewinder_CannotRewindReturnsError(t *testing.T) {
	machine, _ := newTestMachine()
	r := NewRewinder(machine, 60)
	if _, err := r.RewindOneFrame(); err == nil {
		t.Error("expected an error rewinding with empty history")
	}
}

func TestBuildAndApplyReversePatch_RoundTrips(t *testing.T) {
	prev := []byte("the quick brown fox")
	cur := []byte("the slow brown foxes")

	patch := buildReversePatch(prev, cur)
	got, err := applyReversePatch(cur, patch)
	if err != nil {
		t.Fatalf("applyReversePatch: %v", err)
	}
	if string(got) != string(prev) {
		t.Errorf("got %q, want %q", got, prev)
	}
}

func TestCompressBlock_RoundTrips(t *testing.T) {
	src := make([]byte, 4096)
	for i := range src {
		src[i] = byte(i % 7)
	}
	compressed := compressBlock(src)
	got, err := decompressBlock(compressed)
	if err != nil {
		t.Fatalf("decompressBlock: %v", err)
	}
	if len(got) != len(src) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(src))
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("byte %d: got %d want %d", i, got[i], src[i])
		}
	}
}

func TestCompressBlock_HandlesIncompressibleInput(t *testing.T) {
	src := []byte{1, 2, 3}
	compressed := compressBlock(src)
	got, err := decompressBlock(compressed)
	if err != nil {
		t.Fatalf("decompressBlock: %v", err)
	}
	if string(got) != string(src) {
		t.Errorf("got %v want %v", got, src)
	}
}
