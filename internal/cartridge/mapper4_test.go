package cartridge

import "testing"

func TestMapper4_FixedBanksAtReset(t *testing.T) {
	prg := make([]uint8, 0x10000) // 8x8KiB banks
	for bank := 0; bank < 8; bank++ {
		for i := 0; i < 0x2000; i++ {
			prg[bank*0x2000+i] = uint8(bank)
		}
	}
	m := newMapper4(prg, make([]uint8, 0x2000), 0)

	// $E000 is always the last 8KiB bank regardless of bankSelect/prgMode.
	v, ok := m.CPURead(0xE000)
	if !ok || v != 7 {
		t.Errorf("expected last bank (7) fixed at $E000, got (0x%02X,%v)", v, ok)
	}
}

func TestMapper4_MirroringWrite(t *testing.T) {
	m := newMapper4(make([]uint8, 0x10000), make([]uint8, 0x2000), 0)
	m.CPUWrite(0xA000, 0x00, 0) // bit0=0 -> vertical
	if m.Mirroring() != MirrorVertical {
		t.Errorf("expected vertical mirroring, got %v", m.Mirroring())
	}
	m.CPUWrite(0xA000, 0x01, 0) // bit0=1 -> horizontal
	if m.Mirroring() != MirrorHorizontal {
		t.Errorf("expected horizontal mirroring, got %v", m.Mirroring())
	}
}

func TestMapper4_IRQClocksOnA12Rise(t *testing.T) {
	m := newMapper4(make([]uint8, 0x10000), make([]uint8, 0x2000), 0)
	m.CPUWrite(0xC000, 4, 0)    // irqLatch = 4
	m.CPUWrite(0xC001, 0, 0)    // force reload on next clock
	m.CPUWrite(0xE001, 0, 0)    // enable IRQ

	// Drive A12 low long enough, then high, several times to clock the
	// counter down from its reload value to zero and assert IRQPending.
	cycle := uint32(0)
	drive := func(high bool) {
		addr := uint16(0x0000)
		if high {
			addr = 0x1000
		}
		m.PPUAddressBusChange(addr, cycle)
		cycle += 20
	}
	for i := 0; i < 6; i++ {
		drive(false)
		drive(true)
	}
	if !m.IRQPending() {
		t.Error("expected IRQ pending after counter reaches zero")
	}
	m.ClearIRQ()
	if m.IRQPending() {
		t.Error("expected ClearIRQ to clear pending state")
	}
}

func TestMapper4_SaveLoadStateRoundTrip(t *testing.T) {
	m := newMapper4(make([]uint8, 0x10000), make([]uint8, 0x2000), 0)
	m.CPUWrite(0x8000, 0x42, 0)
	m.CPUWrite(0x8001, 0x07, 0)
	m.CPUWrite(0xC000, 9, 0)

	saved := m.SaveState()
	m2 := newMapper4(make([]uint8, 0x10000), make([]uint8, 0x2000), 0)
	if err := m2.LoadState(saved); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if m2.bankSelect != m.bankSelect || m2.banks != m.banks || m2.irqLatch != m.irqLatch {
		t.Error("LoadState did not restore register state")
	}
}
