package cartridge

import "testing"

// writeMMC1 performs the 5-bit serial write protocol MMC1 expects: five
// consecutive single-bit writes to the same register window.
func writeMMC1(m *mapper1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		bit := (value >> i) & 1
		m.CPUWrite(addr, bit, 0)
	}
}

func TestMapper1_ResetForcesPRGMode3(t *testing.T) {
	prg := make([]uint8, 0x8000)
	m := newMapper1(prg, make([]uint8, 0x2000), 0)

	writeMMC1(m, 0x8000, 0x00) // control = PRG mode 0 (32K)
	if m.prgMode() != 0 {
		t.Fatalf("expected PRG mode 0 after write, got %d", m.prgMode())
	}

	m.CPUWrite(0x8000, 0x80, 0) // bit7 set: reset
	if m.prgMode() != 3 {
		t.Errorf("expected PRG mode forced to 3 after reset write, got %d", m.prgMode())
	}
}

func TestMapper1_PRGBankSwitching(t *testing.T) {
	prg := make([]uint8, 0x10000) // 4x16KiB banks
	for bank := 0; bank < 4; bank++ {
		for i := 0; i < 0x4000; i++ {
			prg[bank*0x4000+i] = uint8(bank)
		}
	}
	m := newMapper1(prg, make([]uint8, 0x2000), 0)

	writeMMC1(m, 0x8000, 0x0C) // control: PRG mode 3 (fix last at $C000)
	writeMMC1(m, 0xE000, 0x01) // PRG bank register = 1

	v, ok := m.CPURead(0x8000)
	if !ok || v != 1 {
		t.Errorf("expected bank 1 at $8000, got (0x%02X,%v)", v, ok)
	}
	v, ok = m.CPURead(0xC000)
	if !ok || v != 3 {
		t.Errorf("expected fixed last bank (3) at $C000, got (0x%02X,%v)", v, ok)
	}
}

func TestMapper1_MirroringFromControl(t *testing.T) {
	m := newMapper1(make([]uint8, 0x8000), make([]uint8, 0x2000), 0)
	writeMMC1(m, 0x8000, 0x02) // mirroring bits = 2 -> vertical
	if m.Mirroring() != MirrorVertical {
		t.Errorf("expected vertical mirroring, got %v", m.Mirroring())
	}
	writeMMC1(m, 0x8000, 0x03) // mirroring bits = 3 -> horizontal
	if m.Mirroring() != MirrorHorizontal {
		t.Errorf("expected horizontal mirroring, got %v", m.Mirroring())
	}
}

func TestMapper1_PRGRAMDisable(t *testing.T) {
	m := newMapper1(make([]uint8, 0x8000), make([]uint8, 0x2000), 0)
	m.CPUWrite(0x6000, 0x11, 0)
	if v, ok := m.CPURead(0x6000); !ok || v != 0x11 {
		t.Fatalf("expected SRAM readable before disable, got (0x%02X,%v)", v, ok)
	}

	writeMMC1(m, 0xE000, 0x10) // bit4 set disables PRG-RAM
	if _, ok := m.CPURead(0x6000); ok {
		t.Error("expected SRAM reads to report open bus once PRG-RAM is disabled")
	}
}
