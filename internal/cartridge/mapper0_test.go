package cartridge

import "testing"

func TestMapper0_16KBMirroring(t *testing.T) {
	prg := make([]uint8, 0x4000)
	for i := range prg {
		prg[i] = uint8(i & 0xFF)
	}
	m := newMapper0(prg, make([]uint8, 0x2000), MirrorHorizontal, 0)

	v1, ok1 := m.CPURead(0x8000)
	v2, ok2 := m.CPURead(0xC000)
	if !ok1 || !ok2 || v1 != v2 {
		t.Errorf("expected 16KiB mirroring, got (0x%02X,%v) vs (0x%02X,%v)", v1, ok1, v2, ok2)
	}
}

func TestMapper0_32KBNoMirroring(t *testing.T) {
	prg := make([]uint8, 0x8000)
	for i := range prg {
		prg[i] = uint8((i >> 8) & 0xFF)
	}
	m := newMapper0(prg, make([]uint8, 0x2000), MirrorVertical, 0)

	v1, _ := m.CPURead(0x8000)
	v2, _ := m.CPURead(0xC000)
	if v1 == v2 {
		t.Errorf("32KiB ROM should not mirror: 0x8000=0x%02X 0xC000=0x%02X", v1, v2)
	}
}

func TestMapper0_CHRRAMWritable(t *testing.T) {
	m := newMapper0(make([]uint8, 0x4000), nil, MirrorHorizontal, 0x2000)
	m.PPUWrite(0x0100, 0xAB)
	v, ok := m.PPURead(0x0100)
	if !ok || v != 0xAB {
		t.Errorf("expected CHR-RAM write to persist, got (0x%02X,%v)", v, ok)
	}
}

func TestMapper0_CHRROMReadOnly(t *testing.T) {
	chr := make([]uint8, 0x2000)
	chr[0x0100] = 0x40
	m := newMapper0(make([]uint8, 0x4000), chr, MirrorHorizontal, 0)
	m.PPUWrite(0x0100, 0xFF)
	v, _ := m.PPURead(0x0100)
	if v != 0x40 {
		t.Errorf("CHR-ROM write should be ignored, got 0x%02X", v)
	}
}

func TestMapper0_SRAMPersists(t *testing.T) {
	m := newMapper0(make([]uint8, 0x4000), make([]uint8, 0x2000), MirrorHorizontal, 0)
	m.CPUWrite(0x6000, 0xDE, 0)
	v, ok := m.CPURead(0x6000)
	if !ok || v != 0xDE {
		t.Errorf("expected SRAM byte to persist, got (0x%02X,%v)", v, ok)
	}
}
