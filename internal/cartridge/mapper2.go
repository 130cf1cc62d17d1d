package cartridge

// mapper2 implements UxROM (mapper 2): a single switchable 16 KiB bank at
// $8000 and a fixed last bank at $C000. CHR is always RAM (no banking).
type mapper2 struct {
	romBanks
	mirroring Mirroring
	prgBank   uint8
}

func newMapper2(prg, chr []uint8, mirroring Mirroring, chrRAMSize int) *mapper2 {
	return &mapper2{romBanks: newRomBanks(prg, chr, chrRAMSize), mirroring: mirroring}
}

func (m *mapper2) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.sav[addr-0x6000], true
	case addr >= 0x8000 && addr < 0xC000:
		off := uint32(m.prgBank)*0x4000 + uint32(addr-0x8000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	case addr >= 0xC000:
		off := uint32(m.prgBanks-1)*0x4000 + uint32(addr-0xC000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	}
	return 0, false
}

func (m *mapper2) CPUWrite(addr uint16, value uint8, _ uint64) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.sav[addr-0x6000] = value
	case addr >= 0x8000:
		m.prgBank = value & 0x0F
	}
}

func (m *mapper2) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x2000 && int(addr) < len(m.chr) {
		return m.chr[addr], true
	}
	return 0, false
}

func (m *mapper2) PPUWrite(addr uint16, value uint8) {
	if m.chrIsRAM && addr < 0x2000 && int(addr) < len(m.chr) {
		m.chr[addr] = value
	}
}

func (m *mapper2) CPUClock(uint64)                    {}
func (m *mapper2) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper2) Mirroring() Mirroring               { return m.mirroring }
func (m *mapper2) IRQPending() bool                   { return false }
func (m *mapper2) ClearIRQ()                          {}
func (m *mapper2) SaveState() []byte                  { return []byte{m.prgBank} }
func (m *mapper2) LoadState(data []byte) error {
	if len(data) < 1 {
		return errShortState
	}
	m.prgBank = data[0]
	return nil
}
