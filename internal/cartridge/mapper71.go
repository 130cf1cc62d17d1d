package cartridge

// mapper71 implements Camerica/Codemasters boards (mapper 71): a switchable
// 16KiB PRG window at $8000 with a fixed last bank at $C000; CHR is always
// RAM. Some boards (submapper 1) use writes to $8000-$9FFF to control
// single-screen mirroring; this is modeled unconditionally since it is a
// no-op for boards that don't use it.
type mapper71 struct {
	romBanks
	mirroring Mirroring
	prgBank   uint8
}

func newMapper71(prg, chr []uint8, mirroring Mirroring, chrRAMSize int) *mapper71 {
	return &mapper71{romBanks: newRomBanks(prg, chr, chrRAMSize), mirroring: mirroring}
}

func (m *mapper71) CPURead(addr uint16) (uint8, bool) {
	switch {
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

func (m *mapper71) CPUWrite(addr uint16, value uint8, _ uint64) {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		if value&0x10 != 0 {
			m.mirroring = MirrorSingleScreenUpper
		} else {
			m.mirroring = MirrorSingleScreenLower
		}
	case addr >= 0xC000:
		m.prgBank = value & 0x0F
	}
}

func (m *mapper71) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x2000 && int(addr) < len(m.chr) {
		return m.chr[addr], true
	}
	return 0, false
}

func (m *mapper71) PPUWrite(addr uint16, value uint8) {
	if addr < 0x2000 && int(addr) < len(m.chr) {
		m.chr[addr] = value
	}
}

func (m *mapper71) CPUClock(uint64)                    {}
func (m *mapper71) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper71) Mirroring() Mirroring               { return m.mirroring }
func (m *mapper71) IRQPending() bool                   { return false }
func (m *mapper71) ClearIRQ()                          {}
func (m *mapper71) SaveState() []byte                  { return []byte{m.prgBank, byte(m.mirroring)} }
func (m *mapper71) LoadState(data []byte) error {
	if len(data) < 2 {
		return errShortState
	}
	m.prgBank = data[0]
	m.mirroring = Mirroring(data[1])
	return nil
}
