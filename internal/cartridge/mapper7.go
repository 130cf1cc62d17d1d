package cartridge

// mapper7 implements AxROM (mapper 7): switchable 32 KiB PRG bank, fixed
// single-screen mirroring controlled by bit 4 of the bank register (one of
// the two nametable pages, selected per write).
type mapper7 struct {
	romBanks
	prgBank   uint8
	mirroring Mirroring
}

func newMapper7(prg, chr []uint8, chrRAMSize int) *mapper7 {
	return &mapper7{romBanks: newRomBanks(prg, chr, chrRAMSize), mirroring: MirrorSingleScreenLower}
}

func (m *mapper7) CPURead(addr uint16) (uint8, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	off := uint32(m.prgBank)*0x8000 + uint32(addr-0x8000)
	if int(off) < len(m.prg) {
		return m.prg[off], true
	}
	return 0, false
}

func (m *mapper7) CPUWrite(addr uint16, value uint8, _ uint64) {
	if addr < 0x8000 {
		return
	}
	m.prgBank = value & 0x07
	if value&0x10 != 0 {
		m.mirroring = MirrorSingleScreenUpper
	} else {
		m.mirroring = MirrorSingleScreenLower
	}
}

func (m *mapper7) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x2000 && int(addr) < len(m.chr) {
		return m.chr[addr], true
	}
	return 0, false
}

func (m *mapper7) PPUWrite(addr uint16, value uint8) {
	if m.chrIsRAM && addr < 0x2000 && int(addr) < len(m.chr) {
		m.chr[addr] = value
	}
}

func (m *mapper7) CPUClock(uint64)                    {}
func (m *mapper7) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper7) Mirroring() Mirroring               { return m.mirroring }
func (m *mapper7) IRQPending() bool                   { return false }
func (m *mapper7) ClearIRQ()                          {}
func (m *mapper7) SaveState() []byte                  { return []byte{m.prgBank, byte(m.mirroring)} }
func (m *mapper7) LoadState(data []byte) error {
	if len(data) < 2 {
		return errShortState
	}
	m.prgBank = data[0]
	m.mirroring = Mirroring(data[1])
	return nil
}
