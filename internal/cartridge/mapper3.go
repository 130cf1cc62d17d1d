package cartridge

// mapper3 implements CNROM (mapper 3): fixed PRG-ROM, switchable 8 KiB CHR
// bank selected by any write to $8000-$FFFF.
type mapper3 struct {
	romBanks
	mirroring Mirroring
	chrBank   uint8
}

func newMapper3(prg, chr []uint8, mirroring Mirroring, chrRAMSize int) *mapper3 {
	return &mapper3{romBanks: newRomBanks(prg, chr, chrRAMSize), mirroring: mirroring}
}

func (m *mapper3) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.sav[addr-0x6000], true
	case addr >= 0x8000:
		off := addr - 0x8000
		if m.prgBanks == 1 {
			off &= 0x3FFF
		}
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	}
	return 0, false
}

func (m *mapper3) CPUWrite(addr uint16, value uint8, _ uint64) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.sav[addr-0x6000] = value
	case addr >= 0x8000:
		m.chrBank = value & 0x03
	}
}

func (m *mapper3) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x2000 {
		off := uint32(m.chrBank)*0x2000 + uint32(addr)
		if int(off) < len(m.chr) {
			return m.chr[off], true
		}
	}
	return 0, false
}

func (m *mapper3) PPUWrite(addr uint16, value uint8) {
	if m.chrIsRAM && addr < 0x2000 {
		off := uint32(m.chrBank)*0x2000 + uint32(addr)
		if int(off) < len(m.chr) {
			m.chr[off] = value
		}
	}
}

func (m *mapper3) CPUClock(uint64)                    {}
func (m *mapper3) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper3) Mirroring() Mirroring               { return m.mirroring }
func (m *mapper3) IRQPending() bool                   { return false }
func (m *mapper3) ClearIRQ()                          {}
func (m *mapper3) SaveState() []byte                  { return []byte{m.chrBank} }
func (m *mapper3) LoadState(data []byte) error {
	if len(data) < 1 {
		return errShortState
	}
	m.chrBank = data[0]
	return nil
}
