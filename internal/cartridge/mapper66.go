package cartridge

// mapper66 implements GxROM (mapper 66): one register selects both a 32KiB
// PRG bank (bits 4-5) and an 8KiB CHR bank (bits 0-1).
type mapper66 struct {
	romBanks
	mirroring Mirroring
	prgBank   uint8
	chrBank   uint8
}

func newMapper66(prg, chr []uint8, mirroring Mirroring, chrRAMSize int) *mapper66 {
	return &mapper66{romBanks: newRomBanks(prg, chr, chrRAMSize), mirroring: mirroring}
}

func (m *mapper66) CPURead(addr uint16) (uint8, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	off := uint32(m.prgBank)*0x8000 + uint32(addr-0x8000)
	if int(off) < len(m.prg) {
		return m.prg[off], true
	}
	return 0, false
}

func (m *mapper66) CPUWrite(addr uint16, value uint8, _ uint64) {
	if addr < 0x8000 {
		return
	}
	m.chrBank = value & 0x03
	m.prgBank = (value >> 4) & 0x03
}

func (m *mapper66) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x2000 {
		off := uint32(m.chrBank)*0x2000 + uint32(addr)
		if int(off) < len(m.chr) {
			return m.chr[off], true
		}
	}
	return 0, false
}

func (m *mapper66) PPUWrite(addr uint16, value uint8) {
	if m.chrIsRAM && addr < 0x2000 {
		off := uint32(m.chrBank)*0x2000 + uint32(addr)
		if int(off) < len(m.chr) {
			m.chr[off] = value
		}
	}
}

func (m *mapper66) CPUClock(uint64)                    {}
func (m *mapper66) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper66) Mirroring() Mirroring               { return m.mirroring }
func (m *mapper66) IRQPending() bool                   { return false }
func (m *mapper66) ClearIRQ()                          {}
func (m *mapper66) SaveState() []byte                  { return []byte{m.prgBank, m.chrBank} }
func (m *mapper66) LoadState(data []byte) error {
	if len(data) < 2 {
		return errShortState
	}
	m.prgBank, m.chrBank = data[0], data[1]
	return nil
}
