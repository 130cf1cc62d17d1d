package cartridge

// mapper0 implements NROM (mapper 0): no bank switching, 16 or 32 KiB PRG-ROM
// mirrored into the 32 KiB CPU window, 8 KiB CHR-ROM/RAM.
type mapper0 struct {
	romBanks
	mirroring Mirroring
}

func newMapper0(prg, chr []uint8, mirroring Mirroring, chrRAMSize int) *mapper0 {
	return &mapper0{romBanks: newRomBanks(prg, chr, chrRAMSize), mirroring: mirroring}
}

func (m *mapper0) CPURead(addr uint16) (uint8, bool) {
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

func (m *mapper0) CPUWrite(addr uint16, value uint8, _ uint64) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.sav[addr-0x6000] = value
	}
}

func (m *mapper0) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x2000 && int(addr) < len(m.chr) {
		return m.chr[addr], true
	}
	return 0, false
}

func (m *mapper0) PPUWrite(addr uint16, value uint8) {
	if m.chrIsRAM && addr < 0x2000 && int(addr) < len(m.chr) {
		m.chr[addr] = value
	}
}

func (m *mapper0) CPUClock(uint64)                          {}
func (m *mapper0) PPUAddressBusChange(uint16, uint32)       {}
func (m *mapper0) Mirroring() Mirroring                     { return m.mirroring }
func (m *mapper0) IRQPending() bool                         { return false }
func (m *mapper0) ClearIRQ()                                {}
func (m *mapper0) SaveState() []byte                        { return append([]byte(nil), m.sav...) }
func (m *mapper0) LoadState(data []byte) error {
	copy(m.sav, data)
	return nil
}
