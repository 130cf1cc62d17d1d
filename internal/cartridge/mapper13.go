package cartridge

// mapper13 implements CPROM (mapper 13): fixed 32KiB PRG-ROM, CHR-RAM only.
// $0000-$0FFF is a fixed 4KiB page; $1000-$1FFF switches among four 4KiB
// CHR-RAM banks selected by writes to $8000-$FFFF.
type mapper13 struct {
	romBanks
	chrBank uint8
}

func newMapper13(prg, chr []uint8) *mapper13 {
	// CPROM is always 16KiB of CHR-RAM (4 banks of 4KiB); ignore any CHR-ROM
	// declared in the header since hardware has none.
	return &mapper13{romBanks: newRomBanks(prg, nil, 0x4000)}
}

func (m *mapper13) CPURead(addr uint16) (uint8, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	off := addr - 0x8000
	if m.prgBanks == 1 {
		off &= 0x3FFF
	}
	if int(off) < len(m.prg) {
		return m.prg[off], true
	}
	return 0, false
}

func (m *mapper13) CPUWrite(addr uint16, value uint8, _ uint64) {
	if addr >= 0x8000 {
		m.chrBank = value & 0x03
	}
}

func (m *mapper13) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x1000 {
		return m.chr[addr], true
	}
	if addr < 0x2000 {
		off := uint32(m.chrBank)*0x1000 + uint32(addr-0x1000)
		if int(off) < len(m.chr) {
			return m.chr[off], true
		}
	}
	return 0, false
}

func (m *mapper13) PPUWrite(addr uint16, value uint8) {
	if addr < 0x1000 {
		m.chr[addr] = value
		return
	}
	if addr < 0x2000 {
		off := uint32(m.chrBank)*0x1000 + uint32(addr-0x1000)
		if int(off) < len(m.chr) {
			m.chr[off] = value
		}
	}
}

func (m *mapper13) CPUClock(uint64)                    {}
func (m *mapper13) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper13) Mirroring() Mirroring               { return MirrorHorizontal }
func (m *mapper13) IRQPending() bool                   { return false }
func (m *mapper13) ClearIRQ()                          {}
func (m *mapper13) SaveState() []byte                  { return []byte{m.chrBank} }
func (m *mapper13) LoadState(data []byte) error {
	if len(data) < 1 {
		return errShortState
	}
	m.chrBank = data[0]
	return nil
}
