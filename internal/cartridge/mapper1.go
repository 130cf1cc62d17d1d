package cartridge

// mapper1 implements MMC1 (mapper 1): a 5-bit serial shift register feeding
// four internal registers (control, CHR bank 0, CHR bank 1, PRG bank).
// Writing with bit 7 set resets the shift register and forces PRG mode 3.
type mapper1 struct {
	romBanks

	shiftRegister uint8
	shiftCount    uint8

	control  uint8 // mirroring(0-1) | prgMode(2-3) | chrMode(4)
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	prgRAMEnabled bool
}

func newMapper1(prg, chr []uint8, chrRAMSize int) *mapper1 {
	m := &mapper1{
		romBanks:      newRomBanks(prg, chr, chrRAMSize),
		shiftRegister: 0x10,
		control:       0x0C, // prgMode=3 (fix last bank), chrMode=0
		prgRAMEnabled: true,
	}
	return m
}

func (m *mapper1) mirroringBits() uint8 { return m.control & 0x03 }
func (m *mapper1) prgMode() uint8       { return (m.control >> 2) & 0x03 }
func (m *mapper1) chrMode() uint8       { return (m.control >> 4) & 0x01 }

func (m *mapper1) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.sav[addr-0x6000], true
		}
		return 0, false

	case addr >= 0x8000 && addr < 0xC000:
		var bank uint8
		switch m.prgMode() {
		case 0, 1:
			bank = m.prgBank &^ 1
		case 2:
			bank = 0
		case 3:
			bank = m.prgBank
		}
		off := uint32(bank)*0x4000 + uint32(addr-0x8000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}

	case addr >= 0xC000:
		var bank uint8
		switch m.prgMode() {
		case 0, 1:
			bank = (m.prgBank &^ 1) | 1
		case 2:
			bank = m.prgBank
		case 3:
			bank = m.prgBanks - 1
		}
		off := uint32(bank)*0x4000 + uint32(addr-0xC000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	}
	return 0, false
}

func (m *mapper1) CPUWrite(addr uint16, value uint8, _ uint64) {
	if addr >= 0x6000 && addr < 0x8000 {
		if m.prgRAMEnabled {
			m.sav[addr-0x6000] = value
		}
		return
	}
	if addr < 0x8000 {
		return
	}

	if value&0x80 != 0 {
		m.shiftRegister = 0x10
		m.shiftCount = 0
		m.control |= 0x0C // force PRG mode 3
		return
	}

	m.shiftRegister >>= 1
	m.shiftRegister |= (value & 1) << 4
	m.shiftCount++

	if m.shiftCount == 5 {
		m.writeRegister(addr, m.shiftRegister)
		m.shiftRegister = 0x10
		m.shiftCount = 0
	}
}

func (m *mapper1) writeRegister(addr uint16, value uint8) {
	switch {
	case addr < 0xA000:
		m.control = value & 0x1F
	case addr < 0xC000:
		m.chrBank0 = value & 0x1F
	case addr < 0xE000:
		m.chrBank1 = value & 0x1F
	default:
		m.prgBank = value & 0x0F
		m.prgRAMEnabled = value&0x10 == 0
	}
}

func (m *mapper1) chrOffset(addr uint16) uint32 {
	if m.chrMode() == 0 {
		bank := m.chrBank0 &^ 1
		if addr >= 0x1000 {
			bank |= 1
		}
		return uint32(bank)*0x1000 + uint32(addr&0x0FFF)
	}
	if addr < 0x1000 {
		return uint32(m.chrBank0)*0x1000 + uint32(addr)
	}
	return uint32(m.chrBank1)*0x1000 + uint32(addr-0x1000)
}

func (m *mapper1) PPURead(addr uint16) (uint8, bool) {
	off := m.chrOffset(addr)
	if int(off) < len(m.chr) {
		return m.chr[off], true
	}
	return 0, false
}

func (m *mapper1) PPUWrite(addr uint16, value uint8) {
	if !m.chrIsRAM {
		return
	}
	off := m.chrOffset(addr)
	if int(off) < len(m.chr) {
		m.chr[off] = value
	}
}

func (m *mapper1) CPUClock(uint64)                    {}
func (m *mapper1) PPUAddressBusChange(uint16, uint32) {}

func (m *mapper1) Mirroring() Mirroring {
	switch m.mirroringBits() {
	case 0:
		return MirrorSingleScreenLower
	case 1:
		return MirrorSingleScreenUpper
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mapper1) IRQPending() bool { return false }
func (m *mapper1) ClearIRQ()        {}

func (m *mapper1) SaveState() []byte {
	return []byte{m.shiftRegister, m.shiftCount, m.control, m.chrBank0, m.chrBank1, m.prgBank, b2u(m.prgRAMEnabled)}
}

func (m *mapper1) LoadState(data []byte) error {
	if len(data) < 7 {
		return errShortState
	}
	m.shiftRegister, m.shiftCount, m.control = data[0], data[1], data[2]
	m.chrBank0, m.chrBank1, m.prgBank = data[3], data[4], data[5]
	m.prgRAMEnabled = data[6] != 0
	return nil
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
