package cartridge

// mapper23 implements the VRC2b/VRC4e family (mapper 23): two switchable
// 8KiB PRG windows plus two fixed, eight independently switchable 1KiB CHR
// banks, mapper-controlled 2-bit mirroring, and a VRC4-style scanline/cycle
// IRQ counter with an 8-bit reload latch.
//
// VRC4's address-line permutation (which CPU address bits select which
// internal register) is submapper/board dependent; this implementation uses
// the common unswapped A0/A1 decoding, which covers the majority of mapper
// 23 boards.
type mapper23 struct {
	romBanks

	prgBank8000 uint8
	prgBankA000 uint8
	chrBank     [8]uint8
	mirroring   Mirroring

	irqLatch    uint8
	irqCounter  uint8
	irqEnabled  bool
	irqAckOnAck bool
	irqCycleMode bool
	irqPending  bool
	prescaler   int
}

func newMapper23(prg, chr []uint8, chrRAMSize int) *mapper23 {
	return &mapper23{romBanks: newRomBanks(prg, chr, chrRAMSize), mirroring: MirrorVertical}
}

func (m *mapper23) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.sav[addr-0x6000], true
	case addr >= 0x8000 && addr < 0xA000:
		off := uint32(m.prgBank8000)*0x2000 + uint32(addr-0x8000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	case addr >= 0xA000 && addr < 0xC000:
		off := uint32(m.prgBankA000)*0x2000 + uint32(addr-0xA000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	case addr >= 0xC000 && addr < 0xE000:
		// second-to-last 8KiB bank, fixed
		off := uint32(m.prgBankCount()-2)*0x2000 + uint32(addr-0xC000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	case addr >= 0xE000:
		off := uint32(m.prgBankCount()-1)*0x2000 + uint32(addr-0xE000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	}
	return 0, false
}

func (m *mapper23) prgBankCount() uint8 { return m.prgBanks * 2 }

func (m *mapper23) CPUWrite(addr uint16, value uint8, _ uint64) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.sav[addr-0x6000] = value
		return
	}
	if addr < 0x8000 {
		return
	}
	switch {
	case addr >= 0x8000 && addr < 0x9000:
		m.prgBank8000 = value & 0x1F
	case addr >= 0x9000 && addr < 0xA000:
		m.mirroring = mirroringFromVRC(value & 0x03)
	case addr >= 0xA000 && addr < 0xB000:
		m.prgBankA000 = value & 0x1F
	case addr >= 0xB000 && addr < 0xF000:
		// CHR bank registers: groups $B000/$C000/$D000/$E000 each hold two
		// 1KiB banks; address bit 1 selects the bank, bit 0 its low/high nibble.
		group := int((addr - 0xB000) >> 12)
		idx := group * 2
		if addr&0x0002 != 0 {
			idx++
		}
		if addr&0x0001 == 0 {
			m.chrBank[idx] = (m.chrBank[idx] & 0xF0) | (value & 0x0F)
		} else {
			m.chrBank[idx] = (m.chrBank[idx] & 0x0F) | ((value & 0x0F) << 4)
		}
	case addr >= 0xF000 && addr < 0xF001:
		m.irqLatch = (m.irqLatch & 0xF0) | (value & 0x0F)
	case addr >= 0xF001 && addr < 0xF002:
		m.irqLatch = (m.irqLatch & 0x0F) | ((value & 0x0F) << 4)
	case addr >= 0xF002 && addr < 0xF003:
		m.irqCycleMode = value&0x04 != 0
		m.irqEnabled = value&0x02 != 0
		m.irqAckOnAck = value&0x01 != 0
		if m.irqEnabled {
			m.irqCounter = m.irqLatch
			m.prescaler = 341
		}
		m.irqPending = false
	default: // $F003
		m.irqEnabled = m.irqAckOnAck
		m.irqPending = false
	}
}

func mirroringFromVRC(bits uint8) Mirroring {
	switch bits {
	case 0:
		return MirrorVertical
	case 1:
		return MirrorHorizontal
	case 2:
		return MirrorSingleScreenLower
	default:
		return MirrorSingleScreenUpper
	}
}

func (m *mapper23) PPURead(addr uint16) (uint8, bool) {
	bank := addr / 0x400
	within := addr % 0x400
	off := uint32(m.chrBank[bank])*0x400 + uint32(within)
	if int(off) < len(m.chr) {
		return m.chr[off], true
	}
	return 0, false
}

func (m *mapper23) PPUWrite(addr uint16, value uint8) {
	if !m.chrIsRAM {
		return
	}
	bank := addr / 0x400
	within := addr % 0x400
	off := uint32(m.chrBank[bank])*0x400 + uint32(within)
	if int(off) < len(m.chr) {
		m.chr[off] = value
	}
}

// CPUClock advances the VRC4-style IRQ counter. In cycle mode the counter
// increments every CPU cycle; in scanline mode it increments once every 341
// CPU-cycle-equivalent dots (approximated via a 114-cycle*3 prescaler).
func (m *mapper23) CPUClock(uint64) {
	if !m.irqEnabled {
		return
	}
	if m.irqCycleMode {
		m.clockIRQCounter()
		return
	}
	m.prescaler -= 3
	if m.prescaler <= 0 {
		m.prescaler += 341
		m.clockIRQCounter()
	}
}

func (m *mapper23) clockIRQCounter() {
	if m.irqCounter == 0xFF {
		m.irqCounter = m.irqLatch
		m.irqPending = true
	} else {
		m.irqCounter++
	}
}

func (m *mapper23) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper23) Mirroring() Mirroring               { return m.mirroring }
func (m *mapper23) IRQPending() bool                   { return m.irqPending }
func (m *mapper23) ClearIRQ()                          { m.irqPending = false }

func (m *mapper23) SaveState() []byte {
	buf := make([]byte, 0, 20)
	buf = append(buf, m.prgBank8000, m.prgBankA000)
	buf = append(buf, m.chrBank[:]...)
	buf = append(buf, byte(m.mirroring), m.irqLatch, m.irqCounter,
		b2u(m.irqEnabled), b2u(m.irqAckOnAck), b2u(m.irqCycleMode), b2u(m.irqPending))
	return buf
}

func (m *mapper23) LoadState(data []byte) error {
	if len(data) < 17 {
		return errShortState
	}
	m.prgBank8000, m.prgBankA000 = data[0], data[1]
	copy(m.chrBank[:], data[2:10])
	m.mirroring = Mirroring(data[10])
	m.irqLatch, m.irqCounter = data[11], data[12]
	m.irqEnabled = data[13] != 0
	m.irqAckOnAck = data[14] != 0
	m.irqCycleMode = data[15] != 0
	m.irqPending = data[16] != 0
	return nil
}
