package cartridge

// mapper4 implements MMC3 (mapper 4): 8 bank-select registers (2x1KiB/
// 2x2KiB CHR banks via $8000/$8001 toggled by bit 7 of the bank-select
// byte, two swappable + two fixed 8KiB PRG windows), a scanline IRQ counter
// clocked on A12 rising edges via an A12Watcher, and mapper-controlled
// single-direction (H/V) mirroring.
type mapper4 struct {
	romBanks

	bankSelect uint8 // R0-R7 select (bits 0-2), PRG mode (bit 6), CHR mode (bit 7)
	banks      [8]uint8

	mirroring Mirroring

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	irqPending bool

	a12 *A12Watcher
}

func newMapper4(prg, chr []uint8, chrRAMSize int) *mapper4 {
	return &mapper4{
		romBanks:  newRomBanks(prg, chr, chrRAMSize),
		mirroring: MirrorVertical,
		a12:       NewA12Watcher(89342),
	}
}

func (m *mapper4) prgBankCount8k() uint8 { return m.prgBanks * 2 }

func (m *mapper4) prgOffset(slot uint8, addr uint16) (uint32, bool) {
	// slot identifies which 8KiB CPU window (0: $8000, 1: $A000, 2: $C000, 3: $E000).
	prgMode := (m.bankSelect >> 6) & 1
	last := m.prgBankCount8k() - 1

	var bank uint8
	switch slot {
	case 0:
		if prgMode == 0 {
			bank = m.banks[6]
		} else {
			bank = last - 1
		}
	case 1:
		bank = m.banks[7]
	case 2:
		if prgMode == 0 {
			bank = last - 1
		} else {
			bank = m.banks[6]
		}
	case 3:
		bank = last
	}
	off := uint32(bank)*0x2000 + uint32(addr&0x1FFF)
	return off, int(off) < len(m.prg)
}

func (m *mapper4) CPURead(addr uint16) (uint8, bool) {
	if addr >= 0x6000 && addr < 0x8000 {
		return m.sav[addr-0x6000], true
	}
	if addr < 0x8000 {
		return 0, false
	}
	slot := uint8((addr - 0x8000) / 0x2000)
	off, ok := m.prgOffset(slot, addr)
	if !ok {
		return 0, false
	}
	return m.prg[off], true
}

func (m *mapper4) CPUWrite(addr uint16, value uint8, _ uint64) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.sav[addr-0x6000] = value
	case addr >= 0x8000 && addr < 0xA000:
		if addr&1 == 0 {
			m.bankSelect = value
		} else {
			m.banks[m.bankSelect&0x07] = value
		}
	case addr >= 0xA000 && addr < 0xC000:
		if addr&1 == 0 {
			if value&1 == 0 {
				m.mirroring = MirrorVertical
			} else {
				m.mirroring = MirrorHorizontal
			}
		}
		// odd: PRG-RAM protect, not modeled (always enabled)
	case addr >= 0xC000 && addr < 0xE000:
		if addr&1 == 0 {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReload = true
		}
	default: // $E000-$FFFF
		if addr&1 == 0 {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mapper4) chrOffset(addr uint16) uint32 {
	chrMode := (m.bankSelect >> 7) & 1
	// Two 2KiB banks (R0,R1) + four 1KiB banks (R2..R5), order swaps with chrMode.
	var regionIdx int
	var within uint16
	if chrMode == 0 {
		switch {
		case addr < 0x0800:
			regionIdx, within = 0, addr
		case addr < 0x1000:
			regionIdx, within = 1, addr-0x0800
		case addr < 0x1400:
			regionIdx, within = 2, addr-0x1000
		case addr < 0x1800:
			regionIdx, within = 3, addr-0x1400
		case addr < 0x1C00:
			regionIdx, within = 4, addr-0x1800
		default:
			regionIdx, within = 5, addr-0x1C00
		}
	} else {
		switch {
		case addr < 0x0400:
			regionIdx, within = 2, addr
		case addr < 0x0800:
			regionIdx, within = 3, addr-0x0400
		case addr < 0x0C00:
			regionIdx, within = 4, addr-0x0800
		case addr < 0x1000:
			regionIdx, within = 5, addr-0x0C00
		case addr < 0x1800:
			regionIdx, within = 0, addr-0x1000
		default:
			regionIdx, within = 1, addr-0x1800
		}
	}
	switch regionIdx {
	case 0:
		return uint32(m.banks[0]&0xFE)*0x400 + uint32(within)
	case 1:
		return uint32(m.banks[1]&0xFE)*0x400 + uint32(within)
	case 2:
		return uint32(m.banks[2])*0x400 + uint32(within)
	case 3:
		return uint32(m.banks[3])*0x400 + uint32(within)
	case 4:
		return uint32(m.banks[4])*0x400 + uint32(within)
	default:
		return uint32(m.banks[5])*0x400 + uint32(within)
	}
}

func (m *mapper4) PPURead(addr uint16) (uint8, bool) {
	off := m.chrOffset(addr)
	if int(off) < len(m.chr) {
		return m.chr[off], true
	}
	return 0, false
}

func (m *mapper4) PPUWrite(addr uint16, value uint8) {
	if !m.chrIsRAM {
		return
	}
	off := m.chrOffset(addr)
	if int(off) < len(m.chr) {
		m.chr[off] = value
	}
}

func (m *mapper4) CPUClock(uint64) {}

// PPUAddressBusChange clocks the scanline IRQ counter on debounced A12
// rising edges, matching the MMC3 "clock on rise after low long enough"
// behavior.
func (m *mapper4) PPUAddressBusChange(addr uint16, frameCycle uint32) {
	if m.a12.Update(addr, frameCycle) != A12Rise {
		return
	}
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mapper4) Mirroring() Mirroring { return m.mirroring }
func (m *mapper4) IRQPending() bool     { return m.irqPending }
func (m *mapper4) ClearIRQ()            { m.irqPending = false }

func (m *mapper4) SaveState() []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, m.bankSelect)
	buf = append(buf, m.banks[:]...)
	buf = append(buf, byte(m.mirroring), m.irqLatch, m.irqCounter, b2u(m.irqReload), b2u(m.irqEnabled), b2u(m.irqPending))
	return buf
}

func (m *mapper4) LoadState(data []byte) error {
	if len(data) < 14 {
		return errShortState
	}
	m.bankSelect = data[0]
	copy(m.banks[:], data[1:9])
	m.mirroring = Mirroring(data[9])
	m.irqLatch = data[10]
	m.irqCounter = data[11]
	m.irqReload = data[12] != 0
	m.irqEnabled = data[13] != 0
	if len(data) > 14 {
		m.irqPending = data[14] != 0
	}
	return nil
}
