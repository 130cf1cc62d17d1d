package cartridge

// mapper9 implements MMC2 (mapper 9, Punch-Out!!): an 8KiB switchable PRG
// window at $8000 with the top three 8KiB banks fixed, and two 4KiB CHR
// windows each with a pair of banks selected by a "latch" that flips
// automatically when the PPU fetches specific tile IDs ($FD/$FE) during
// pattern-table reads.
type mapper9 struct {
	romBanks

	prgBank uint8

	chrBank0FD, chrBank0FE uint8
	chrBank1FD, chrBank1FE uint8
	latch0, latch1         uint8 // 0xFD or 0xFE

	mirroring Mirroring
}

func newMapper9(prg, chr []uint8, chrRAMSize int) *mapper9 {
	return &mapper9{romBanks: newRomBanks(prg, chr, chrRAMSize), latch0: 0xFE, latch1: 0xFE}
}

func (m *mapper9) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.sav[addr-0x6000], true
	case addr >= 0x8000 && addr < 0xA000:
		off := uint32(m.prgBank)*0x2000 + uint32(addr-0x8000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	case addr >= 0xA000:
		total := uint32(len(m.prg))
		lastThree := total - 3*0x2000
		off := lastThree + uint32(addr-0xA000)
		if int(off) < len(m.prg) {
			return m.prg[off], true
		}
	}
	return 0, false
}

func (m *mapper9) CPUWrite(addr uint16, value uint8, _ uint64) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.sav[addr-0x6000] = value
	case addr >= 0xA000 && addr < 0xB000:
		m.prgBank = value & 0x0F
	case addr >= 0xB000 && addr < 0xC000:
		m.chrBank0FD = value & 0x1F
	case addr >= 0xC000 && addr < 0xD000:
		m.chrBank0FE = value & 0x1F
	case addr >= 0xD000 && addr < 0xE000:
		m.chrBank1FD = value & 0x1F
	case addr >= 0xE000 && addr < 0xF000:
		m.chrBank1FE = value & 0x1F
	case addr >= 0xF000:
		if value&1 != 0 {
			m.mirroring = MirrorHorizontal
		} else {
			m.mirroring = MirrorVertical
		}
	}
}

func (m *mapper9) updateLatch(addr uint16) {
	switch addr {
	case 0x0FD8:
		m.latch0 = 0xFD
	case 0x0FE8:
		m.latch0 = 0xFE
	case 0x1FD8:
		m.latch1 = 0xFD
	case 0x1FE8:
		m.latch1 = 0xFE
	}
}

func (m *mapper9) PPURead(addr uint16) (uint8, bool) {
	m.updateLatch(addr)
	var bank uint8
	var within uint16
	if addr < 0x1000 {
		within = addr
		if m.latch0 == 0xFD {
			bank = m.chrBank0FD
		} else {
			bank = m.chrBank0FE
		}
	} else {
		within = addr - 0x1000
		if m.latch1 == 0xFD {
			bank = m.chrBank1FD
		} else {
			bank = m.chrBank1FE
		}
	}
	off := uint32(bank)*0x1000 + uint32(within)
	if int(off) < len(m.chr) {
		return m.chr[off], true
	}
	return 0, false
}

func (m *mapper9) PPUWrite(uint16, uint8) {}

func (m *mapper9) CPUClock(uint64)                    {}
func (m *mapper9) PPUAddressBusChange(uint16, uint32) {}
func (m *mapper9) Mirroring() Mirroring               { return m.mirroring }
func (m *mapper9) IRQPending() bool                   { return false }
func (m *mapper9) ClearIRQ()                          {}

func (m *mapper9) SaveState() []byte {
	return []byte{m.prgBank, m.chrBank0FD, m.chrBank0FE, m.chrBank1FD, m.chrBank1FE, m.latch0, m.latch1, byte(m.mirroring)}
}

func (m *mapper9) LoadState(data []byte) error {
	if len(data) < 8 {
		return errShortState
	}
	m.prgBank, m.chrBank0FD, m.chrBank0FE = data[0], data[1], data[2]
	m.chrBank1FD, m.chrBank1FE = data[3], data[4]
	m.latch0, m.latch1 = data[5], data[6]
	m.mirroring = Mirroring(data[7])
	return nil
}
