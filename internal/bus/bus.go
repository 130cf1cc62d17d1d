// Package bus wires the CPU, PPU, APU, mapper and controller ports
// together into the NES's shared address space and drives them from a
// single per-cycle clock.
package bus

import (
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
)

// PPU is the subset of the PPU this package depends on, kept narrow so
// internal/ppu can evolve independently.
type PPU interface {
	Step()
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
	NMILine() bool
	WriteOAMByte(index uint8, value uint8)
}

// APU is the subset of the APU this package depends on.
type APU interface {
	Step()
	ReadStatus() uint8
	WriteRegister(address uint16, value uint8)
	IRQLine() bool
	// DMCFetchPending reports a sample byte the DMC channel needs from
	// CPU memory; address is valid only when pending is true.
	DMCFetchPending() (address uint16, pending bool)
	DeliverDMCSample(value uint8)
}

// Bus connects every NES component into one 16-bit CPU address space and
// clocks them together: every Clock() call advances the CPU by one cycle,
// the PPU by three (it runs at 3x CPU speed on NTSC) and the APU by one.
type Bus struct {
	CPU   *cpu.CPU
	PPU   PPU
	APU   APU
	Input *input.State

	mapper cartridge.Mapper
	ram    [0x800]uint8

	openBus uint8
	cycles  uint64

	// OAM DMA state. A real $4014 write suspends the CPU for 513 (or 514
	// on an odd cycle) cycles while 256 bytes are copied to OAM one byte
	// per two cycles (alternating read/write); modeled here as an
	// explicit byte-at-a-time state machine rather than an instantaneous
	// bulk copy so the CPU-visible stall length is exact.
	oamDMA oamDMAState

	// DMC DMA: the APU's sample channel asks the bus for the next byte
	// via DMCFetchPending. Per the Open Questions decision in
	// DESIGN.md, this is modeled as the real two-phase stall (a dummy
	// alignment cycle, then the fetch cycle) rather than a single fixed
	// stall, matching original_source's dmc.rs.
	dmcDMA dmcDMAState
}

type oamDMAState struct {
	active    bool
	page      uint8
	index     int // 0..255, which OAM byte is being transferred
	alignment int // 1 extra cycle if DMA started on an odd CPU cycle
	phase     int // 0 = waiting to read, 1 = waiting to write
	latch     uint8
}

type dmcDMAState struct {
	active      bool
	alignCycles int
	address     uint16
}

// New creates a bus with no cartridge installed; LoadCartridge must be
// called before Clock does anything useful.
func New(cpuCore *cpu.CPU, ppu PPU, apu APU) *Bus {
	return &Bus{
		CPU:   cpuCore,
		PPU:   ppu,
		APU:   apu,
		Input: input.NewState(),
	}
}

// LoadCartridge installs a mapper, replacing any previously loaded one.
func (b *Bus) LoadCartridge(m cartridge.Mapper) { b.mapper = m }

// Reset re-initializes RAM-adjacent state and performs the CPU's 7-cycle
// reset sequence. PPU/APU reset is the caller's responsibility since they
// outlive individual cartridge loads.
func (b *Bus) Reset() {
	b.ram = [0x800]uint8{}
	b.Input.Reset()
	b.oamDMA = oamDMAState{}
	b.dmcDMA = dmcDMAState{}
	b.CPU.Reset(b)
}

// Read implements cpu.Bus: the full CPU-visible address space.
func (b *Bus) Read(address uint16) uint8 {
	var value uint8
	switch {
	case address < 0x2000:
		value = b.ram[address&0x07FF]
	case address < 0x4000:
		value = b.PPU.ReadRegister(0x2000 + address&0x0007)
	case address == 0x4015:
		value = b.APU.ReadStatus()
	case address == 0x4016, address == 0x4017:
		value = b.Input.Read(address)
	case address < 0x4020:
		value = b.openBus // write-only APU registers: open bus
	default:
		if b.mapper != nil {
			if v, ok := b.mapper.CPURead(address); ok {
				value = v
			} else {
				value = b.openBus
			}
		} else {
			value = b.openBus
		}
	}
	b.openBus = value
	return value
}

// Write implements cpu.Bus.
func (b *Bus) Write(address uint16, value uint8) {
	b.openBus = value
	switch {
	case address < 0x2000:
		b.ram[address&0x07FF] = value
	case address < 0x4000:
		b.PPU.WriteRegister(0x2000+address&0x0007, value)
	case address == 0x4014:
		b.startOAMDMA(value)
	case address == 0x4016:
		b.Input.Write(address, value)
	case address < 0x4020:
		b.APU.WriteRegister(address, value)
	default:
		if b.mapper != nil {
			b.mapper.CPUWrite(address, value, b.cycles)
		}
	}
}

func (b *Bus) startOAMDMA(page uint8) {
	if b.oamDMA.active {
		return
	}
	// Every transfer pays one baseline "get ready" cycle; starting on an
	// odd CPU cycle costs a second alignment cycle before bytes start
	// moving, which is the classic 513-vs-514-cycle distinction.
	align := 1
	if b.cycles%2 == 1 {
		align = 2
	}
	b.oamDMA = oamDMAState{active: true, page: page, alignment: align}
}

// Clock advances every component by one CPU cycle's worth of work. When
// an OAM or DMC DMA is in flight, the CPU itself stays put while the DMA
// state machine below performs the bus traffic that belongs to this cycle
// instead of a CPU instruction cycle.
func (b *Bus) Clock() {
	b.cycles++

	switch {
	case b.oamDMA.active:
		b.stepOAMDMA()
	case b.dmcDMA.active:
		b.stepDMCDMA()
	default:
		if addr, pending := b.APU.DMCFetchPending(); pending {
			b.dmcDMA = dmcDMAState{active: true, address: addr, alignCycles: 1}
			b.stepDMCDMA()
		} else {
			b.CPU.SetIRQLine(b.APU.IRQLine() || (b.mapper != nil && b.mapper.IRQPending()))
			b.CPU.Clock(b)
			if b.mapper != nil {
				b.mapper.CPUClock(b.cycles)
			}
		}
	}

	for i := 0; i < 3; i++ {
		b.PPU.Step()
	}
	b.CPU.SetNMILine(b.PPU.NMILine())
	b.APU.Step()
}

// stepOAMDMA performs one cycle of the 513/514-cycle OAM DMA transfer: one
// alignment cycle (two when the transfer starts on an odd cycle), then
// alternating read/write cycles for each of the 256 OAM bytes.
func (b *Bus) stepOAMDMA() {
	d := &b.oamDMA
	if d.alignment > 0 {
		d.alignment--
		return
	}
	if d.phase == 0 {
		d.latch = b.Read(uint16(d.page)<<8 | uint16(d.index))
		d.phase = 1
		return
	}
	b.PPU.WriteOAMByte(uint8(d.index), d.latch)
	d.index++
	d.phase = 0
	if d.index >= 256 {
		*d = oamDMAState{}
	}
}

// stepDMCDMA models the DMC sample fetch's real two-phase stall: a
// put-CPU-on-hold alignment cycle (the bus arbitration delay real
// hardware imposes before the fetch can start) followed by the fetch
// cycle itself that hands the byte to the APU's DMC channel.
func (b *Bus) stepDMCDMA() {
	d := &b.dmcDMA
	if d.alignCycles > 0 {
		d.alignCycles--
		return
	}
	value := b.Read(d.address)
	b.APU.DeliverDMCSample(value)
	*d = dmcDMAState{}
}
