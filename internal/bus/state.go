package bus

// State is the bus's own state: CPU work RAM, the open-bus latch, the
// shared cycle counter and any in-flight OAM/DMC DMA transfer. CPU, PPU
// and APU register their own State types in their packages; the cartridge
// mapper captures itself via SaveState/LoadState. Together those form the
// machine snapshot; internal/input's port masks are not part of it.
type State struct {
	RAM     [0x800]uint8
	OpenBus uint8
	Cycles  uint64

	OAMDMA OAMDMAState
	DMCDMA DMCDMAState
}

// OAMDMAState mirrors oamDMAState with exported fields, since encoding/gob
// only transmits those.
type OAMDMAState struct {
	Active    bool
	Page      uint8
	Index     int
	Alignment int
	Phase     int
	Latch     uint8
}

// DMCDMAState mirrors dmcDMAState with exported fields.
type DMCDMAState struct {
	Active      bool
	AlignCycles int
	Address     uint16
}

// CaptureState snapshots the bus's own state, excluding the CPU/PPU/APU it
// wires together and the cartridge mapper.
func (b *Bus) CaptureState() State {
	return State{
		RAM:     b.ram,
		OpenBus: b.openBus,
		Cycles:  b.cycles,
		OAMDMA: OAMDMAState{
			Active: b.oamDMA.active, Page: b.oamDMA.page, Index: b.oamDMA.index,
			Alignment: b.oamDMA.alignment, Phase: b.oamDMA.phase, Latch: b.oamDMA.latch,
		},
		DMCDMA: DMCDMAState{
			Active: b.dmcDMA.active, AlignCycles: b.dmcDMA.alignCycles, Address: b.dmcDMA.address,
		},
	}
}

// Restore replaces the bus's own state.
func (b *Bus) Restore(s State) {
	b.ram = s.RAM
	b.openBus = s.OpenBus
	b.cycles = s.Cycles
	b.oamDMA = oamDMAState{
		active: s.OAMDMA.Active, page: s.OAMDMA.Page, index: s.OAMDMA.Index,
		alignment: s.OAMDMA.Alignment, phase: s.OAMDMA.Phase, latch: s.OAMDMA.Latch,
	}
	b.dmcDMA = dmcDMAState{
		active: s.DMCDMA.Active, alignCycles: s.DMCDMA.AlignCycles, address: s.DMCDMA.Address,
	}
}
