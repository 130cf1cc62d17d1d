// Package cpu implements a cycle-stepped emulation of the NMOS 6502 core
// used by the NES (the "2A03", identical to the 6502 except its decimal
// mode is wired off). Unlike an instruction-at-a-time interpreter, Clock
// advances the processor by exactly one bus cycle: each opcode is decoded
// into a queue of micro-operations and one micro-op fires per Clock call,
// so callers can interleave CPU, PPU and APU ticks on a shared clock.
package cpu

// AddressingMode identifies how an instruction resolves its operand.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Bus is the CPU's view of the memory map: the address bus shared with the
// PPU/APU/mapper/controllers.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// microOp is one bus cycle's worth of work. The queue built for an opcode
// holds every micro-op after the opcode fetch itself (which Clock performs
// inline when the queue drains).
type microOp func(c *CPU, bus Bus)

// CPU is the 6502 register file plus the in-flight micro-op queue that
// makes instruction execution resumable one cycle at a time.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C bool
	Z bool
	I bool
	D bool
	B bool
	V bool
	N bool

	Cycles uint64

	// step is the position of the next micro-op within queue; it, the
	// opcode and the scratch fields below are the resumable state of an
	// in-flight instruction, which a savestate captures along with the
	// registers above to resume mid-instruction.
	queue []microOp
	step  uint8

	effectiveAddr uint16 // resolved operand address
	tmp           uint8  // scratch: fetched operand / RMW working value
	ptrAddr       uint8  // zero-page pointer base for (zp,X)/(zp),Y
	addrLo        uint8  // latched low byte while resolving Absolute*/Indirect
	crossed       bool   // page boundary crossed during index addition

	opcode uint8

	nmiLine     bool // current level of the NMI line (PPU vblank output)
	nmiPrev     bool // previous level, for edge detection
	nmiPending  bool // latched edge, cleared once serviced
	irqLine     bool // level-sensitive: APU frame IRQ, DMC IRQ, mapper IRQ
	inInterrupt bool
	interruptIsBRK bool
	pendingVector  uint16 // vector of the interrupt sequence in progress, for state capture

	jammed bool

	// haltCycles models OAM DMA / DMC DMA stalls: the bus layer sets this
	// and Clock spends cycles here instead of advancing the instruction
	// queue, exactly mirroring how those DMAs suspend the 6502 on real
	// hardware without the CPU itself knowing why.
	haltCycles int
}

// New creates a CPU with power-on register values. Reset still needs to be
// called to read the reset vector and perform the 7-cycle reset sequence.
func New() *CPU {
	c := &CPU{SP: 0xFD}
	c.SetStatus(0x34)
	return c
}

// Status packs the flags into the 6502 status byte (bit 5 always set).
func (c *CPU) Status() uint8 {
	var s uint8 = unusedMask
	if c.N {
		s |= nFlagMask
	}
	if c.V {
		s |= vFlagMask
	}
	if c.B {
		s |= bFlagMask
	}
	if c.D {
		s |= dFlagMask
	}
	if c.I {
		s |= iFlagMask
	}
	if c.Z {
		s |= zFlagMask
	}
	if c.C {
		s |= cFlagMask
	}
	return s
}

// SetStatus unpacks a status byte into the flag fields.
func (c *CPU) SetStatus(s uint8) {
	c.N = s&nFlagMask != 0
	c.V = s&vFlagMask != 0
	c.B = s&bFlagMask != 0
	c.D = s&dFlagMask != 0
	c.I = s&iFlagMask != 0
	c.Z = s&zFlagMask != 0
	c.C = s&cFlagMask != 0
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

func (c *CPU) push(bus Bus, v uint8) {
	bus.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull(bus Bus) uint8 {
	c.SP++
	return bus.Read(stackBase + uint16(c.SP))
}

// SetNMILine updates the level of the NMI input (driven by the PPU at the
// start of vblank). The falling-edge-to-rising-edge transition is what
// actually latches a pending NMI, matching real 6502 edge-triggered input.
func (c *CPU) SetNMILine(level bool) {
	if level && !c.nmiPrev {
		c.nmiPending = true
	}
	c.nmiPrev = level
	c.nmiLine = level
}

// SetIRQLine sets the level-sensitive IRQ input. Unlike NMI this is OR'd
// from several sources (APU frame counter, DMC, mapper IRQ) by the bus, so
// the CPU only ever sees the combined line state.
func (c *CPU) SetIRQLine(level bool) { c.irqLine = level }

// insertNext splices op in immediately ahead of the queue position that
// would otherwise run next. Used for the page-cross penalty on indexed
// reads, which only exists as a cycle at all when the crossing actually
// happens — unlike the write/RMW forms, which always pay it and so can
// bake the extra step into a static queue.
func (c *CPU) insertNext(op microOp) {
	rest := append([]microOp{op}, c.queue[c.step:]...)
	c.queue = append(c.queue[:c.step:c.step], rest...)
}

// Halt suspends instruction execution for the given number of cycles,
// modeling an OAM DMA or DMC DMA stall imposed by the bus.
func (c *CPU) Halt(cycles int) { c.haltCycles += cycles }

// Jammed reports whether the CPU executed a JAM (KIL/HLT) opcode and is
// permanently stalled, as real NMOS 6502 hardware does.
func (c *CPU) Jammed() bool { return c.jammed }

// Reset performs the 6502's 7-cycle reset sequence: three stack-pointer
// decrements disguised as dummy reads (the stack writes are suppressed by
// the R/W line during reset), then the reset vector fetch.
func (c *CPU) Reset(bus Bus) {
	bus.Read(c.PC)
	bus.Read(c.PC)
	bus.Read(stackBase + uint16(c.SP))
	c.SP--
	bus.Read(stackBase + uint16(c.SP))
	c.SP--
	bus.Read(stackBase + uint16(c.SP))
	c.SP--
	lo := uint16(bus.Read(resetVector))
	hi := uint16(bus.Read(resetVector + 1))
	c.PC = hi<<8 | lo
	c.I = true
	c.Cycles += 7
	c.queue = nil
	c.step = 0
	c.jammed = false
}

// Clock advances the CPU by exactly one bus cycle.
func (c *CPU) Clock(bus Bus) {
	c.Cycles++
	if c.jammed {
		return
	}
	if c.haltCycles > 0 {
		c.haltCycles--
		return
	}
	if int(c.step) < len(c.queue) {
		op := c.queue[c.step]
		c.step++
		op(c, bus)
		return
	}
	c.fetch(bus)
}

// fetch begins the next unit of work: either an interrupt sequence, if one
// is pending, or a fresh opcode decode. Interrupt polling happens here,
// i.e. once per instruction boundary rather than mid-instruction; this is
// a documented simplification of the hardware's true "poll during the
// penultimate cycle of every instruction" behavior (see DESIGN.md).
func (c *CPU) fetch(bus Bus) {
	if c.nmiPending {
		c.nmiPending = false
		c.beginInterrupt(bus, nmiVector, false)
		return
	}
	if c.irqLine && !c.I {
		c.beginInterrupt(bus, irqVector, false)
		return
	}
	c.opcode = bus.Read(c.PC)
	c.PC++
	c.queue = decode(c.opcode)
	c.step = 0
}

// beginInterrupt executes the first cycle of a 7-cycle interrupt sequence
// and queues the remaining six. For a software BRK, the opcode-fetch slot
// that dispatched here doubles as the sequence's first dummy read, and this
// call's own read of the signature byte (PC bumped past it) is the second;
// the queued ops are exactly buildInterruptQueue's five. A hardware NMI/IRQ
// has no opcode fetch to reuse — fetch() calls this directly on what would
// otherwise be an opcode-fetch cycle, making that the first dummy read, so
// a second dummy read (PC left untouched) is queued ahead of the same five
// push/vector ops to reach the same 7-cycle total.
func (c *CPU) beginInterrupt(bus Bus, vector uint16, isBRK bool) {
	c.inInterrupt = true
	c.interruptIsBRK = isBRK
	c.pendingVector = vector
	if isBRK {
		bus.Read(c.PC)
		c.PC++
	} else {
		bus.Read(c.PC)
	}
	c.queue = interruptQueue(vector, isBRK)
	c.step = 0
}

// interruptQueue returns the micro-ops beginInterrupt queues after its own
// inline read: buildInterruptQueue's five for a software BRK, or those same
// five with a second dummy read spliced in front for a hardware NMI/IRQ (see
// beginInterrupt). Shared with Restore so a savestate taken mid-sequence
// rebuilds the same shape its Step index was captured against.
func interruptQueue(vector uint16, isBRK bool) []microOp {
	if isBRK {
		return buildInterruptQueue(vector)
	}
	return append([]microOp{
		func(c *CPU, bus Bus) { bus.Read(c.PC) },
	}, buildInterruptQueue(vector)...)
}

// buildInterruptQueue is the five remaining cycles of an interrupt
// sequence (push PCH, push PCL, push status, fetch vector low, fetch
// vector high and jump). Split out from beginInterrupt so a restored
// savestate can rebuild the same queue from (vector, inInterrupt,
// interruptIsBRK) without having to serialize closures.
func buildInterruptQueue(vector uint16) []microOp {
	return []microOp{
		func(c *CPU, bus Bus) { c.push(bus, uint8(c.PC>>8)) },
		func(c *CPU, bus Bus) { c.push(bus, uint8(c.PC)) },
		func(c *CPU, bus Bus) {
			s := c.Status()
			if c.interruptIsBRK {
				s |= bFlagMask
			} else {
				s &^= bFlagMask
			}
			c.push(bus, s)
			c.I = true
		},
		func(c *CPU, bus Bus) { c.tmp = bus.Read(vector) },
		func(c *CPU, bus Bus) {
			hi := bus.Read(vector + 1)
			c.PC = uint16(hi)<<8 | uint16(c.tmp)
			c.inInterrupt = false
		},
	}
}
