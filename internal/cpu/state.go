package cpu

// State is the complete resumable state of the CPU: the register file plus
// enough of the in-flight micro-op position to rebuild the queue exactly
// (the queue itself holds function values, which can't round-trip through
// a savestate, so Restore rebuilds it from Opcode/InInterrupt/PendingVector
// instead of serializing it directly).
type State struct {
	A, X, Y, SP uint8
	PC          uint16
	Status      uint8

	Cycles uint64

	Opcode        uint8
	Step          uint8
	EffectiveAddr uint16
	Tmp           uint8
	PtrAddr       uint8
	AddrLo        uint8
	Crossed       bool

	NMILine        bool
	NMIPrev        bool
	NMIPending     bool
	IRQLine        bool
	InInterrupt    bool
	InterruptIsBRK bool
	PendingVector  uint16

	Jammed     bool
	HaltCycles int
}

// CaptureState snapshots everything needed to resume execution mid-cycle.
func (c *CPU) CaptureState() State {
	return State{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC,
		Status: c.Status(),
		Cycles: c.Cycles,

		Opcode:        c.opcode,
		Step:          c.step,
		EffectiveAddr: c.effectiveAddr,
		Tmp:           c.tmp,
		PtrAddr:       c.ptrAddr,
		AddrLo:        c.addrLo,
		Crossed:       c.crossed,

		NMILine:        c.nmiLine,
		NMIPrev:        c.nmiPrev,
		NMIPending:     c.nmiPending,
		IRQLine:        c.irqLine,
		InInterrupt:    c.inInterrupt,
		InterruptIsBRK: c.interruptIsBRK,
		PendingVector:  c.pendingVector,

		Jammed:     c.jammed,
		HaltCycles: c.haltCycles,
	}
}

// Restore rebuilds the CPU (including its in-flight micro-op queue) from a
// previously captured State.
func (c *CPU) Restore(s State) {
	c.A, c.X, c.Y, c.SP, c.PC = s.A, s.X, s.Y, s.SP, s.PC
	c.SetStatus(s.Status)
	c.Cycles = s.Cycles

	c.opcode = s.Opcode
	c.effectiveAddr = s.EffectiveAddr
	c.tmp = s.Tmp
	c.ptrAddr = s.PtrAddr
	c.addrLo = s.AddrLo
	c.crossed = s.Crossed

	c.nmiLine = s.NMILine
	c.nmiPrev = s.NMIPrev
	c.nmiPending = s.NMIPending
	c.irqLine = s.IRQLine
	c.inInterrupt = s.InInterrupt
	c.interruptIsBRK = s.InterruptIsBRK
	c.pendingVector = s.PendingVector

	c.jammed = s.Jammed
	c.haltCycles = s.HaltCycles

	switch {
	case s.InInterrupt:
		c.queue = interruptQueue(s.PendingVector, s.InterruptIsBRK)
	default:
		c.queue = decode(s.Opcode)
	}
	c.step = s.Step
}
