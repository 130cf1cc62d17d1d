// Package input implements the NES controller shift-register protocol and
// the lock-free input surface the runtime publishes into from the UI thread.
package input

import "sync/atomic"

// Button is a single NES controller button, encoded as its bit position in
// the 8-bit report byte.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

const numPorts = 4

// Port holds the lock-free state for one of the four input ports: a normal
// button mask, a turbo mask, and the shift register/strobe state the CPU bus
// reads through $4016/$4017 for ports 0 and 1. padMask/turboMask are
// accessed with atomic loads/stores (Acquire/Release semantics are implied
// by Go's atomic package on all supported architectures) since the UI
// thread writes them while the emulator thread loads them each time the
// port latches (see latch); they are not sampled once per frame.
type Port struct {
	padMask   atomic.Uint32 // low 8 bits used; atomic.Uint32 for alignment portability
	turboMask atomic.Uint32

	shiftRegister uint8
	strobe        bool
}

// SetButton sets or clears a single button in this port's normal mask.
func (p *Port) SetButton(button Button, pressed bool) {
	for {
		old := p.padMask.Load()
		var next uint32
		if pressed {
			next = old | uint32(button)
		} else {
			next = old &^ uint32(button)
		}
		if p.padMask.CompareAndSwap(old, next) {
			return
		}
	}
}

// SetTurbo sets or clears a single button in this port's turbo mask.
func (p *Port) SetTurbo(button Button, enabled bool) {
	for {
		old := p.turboMask.Load()
		var next uint32
		if enabled {
			next = old | uint32(button)
		} else {
			next = old &^ uint32(button)
		}
		if p.turboMask.CompareAndSwap(old, next) {
			return
		}
	}
}

// SetMask overwrites the entire normal button mask at once (array/combo
// input sources feed this instead of calling SetButton per bit).
func (p *Port) SetMask(mask uint8) { p.padMask.Store(uint32(mask)) }

// effective returns the resolved button byte for this frame: normal buttons
// OR'd with turbo buttons gated by the current turbo phase.
func (p *Port) effective(turboPhaseOn bool) uint8 {
	mask := uint8(p.padMask.Load())
	if turboPhaseOn {
		mask |= uint8(p.turboMask.Load())
	}
	return mask
}

// latch captures the effective button state into the shift register. Called
// on every write that sets strobe and on every read while strobe is held
// high, so the CPU bus protocol below always serializes a consistent snapshot.
func (p *Port) latch(turboPhaseOn bool) {
	p.shiftRegister = p.effective(turboPhaseOn)
}

// write handles a write to $4016 with the strobe bit in value's bit 0. The
// NES drives strobe to both controllers on every write; while strobe is
// high the shift register continuously reloads from the current state.
func (p *Port) write(value uint8, turboPhaseOn bool) {
	p.strobe = value&1 != 0
	if p.strobe {
		p.latch(turboPhaseOn)
	}
}

// read serializes one bit from the shift register per call, matching real
// NES controller hardware: while strobe is held, every read returns
// button A's current state and does not advance; once strobe is released,
// each read shifts the register right by one and fills with 1s past bit 7.
func (p *Port) read(turboPhaseOn bool) uint8 {
	if p.strobe {
		p.latch(turboPhaseOn)
		return p.shiftRegister & 1
	}
	bit := p.shiftRegister & 1
	p.shiftRegister = (p.shiftRegister >> 1) | 0x80
	return bit
}

// State is the full input surface: four ports plus the turbo-phase cycle
// the runtime advances once per frame.
type State struct {
	Ports [numPorts]Port

	turboPhase   bool
	turboOnTicks int
	turboOffTicks int
	turboTick    int
}

// NewState creates input state with default turbo timing (8 frames on, 8 off).
func NewState() *State {
	s := &State{turboOnTicks: 8, turboOffTicks: 8}
	return s
}

// SetTurboTiming configures the on/off frame counts of the turbo phase cycle.
func (s *State) SetTurboTiming(onFrames, offFrames int) {
	if onFrames <= 0 {
		onFrames = 1
	}
	if offFrames <= 0 {
		offFrames = 1
	}
	s.turboOnTicks, s.turboOffTicks = onFrames, offFrames
	s.turboTick = 0
}

// AdvanceTurboPhase is called once per emulated frame to cycle the turbo
// phase according to the configured on/off frame counts.
func (s *State) AdvanceTurboPhase() {
	s.turboTick++
	if s.turboPhase {
		if s.turboTick >= s.turboOnTicks {
			s.turboPhase = false
			s.turboTick = 0
		}
	} else {
		if s.turboTick >= s.turboOffTicks {
			s.turboPhase = true
			s.turboTick = 0
		}
	}
}

// Reset clears all ports and the turbo phase cycle, matching power-on state.
func (s *State) Reset() {
	for i := range s.Ports {
		s.Ports[i] = Port{}
	}
	s.turboPhase = false
	s.turboTick = 0
}

// Read services a CPU bus read of $4016 (port 0) or $4017 (port 1). Port
// 1's open-bus quirk (bit 6 always reads set) is modeled here since it's a
// property of that specific bus address, not of the port itself.
func (s *State) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return s.Ports[0].read(s.turboPhase)
	case 0x4017:
		return s.Ports[1].read(s.turboPhase) | 0x40
	default:
		return 0
	}
}

// Write services a CPU bus write to $4016. Real hardware broadcasts the
// strobe line to both standard controller ports simultaneously.
func (s *State) Write(address uint16, value uint8) {
	if address != 0x4016 {
		return
	}
	s.Ports[0].write(value, s.turboPhase)
	s.Ports[1].write(value, s.turboPhase)
}
