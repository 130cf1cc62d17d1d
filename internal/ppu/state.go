package ppu

// State is the complete contents of the PPU: registers, scroll latches,
// OAM, nametable RAM (CIRAM) and palette RAM, plus the render-pipeline
// shift registers and the scanline/cycle/frame counters needed to resume
// mid-frame.
type State struct {
	Ctrl    uint8
	Mask    uint8
	Status  uint8
	OAMAddr uint8

	V, T uint16
	X    uint8
	W    bool

	ReadBuffer uint8

	OAM          [256]uint8
	SecondaryOAM [32]uint8
	SpriteIndices [8]uint8
	SpriteCount   uint8

	Nametable [0x800]uint8
	Palette   [32]uint8

	Scanline int
	Cycle    int
	Frame    uint64
	OddFrame bool

	VblankAge int

	NTByte, ATByte, BGLowByte, BGHighByte uint8
	BGPatternLo, BGPatternHi              uint16
	BGAttrLo, BGAttrHi                    uint8
	ATLatchLo, ATLatchHi                  uint8
}

// CaptureState snapshots every bit of PPU state needed for an exact resume.
func (p *PPU) CaptureState() State {
	return State{
		Ctrl: p.ctrl, Mask: p.mask, Status: p.status, OAMAddr: p.oamAddr,
		V: p.v, T: p.t, X: p.x, W: p.w,
		ReadBuffer: p.readBuffer,

		OAM:           p.oam,
		SecondaryOAM:  p.secondaryOAM,
		SpriteIndices: p.spriteIndices,
		SpriteCount:   p.spriteCount,

		Nametable: p.nametable,
		Palette:   p.palette,

		Scanline: p.scanline, Cycle: p.cycle, Frame: p.frame, OddFrame: p.oddFrame,
		VblankAge: p.vblankAge,

		NTByte: p.ntByte, ATByte: p.atByte, BGLowByte: p.bgLowByte, BGHighByte: p.bgHighByte,
		BGPatternLo: p.bgPatternLo, BGPatternHi: p.bgPatternHi,
		BGAttrLo: p.bgAttrLo, BGAttrHi: p.bgAttrHi,
		ATLatchLo: p.atLatchLo, ATLatchHi: p.atLatchHi,
	}
}

// Restore replaces the PPU's state with a previously captured snapshot.
// The mapper and framebuffer attachments (set via LoadCartridge and
// SetFramebuffer) are left untouched.
func (p *PPU) Restore(s State) {
	p.ctrl, p.mask, p.status, p.oamAddr = s.Ctrl, s.Mask, s.Status, s.OAMAddr
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.readBuffer = s.ReadBuffer

	p.oam = s.OAM
	p.secondaryOAM = s.SecondaryOAM
	p.spriteIndices = s.SpriteIndices
	p.spriteCount = s.SpriteCount

	p.nametable = s.Nametable
	p.palette = s.Palette

	p.scanline, p.cycle, p.frame, p.oddFrame = s.Scanline, s.Cycle, s.Frame, s.OddFrame
	p.vblankAge = s.VblankAge

	p.ntByte, p.atByte, p.bgLowByte, p.bgHighByte = s.NTByte, s.ATByte, s.BGLowByte, s.BGHighByte
	p.bgPatternLo, p.bgPatternHi = s.BGPatternLo, s.BGPatternHi
	p.bgAttrLo, p.bgAttrHi = s.BGAttrLo, s.BGAttrHi
	p.atLatchLo, p.atLatchHi = s.ATLatchLo, s.ATLatchHi
}
