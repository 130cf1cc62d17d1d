package apu

// PulseState mirrors pulseChannel for save/restore.
type PulseState struct {
	DutyCycle       uint8
	EnvelopeLoop    bool
	EnvelopeDisable bool
	Volume          uint8

	SweepEnable  bool
	SweepPeriod  uint8
	SweepNegate  bool
	SweepShift   uint8
	SweepReload  bool
	SweepCounter uint8

	Timer        uint16
	TimerCounter uint16

	LengthCounter uint8
	LengthHalt    bool

	EnvelopeStart   bool
	EnvelopeCounter uint8
	EnvelopeDivider uint8

	DutyIndex uint8
}

// TriangleState mirrors triangleChannel for save/restore.
type TriangleState struct {
	LengthCounterHalt bool
	LinearCounterLoad uint8

	Timer        uint16
	TimerCounter uint16

	LengthCounter uint8

	LinearCounter       uint8
	LinearCounterReload bool

	SequencerPos uint8
}

// NoiseState mirrors noiseChannel for save/restore.
type NoiseState struct {
	EnvelopeLoop    bool
	EnvelopeDisable bool
	Volume          uint8

	Mode         bool
	PeriodIndex  uint8
	TimerCounter uint16

	LengthCounter uint8
	LengthHalt    bool

	EnvelopeStart   bool
	EnvelopeCounter uint8
	EnvelopeDivider uint8

	ShiftRegister uint16
}

// DMCState mirrors dmcChannel for save/restore.
type DMCState struct {
	IRQEnable bool
	LoopFlag  bool
	Enabled   bool

	DisableDelay       uint8
	TransferStartDelay uint8

	RateIndex   uint8
	OutputLevel uint8

	SampleAddress uint16
	SampleLength  uint16
	CurrentAddr   uint16
	BytesLeft     uint16

	SampleBufferFull bool
	SampleBuffer     uint8

	ShiftRegister  uint8
	BitsRemaining  uint8
	Silence        bool
	Timer          uint16
	TimerPeriod    uint16
	FetchRequested bool

	IRQFlag bool
}

// State is the complete contents of the APU, excluding the mixer it
// drives (internal/mixer carries its own State for that).
type State struct {
	Pulse1   PulseState
	Pulse2   PulseState
	Triangle TriangleState
	Noise    NoiseState
	DMC      DMCState

	FrameCounter    uint16
	FrameMode       bool
	FrameIRQInhibit bool
	FrameIRQFlag    bool
	FrameResetDelay uint8

	ChannelEnable [4]bool

	Cycles uint64

	LastMixed int32
}

func capturePulse(p *pulseChannel) PulseState {
	return PulseState{
		DutyCycle: p.dutyCycle, EnvelopeLoop: p.envelopeLoop, EnvelopeDisable: p.envelopeDisable, Volume: p.volume,
		SweepEnable: p.sweepEnable, SweepPeriod: p.sweepPeriod, SweepNegate: p.sweepNegate,
		SweepShift: p.sweepShift, SweepReload: p.sweepReload, SweepCounter: p.sweepCounter,
		Timer: p.timer, TimerCounter: p.timerCounter,
		LengthCounter: p.lengthCounter, LengthHalt: p.lengthHalt,
		EnvelopeStart: p.envelopeStart, EnvelopeCounter: p.envelopeCounter, EnvelopeDivider: p.envelopeDivider,
		DutyIndex: p.dutyIndex,
	}
}

func restorePulse(p *pulseChannel, s PulseState) {
	p.dutyCycle, p.envelopeLoop, p.envelopeDisable, p.volume = s.DutyCycle, s.EnvelopeLoop, s.EnvelopeDisable, s.Volume
	p.sweepEnable, p.sweepPeriod, p.sweepNegate = s.SweepEnable, s.SweepPeriod, s.SweepNegate
	p.sweepShift, p.sweepReload, p.sweepCounter = s.SweepShift, s.SweepReload, s.SweepCounter
	p.timer, p.timerCounter = s.Timer, s.TimerCounter
	p.lengthCounter, p.lengthHalt = s.LengthCounter, s.LengthHalt
	p.envelopeStart, p.envelopeCounter, p.envelopeDivider = s.EnvelopeStart, s.EnvelopeCounter, s.EnvelopeDivider
	p.dutyIndex = s.DutyIndex
}

// CaptureState snapshots every channel and the frame sequencer.
func (a *APU) CaptureState() State {
	return State{
		Pulse1: capturePulse(&a.pulse1),
		Pulse2: capturePulse(&a.pulse2),
		Triangle: TriangleState{
			LengthCounterHalt: a.triangle.lengthCounterHalt, LinearCounterLoad: a.triangle.linearCounterLoad,
			Timer: a.triangle.timer, TimerCounter: a.triangle.timerCounter,
			LengthCounter: a.triangle.lengthCounter,
			LinearCounter: a.triangle.linearCounter, LinearCounterReload: a.triangle.linearCounterReload,
			SequencerPos: a.triangle.sequencerPos,
		},
		Noise: NoiseState{
			EnvelopeLoop: a.noise.envelopeLoop, EnvelopeDisable: a.noise.envelopeDisable, Volume: a.noise.volume,
			Mode: a.noise.mode, PeriodIndex: a.noise.periodIndex, TimerCounter: a.noise.timerCounter,
			LengthCounter: a.noise.lengthCounter, LengthHalt: a.noise.lengthHalt,
			EnvelopeStart: a.noise.envelopeStart, EnvelopeCounter: a.noise.envelopeCounter, EnvelopeDivider: a.noise.envelopeDivider,
			ShiftRegister: a.noise.shiftRegister,
		},
		DMC: DMCState{
			IRQEnable: a.dmc.irqEnable, LoopFlag: a.dmc.loopFlag, Enabled: a.dmc.enabled,
			DisableDelay: a.dmc.disableDelay, TransferStartDelay: a.dmc.transferStartDelay,
			RateIndex: a.dmc.rateIndex, OutputLevel: a.dmc.outputLevel,
			SampleAddress: a.dmc.sampleAddress, SampleLength: a.dmc.sampleLength,
			CurrentAddr: a.dmc.currentAddr, BytesLeft: a.dmc.bytesLeft,
			SampleBufferFull: a.dmc.sampleBufferFull, SampleBuffer: a.dmc.sampleBuffer,
			ShiftRegister: a.dmc.shiftRegister, BitsRemaining: a.dmc.bitsRemaining, Silence: a.dmc.silence,
			Timer: a.dmc.timer, TimerPeriod: a.dmc.timerPeriod, FetchRequested: a.dmc.fetchRequested,
			IRQFlag: a.dmc.irqFlag,
		},
		FrameCounter: a.frameCounter, FrameMode: a.frameMode,
		FrameIRQInhibit: a.frameIRQInhibit, FrameIRQFlag: a.frameIRQFlag, FrameResetDelay: a.frameResetDelay,
		ChannelEnable: a.channelEnable,
		Cycles:        a.cycles,
		LastMixed:     a.lastMixed,
	}
}

// Restore replaces the APU's channel and frame-sequencer state with a
// previously captured snapshot. The mixer attached via New is untouched;
// callers restore it separately through internal/mixer's own State.
func (a *APU) Restore(s State) {
	restorePulse(&a.pulse1, s.Pulse1)
	restorePulse(&a.pulse2, s.Pulse2)

	a.triangle.lengthCounterHalt, a.triangle.linearCounterLoad = s.Triangle.LengthCounterHalt, s.Triangle.LinearCounterLoad
	a.triangle.timer, a.triangle.timerCounter = s.Triangle.Timer, s.Triangle.TimerCounter
	a.triangle.lengthCounter = s.Triangle.LengthCounter
	a.triangle.linearCounter, a.triangle.linearCounterReload = s.Triangle.LinearCounter, s.Triangle.LinearCounterReload
	a.triangle.sequencerPos = s.Triangle.SequencerPos

	a.noise.envelopeLoop, a.noise.envelopeDisable, a.noise.volume = s.Noise.EnvelopeLoop, s.Noise.EnvelopeDisable, s.Noise.Volume
	a.noise.mode, a.noise.periodIndex, a.noise.timerCounter = s.Noise.Mode, s.Noise.PeriodIndex, s.Noise.TimerCounter
	a.noise.lengthCounter, a.noise.lengthHalt = s.Noise.LengthCounter, s.Noise.LengthHalt
	a.noise.envelopeStart, a.noise.envelopeCounter, a.noise.envelopeDivider = s.Noise.EnvelopeStart, s.Noise.EnvelopeCounter, s.Noise.EnvelopeDivider
	a.noise.shiftRegister = s.Noise.ShiftRegister

	a.dmc.irqEnable, a.dmc.loopFlag, a.dmc.enabled = s.DMC.IRQEnable, s.DMC.LoopFlag, s.DMC.Enabled
	a.dmc.disableDelay, a.dmc.transferStartDelay = s.DMC.DisableDelay, s.DMC.TransferStartDelay
	a.dmc.rateIndex, a.dmc.outputLevel = s.DMC.RateIndex, s.DMC.OutputLevel
	a.dmc.sampleAddress, a.dmc.sampleLength = s.DMC.SampleAddress, s.DMC.SampleLength
	a.dmc.currentAddr, a.dmc.bytesLeft = s.DMC.CurrentAddr, s.DMC.BytesLeft
	a.dmc.sampleBufferFull, a.dmc.sampleBuffer = s.DMC.SampleBufferFull, s.DMC.SampleBuffer
	a.dmc.shiftRegister, a.dmc.bitsRemaining, a.dmc.silence = s.DMC.ShiftRegister, s.DMC.BitsRemaining, s.DMC.Silence
	a.dmc.timer, a.dmc.timerPeriod, a.dmc.fetchRequested = s.DMC.Timer, s.DMC.TimerPeriod, s.DMC.FetchRequested
	a.dmc.irqFlag = s.DMC.IRQFlag

	a.frameCounter, a.frameMode = s.FrameCounter, s.FrameMode
	a.frameIRQInhibit, a.frameIRQFlag, a.frameResetDelay = s.FrameIRQInhibit, s.FrameIRQFlag, s.FrameResetDelay
	a.channelEnable = s.ChannelEnable
	a.cycles = s.Cycles
	a.lastMixed = s.LastMixed
}
