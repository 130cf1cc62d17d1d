// Package runtime drives one NES machine from a dedicated goroutine: a
// bounded command channel carries control operations in from the UI side,
// lock-free atomics carry input in, and a hybrid sleep/spin scheduler holds
// the emulation to real NES cadence (60.0988Hz) while staying responsive to
// both.
package runtime

import (
	"crypto/sha256"
	"os"
	stdruntime "runtime"
	"time"

	"github.com/golang/glog"

	"nesgo/internal/apu"
	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/framebuffer"
	"nesgo/internal/input"
	"nesgo/internal/mixer"
	"nesgo/internal/ppu"
	"nesgo/internal/savestate"
)

// nativeHz is the real NTSC NES frame rate: 39,375,000/11/60/262 ≈ 60.0988.
const nativeHz = 60.0988

// Hybrid wait tuning. A long sleep in small chunks gets the deadline close,
// then a tight spin (yielding periodically so the scheduler doesn't starve
// other goroutines) closes the last SPIN_THRESHOLD for wakeup-latency
// accuracy sleep alone can't guarantee on a general-purpose OS scheduler.
const (
	spinThreshold  = 300 * time.Microsecond
	frameLead      = 50 * time.Microsecond
	spinYieldEvery = 512
	maxSleepChunk  = 4 * time.Millisecond

	maxCatchUpFrames  = 3
	catchUpDriftLimit = 2
)

const idleCommandTimeout = 10 * time.Millisecond

const defaultOutputSampleRate = 48000.0
const defaultRewindCapacity = 600 // 10s at 60fps

// Runtime owns one complete machine (CPU/PPU/APU/mixer/bus) plus the
// cartridge-dependent save-state machinery, and paces it against the wall
// clock. The zero value is not usable; construct with New.
type Runtime struct {
	cpuCore *cpu.CPU
	ppuCore *ppu.PPU
	apuCore *apu.APU
	mix     *mixer.Mixer
	busCore *bus.Bus
	fb      *framebuffer.Framebuffer

	cart        *cartridge.Cartridge
	romHash     [32]byte
	mapperID    uint16
	submapperID uint8

	manager  *savestate.Manager
	rewinder *savestate.Rewinder

	commands chan command

	audioSink      AudioSink
	audioConfig    AudioConfig
	sampleBuf      []int16
	onEvent        func(Event)
	cpuJamReported bool

	paused  bool
	stopped bool

	frameHz           float64
	targetFrameTime   time.Duration
	nextFrameDeadline time.Time
	outputSampleRate  float64

	frameTimes *circularTimingBuffer
	stats      Stats

	indexScratch []byte // reused by PushFrame's framebuffer copy
}

// New constructs a Runtime with no cartridge loaded; it idles (blocking on
// the command channel) until LoadRom succeeds.
func New() *Runtime {
	cpuCore := cpu.New()
	ppuCore := ppu.New()
	mix := mixer.New(1789773, defaultOutputSampleRate, 4096)
	apuCore := apu.New(mix)
	busCore := bus.New(cpuCore, ppuCore, apuCore)
	fb := framebuffer.New()
	ppuCore.SetFramebuffer(fb)

	rt := &Runtime{
		cpuCore:          cpuCore,
		ppuCore:          ppuCore,
		apuCore:          apuCore,
		mix:              mix,
		busCore:          busCore,
		fb:               fb,
		commands:         make(chan command, 16),
		audioSink:        discardSink{},
		audioConfig:      DefaultAudioConfig(),
		sampleBuf:        make([]int16, 4096),
		frameHz:          nativeHz,
		targetFrameTime:  time.Duration(float64(time.Second) / nativeHz),
		frameTimes:       newCircularTimingBuffer(300),
		indexScratch:     make([]byte, framebuffer.Width*framebuffer.Height),
		outputSampleRate: defaultOutputSampleRate,
	}
	return rt
}

// OutputSampleRate returns the rate (Hz) the mixer currently produces PCM
// at, which an audio device must be opened at to avoid pitch drift. It
// changes when SetIntegerFpsTarget rescales the frame cadence; read it again
// after calling that before (re)creating an audio sink.
func (rt *Runtime) OutputSampleRate() float64 { return rt.outputSampleRate }

// SetAudioSink installs the non-blocking PCM consumer frames are pushed
// into. A nil sink reverts to discarding audio.
func (rt *Runtime) SetAudioSink(sink AudioSink) {
	if sink == nil {
		sink = discardSink{}
	}
	rt.audioSink = sink
}

// SetOnEvent installs the callback invoked (from the runtime's own
// goroutine, so it must not block) for asynchronous notifications:
// LoadRomFailed, AudioInitFailed, CPUJammed.
func (rt *Runtime) SetOnEvent(fn func(Event)) { rt.onEvent = fn }

// Framebuffer returns the swapchain the PPU renders into; a consumer reads
// it through BeginFrontCopy/EndFrontCopy from any thread.
func (rt *Runtime) Framebuffer() *framebuffer.Framebuffer { return rt.fb }

// FrameSequence is the atomic frame-ready counter a polling UI can compare
// against its last-seen value instead of using the OnEvent callback.
func (rt *Runtime) FrameSequence() uint64 { return rt.fb.Sequence() }

func (rt *Runtime) emit(ev Event) {
	if rt.onEvent != nil {
		rt.onEvent(ev)
	}
}

// Run executes the scheduler loop until a Stop command is processed or the
// command channel is closed. It is meant to be the entire body of the
// dedicated emulator goroutine; Run never returns early for any reason
// other than those two.
func (rt *Runtime) Run() {
	rt.nextFrameDeadline = time.Now()
	for {
		if !rt.drainCommands() {
			return
		}
		if rt.stopped {
			return
		}

		if rt.paused || rt.cart == nil {
			if !rt.waitForCommand() {
				return
			}
			continue
		}

		if !rt.waitForDeadline() {
			return
		}

		behind := time.Since(rt.nextFrameDeadline)
		framesBehind := int(behind / rt.targetFrameTime)
		if framesBehind > catchUpDriftLimit {
			glog.Warningf("runtime: %d frames behind target, resetting deadline", framesBehind)
			rt.nextFrameDeadline = time.Now()
			framesBehind = 0
		}

		framesToRun := framesBehind + 1
		if framesToRun > maxCatchUpFrames {
			framesToRun = maxCatchUpFrames
		}

		for i := 0; i < framesToRun; i++ {
			rt.runOneFrame()
		}
		rt.nextFrameDeadline = rt.nextFrameDeadline.Add(time.Duration(framesToRun) * rt.targetFrameTime)
	}
}

// drainCommands processes every command currently queued without blocking.
// It returns false once a Stop command (or channel close) has been
// processed, signaling Run to exit immediately.
func (rt *Runtime) drainCommands() bool {
	for {
		select {
		case cmd, ok := <-rt.commands:
			if !ok {
				return false
			}
			if !rt.handleCommand(cmd) {
				return false
			}
		default:
			return true
		}
	}
}

// waitForCommand blocks on the command channel with a 10ms timeout, used
// while paused or with no cartridge loaded so the thread doesn't spin idle.
func (rt *Runtime) waitForCommand() bool {
	select {
	case cmd, ok := <-rt.commands:
		if !ok {
			return false
		}
		return rt.handleCommand(cmd)
	case <-time.After(idleCommandTimeout):
		return true
	}
}

// waitForDeadline hybrid-waits until frameLead before nextFrameDeadline:
// sleeping in bounded chunks while far away, then spinning (yielding the
// scheduler periodically) for the final spinThreshold. Commands are
// drained between sleep chunks so input/reset latency doesn't hide behind
// a long sleep.
func (rt *Runtime) waitForDeadline() bool {
	for {
		remaining := time.Until(rt.nextFrameDeadline) - frameLead
		if remaining <= spinThreshold {
			break
		}
		sleep := remaining - spinThreshold
		if sleep > maxSleepChunk {
			sleep = maxSleepChunk
		}
		time.Sleep(sleep)
		if !rt.drainCommands() {
			return false
		}
		if rt.stopped || rt.paused || rt.cart == nil {
			return true
		}
	}

	iterations := 0
	for time.Until(rt.nextFrameDeadline)-frameLead > 0 {
		iterations++
		if iterations%spinYieldEvery == 0 {
			stdruntime.Gosched()
		}
	}
	return true
}

// runOneFrame advances the machine until the PPU signals a completed
// frame, then drains mixer output to the audio sink and advances the
// controller turbo phase. Driving by the PPU's own frame boundary (rather
// than a fixed CPU-cycle count) is exact for this core's dot-accurate PPU,
// unlike the fixed 29,781-cycle approximation an emulator without
// per-scanline accuracy would need.
func (rt *Runtime) runOneFrame() {
	frameStart := time.Now()

	startFrame := rt.ppuCore.FrameCount()
	for rt.ppuCore.FrameCount() == startFrame {
		rt.busCore.Clock()
	}
	rt.apuCore.EndFrame()
	rt.busCore.Input.AdvanceTurboPhase()

	rt.pushAudio()

	if rt.cpuCore.Jammed() && !rt.cpuJamReported {
		rt.cpuJamReported = true
		rt.emit(Event{Kind: EventCPUJammed})
	}

	if rt.rewinder != nil {
		snap := rt.fb.BeginFrontCopy()
		snap.CopyIndex(rt.indexScratch, nil)
		snap.EndFrontCopy()
		if err := rt.rewinder.PushFrame(rt.indexScratch); err != nil {
			glog.Warningf("runtime: rewind history cleared: %v", err)
		}
	}

	elapsed := time.Since(frameStart)
	rt.frameTimes.Add(elapsed)
	rt.stats.update(elapsed, rt.targetFrameTime, rt.frameTimes)
}

func (rt *Runtime) pushAudio() {
	for {
		n := rt.mix.ReadSamplesI16(rt.sampleBuf)
		if n == 0 {
			return
		}
		samples := rt.sampleBuf[:n]
		applyVolume(samples, rt.audioConfig.MasterVolume)
		rt.audioSink.Push(samples)
		if n < len(rt.sampleBuf) {
			return
		}
	}
}

// handleCommand applies one command's effect and returns false if Run
// should stop (a Stop command was processed).
func (rt *Runtime) handleCommand(cmd command) bool {
	switch cmd.kind {
	case cmdLoadRom:
		rt.handleLoadRom(cmd.romPath)
	case cmdReset:
		rt.handleReset(cmd.resetKind)
	case cmdEject:
		rt.handleEject()
	case cmdSetAudioConfig:
		rt.audioConfig = cmd.audioConfig
	case cmdSetPaletteKind:
		rt.fb.SetPalette(resolvePaletteKind(cmd.paletteKind))
	case cmdSetPalette:
		rt.fb.SetPalette(cmd.palette)
	case cmdSetIntegerFPSTarget:
		rt.handleSetIntegerFPSTarget(cmd)
	case cmdStop:
		rt.stopped = true
		return false
	}
	return true
}

func (rt *Runtime) handleLoadRom(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		rt.emit(Event{Kind: EventLoadRomFailed, Path: path, Err: err})
		return
	}
	cart, err := cartridge.LoadFromBytes(data)
	if err != nil {
		rt.emit(Event{Kind: EventLoadRomFailed, Path: path, Err: err})
		return
	}

	rt.cart = cart
	rt.romHash = sha256.Sum256(data)
	hdr := cart.Header()
	rt.mapperID = uint16(hdr.MapperID)
	rt.submapperID = hdr.SubmapperID

	rt.busCore.LoadCartridge(cart.Mapper())
	rt.ppuCore.LoadCartridge(cart.Mapper())
	rt.ppuCore.Reset()
	rt.apuCore.Reset()
	rt.mix.Clear()
	rt.busCore.Reset()

	machine := savestate.Machine{
		CPU: rt.cpuCore, PPU: rt.ppuCore, APU: rt.apuCore, Mixer: rt.mix, Bus: rt.busCore,
		MapperID: rt.mapperID, Mapper: cart.Mapper(),
	}
	rt.manager = savestate.NewManager(machine, rt.romHash)
	rt.rewinder = savestate.NewRewinder(machine, defaultRewindCapacity)

	rt.cpuJamReported = false
	rt.paused = false
	rt.nextFrameDeadline = time.Now()
	glog.Infof("runtime: loaded %s (mapper %d.%d)", path, rt.mapperID, rt.submapperID)
}

func (rt *Runtime) handleReset(kind ResetKind) {
	if rt.cart == nil {
		return
	}
	switch kind {
	case ResetSoft:
		rt.cpuCore.Reset(rt.busCore)
	case ResetHard:
		rt.busCore.Reset()
	}
	rt.nextFrameDeadline = time.Now()
}

func (rt *Runtime) handleEject() {
	rt.cart = nil
	rt.mapperID = 0
	rt.submapperID = 0
	rt.busCore.LoadCartridge(nil)
	rt.ppuCore.LoadCartridge(nil)
	rt.manager = nil
	rt.rewinder = nil
}

func (rt *Runtime) handleSetIntegerFPSTarget(cmd command) {
	if cmd.fpsTargetSet {
		rt.frameHz = float64(cmd.fpsTarget)
	} else {
		rt.frameHz = nativeHz
	}
	rt.targetFrameTime = time.Duration(float64(time.Second) / rt.frameHz)

	scale := rt.frameHz / nativeHz
	rt.mix.SetRates(1789773, defaultOutputSampleRate*scale)
	rt.outputSampleRate = rt.mix.OutputSampleRate()
	rt.nextFrameDeadline = time.Now()
}

// Manager returns the save-state manager for the currently loaded
// cartridge, or nil if no cartridge is loaded.
func (rt *Runtime) Manager() *savestate.Manager { return rt.manager }

// Rewinder returns the rewind history for the currently loaded cartridge,
// or nil if no cartridge is loaded.
func (rt *Runtime) Rewinder() *savestate.Rewinder { return rt.rewinder }

// SetButton publishes one button's state on the given port (0-3) into the
// lock-free input surface; ports 2-3 are only observable by mappers/4-player
// adapters the bus doesn't wire to $4016/$4017 directly.
func (rt *Runtime) SetButton(port int, button input.Button, pressed bool) {
	if port < 0 || port >= len(rt.busCore.Input.Ports) {
		return
	}
	rt.busCore.Input.Ports[port].SetButton(button, pressed)
}

// SetTurbo publishes one button's turbo-mask bit on the given port.
func (rt *Runtime) SetTurbo(port int, button input.Button, enabled bool) {
	if port < 0 || port >= len(rt.busCore.Input.Ports) {
		return
	}
	rt.busCore.Input.Ports[port].SetTurbo(button, enabled)
}

// Stats returns a snapshot of the frame-pacing statistics gathered since
// the runtime was constructed.
func (rt *Runtime) Stats() Stats { return rt.stats }
