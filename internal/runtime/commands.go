package runtime

// ResetKind distinguishes the NES's two reset styles: a soft reset only
// reloads the CPU's program counter from the reset vector, while a hard
// reset (power cycle) also clears work RAM.
type ResetKind uint8

const (
	ResetSoft ResetKind = iota
	ResetHard
)

type commandKind uint8

const (
	cmdLoadRom commandKind = iota
	cmdReset
	cmdEject
	cmdSetAudioConfig
	cmdSetPaletteKind
	cmdSetPalette
	cmdSetIntegerFPSTarget
	cmdStop
)

// command is the single type carried by the control channel; only the
// fields relevant to kind are populated. A tagged struct rather than an
// interface keeps the channel's element type concrete and allocation-free
// to send.
type command struct {
	kind commandKind

	romPath      string
	resetKind    ResetKind
	audioConfig  AudioConfig
	paletteKind  PaletteKind
	palette      [64]uint32
	fpsTarget    int
	fpsTargetSet bool
}

// LoadRom asks the runtime to parse path as an iNES/NES2.0 image, install
// its mapper, reset every component, and unpause. Failures surface through
// the OnEvent callback as EventLoadRomFailed rather than a return value,
// since the command crosses to the dedicated emulator thread asynchronously.
func (rt *Runtime) LoadRom(path string) { rt.send(command{kind: cmdLoadRom, romPath: path}) }

// Reset issues a soft or hard reset of the currently loaded cartridge; a
// no-op if nothing is loaded.
func (rt *Runtime) Reset(kind ResetKind) { rt.send(command{kind: cmdReset, resetKind: kind}) }

// Eject drops the currently loaded cartridge; the runtime goes idle,
// blocking on the command channel (with a 10ms timeout) until the next
// LoadRom.
func (rt *Runtime) Eject() { rt.send(command{kind: cmdEject}) }

// SetAudioConfig updates master volume and the reverb/crossfeed/EQ
// parameters (see AudioConfig for which of these are actually wired).
func (rt *Runtime) SetAudioConfig(cfg AudioConfig) {
	rt.send(command{kind: cmdSetAudioConfig, audioConfig: cfg})
}

// SetPaletteKind selects one of the named palette tables.
func (rt *Runtime) SetPaletteKind(k PaletteKind) {
	rt.send(command{kind: cmdSetPaletteKind, paletteKind: k})
}

// SetPalette installs an arbitrary 64-entry RGB888 (0x00RRGGBB) palette
// table, bypassing the named kinds entirely.
func (rt *Runtime) SetPalette(p [64]uint32) { rt.send(command{kind: cmdSetPalette, palette: p}) }

// SetIntegerFpsTarget locks frame cadence, and the mixer's output sample
// rate scale, to an exact integer Hz. fps <= 0 reverts to native NTSC
// (60.0988Hz, no scaling).
func (rt *Runtime) SetIntegerFpsTarget(fps int) {
	rt.send(command{kind: cmdSetIntegerFPSTarget, fpsTarget: fps, fpsTargetSet: fps > 0})
}

// Stop terminates the emulator thread's Run loop after at most the frame
// currently in flight.
func (rt *Runtime) Stop() { rt.send(command{kind: cmdStop}) }

func (rt *Runtime) send(cmd command) {
	rt.commands <- cmd
}
