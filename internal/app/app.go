package app

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"nesgo/internal/cartridge"
	"nesgo/internal/graphics"
	"nesgo/internal/input"
	"nesgo/internal/runtime"
)

// Application wires a loaded Config, the dedicated-thread emulation
// Runtime, a graphics Backend/Window pair, and save-state slots into one
// runnable program.
type Application struct {
	config *Config
	rt     *runtime.Runtime
	slots  *SlotManager

	backend graphics.Backend
	window  graphics.Window

	startedAt  time.Time
	lastSeq    uint64
	quitTapped time.Time
}

// quitDoubleTapWindow is how long a second Escape press has to arrive after
// the first before the double-tap quit gesture resets.
const quitDoubleTapWindow = 3 * time.Second

// NewApplicationWithMode loads configPath (creating it with defaults if
// absent) and constructs an Application; headless forces the headless
// graphics backend regardless of what the config file names.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	cfg := NewConfig()
	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	if headless {
		cfg.Video.Backend = "headless"
	}

	slots, err := NewSlotManager(cfg.Paths.SaveStates, cfg.Emulation.SaveStateSlots)
	if err != nil {
		return nil, err
	}

	backend, err := graphics.CreateBackend(graphics.BackendType(cfg.Video.Backend))
	if err != nil {
		return nil, fmt.Errorf("app: create graphics backend: %w", err)
	}

	gfxConfig := graphics.Config{
		WindowTitle:  "nesgo",
		WindowWidth:  cfg.Window.Width,
		WindowHeight: cfg.Window.Height,
		Fullscreen:   cfg.Window.Fullscreen,
		VSync:        cfg.Video.VSync,
		Filter:       cfg.Video.Filter,
		AspectRatio:  cfg.Video.AspectRatio,
		Headless:     headless || cfg.Video.Backend == "headless",
		Debug:        cfg.Debug.ShowDebugInfo,
	}
	if err := backend.Initialize(gfxConfig); err != nil {
		return nil, fmt.Errorf("app: initialize graphics backend: %w", err)
	}

	width, height := cfg.GetWindowResolution()
	var window graphics.Window
	if !gfxConfig.Headless {
		window, err = backend.CreateWindow(gfxConfig.WindowTitle, width, height)
		if err != nil {
			return nil, fmt.Errorf("app: create window: %w", err)
		}
	}

	rt := runtime.New()
	if cfg.Emulation.FrameRate > 0 && cfg.Emulation.FrameRate != 60.0988 {
		rt.SetIntegerFpsTarget(int(cfg.Emulation.FrameRate))
	}
	rt.SetAudioConfig(runtime.AudioConfig{MasterVolume: clampVolume(cfg.Audio.Volume)})
	rt.SetOnEvent(func(ev runtime.Event) {
		switch ev.Kind {
		case runtime.EventLoadRomFailed:
			fmt.Printf("failed to load %s: %v\n", ev.Path, ev.Err)
		case runtime.EventCPUJammed:
			fmt.Println("CPU halted on an illegal opcode (JAM); reset to continue")
		case runtime.EventAudioInitFailed:
			fmt.Printf("audio output unavailable: %v\n", ev.Err)
		}
	})

	if !gfxConfig.Headless && cfg.Audio.Enabled {
		// The sink must be opened at whatever rate the mixer actually
		// produces, not cfg.Audio.SampleRate: SetIntegerFpsTarget above may
		// have already rescaled it away from the mixer's native 48kHz.
		if sink, err := graphics.NewEbitengineAudioSink(int(rt.OutputSampleRate())); err == nil {
			rt.SetAudioSink(sink)
		}
	}

	return &Application{
		config:  cfg,
		rt:      rt,
		slots:   slots,
		backend: backend,
		window:  window,
	}, nil
}

func clampVolume(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GetConfig returns the application's configuration for in-place mutation
// by the caller (e.g. to force a backend or apply debug flags).
func (a *Application) GetConfig() *Config { return a.config }

// ApplyDebugSettings has no further effect beyond what NewApplicationWithMode
// already wired in; kept so callers written against the teacher's lifecycle
// (apply debug settings, possibly again after a ROM load) keep compiling.
func (a *Application) ApplyDebugSettings() {}

// LoadROM validates path synchronously (so a CLI caller gets an immediate,
// specific error) and then queues the real load onto the emulation thread.
func (a *Application) LoadROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := cartridge.LoadFromBytes(data); err != nil {
		return err
	}
	a.rt.LoadRom(path)
	return nil
}

// Run starts the emulation thread and drives the UI loop until the window
// (or the headless frame budget, in headless mode) asks to stop.
func (a *Application) Run() error {
	a.startedAt = time.Now()
	go a.rt.Run()
	defer a.rt.Stop()

	if a.window == nil {
		return a.runHeadless()
	}
	if w, ok := graphics.AsEbitengineWindow(a.window); ok {
		w.SetEmulatorUpdateFunc(a.tick)
		return w.Run()
	}
	return a.runPolled()
}

// runPolled drives non-ebitengine, non-headless backends (e.g. the terminal
// backend) with our own ~60Hz poll loop, since only EbitengineWindow pumps
// itself via a Run method.
func (a *Application) runPolled() error {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for !a.window.ShouldClose() {
		if err := a.tick(); err != nil {
			return err
		}
		<-ticker.C
	}
	return nil
}

// headlessFrameBudget is how many frames runHeadless lets play before
// stopping on its own; headless mode exists for smoke-testing a ROM load
// from a script, not for unattended long runs.
const headlessFrameBudget = 120

// headlessDumpFrames names the 1-based frame numbers runHeadless writes a
// PPM screenshot for, giving a caller a few samples across the run (early,
// mid, and final frame) without writing all 120.
var headlessDumpFrames = map[int]bool{30: true, 60: true, 120: true}

// runHeadless drives the emulator without any window at all for a fixed
// number of frames, dumping a few sample frames to PPM files as it goes,
// then stops. Used when no graphics backend produced a Window (-nogui).
func (a *Application) runHeadless() error {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	var lastSeq uint64
	frame := 0
	for frame < headlessFrameBudget {
		<-ticker.C
		seq := a.rt.FrameSequence()
		if seq == lastSeq {
			continue
		}
		lastSeq = seq
		frame++

		if headlessDumpFrames[frame] {
			name := fmt.Sprintf("frame_%03d.ppm", frame)
			if err := a.dumpFramePPM(name); err != nil {
				fmt.Printf("frame %d dump failed: %v\n", frame, err)
			} else {
				fmt.Printf("wrote %s\n", name)
			}
		}
	}
	return nil
}

// dumpFramePPM writes the current front framebuffer to path as a plain
// (P3, ASCII) PPM image.
func (a *Application) dumpFramePPM(path string) error {
	snap := a.rt.Framebuffer().BeginFrontCopy()
	var rgb [256 * 240]uint32
	snap.CopyRGB888(rgb[:])
	snap.EndFrontCopy()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			p := rgb[y*256+x]
			fmt.Fprintf(w, "%d %d %d ", (p>>16)&0xFF, (p>>8)&0xFF, p&0xFF)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// tick is called once per UI frame: it forwards input events into the
// runtime's lock-free input surface, handles the small set of UI-level hot
// keys (quit, save/load slot), and blits the latest completed frame.
func (a *Application) tick() error {
	for _, ev := range a.window.PollEvents() {
		a.handleEvent(ev)
	}

	if seq := a.rt.FrameSequence(); seq != a.lastSeq {
		a.lastSeq = seq
		snap := a.rt.Framebuffer().BeginFrontCopy()
		var rgb [256 * 240]uint32
		snap.CopyRGB888(rgb[:])
		snap.EndFrontCopy()
		if err := a.window.RenderFrame(rgb); err != nil {
			return err
		}
	}
	return nil
}

// handleEvent maps one UI InputEvent onto either a hot key or a controller
// button on the runtime's input surface.
func (a *Application) handleEvent(ev graphics.InputEvent) {
	switch ev.Type {
	case graphics.InputEventTypeQuit:
		a.window.Cleanup()
	case graphics.InputEventTypeButton:
		a.handleButton(ev)
	case graphics.InputEventTypeKey:
		if ev.Key == graphics.KeyEscape {
			a.handleEscape(ev)
			return
		}
		a.handleHotkey(ev)
	}
}

// handleEscape implements double-tap-to-quit: two Escape presses within
// quitDoubleTapWindow close the window, a single tap just arms the timer.
func (a *Application) handleEscape(ev graphics.InputEvent) {
	if !ev.Pressed {
		return
	}
	now := time.Now()
	if !a.quitTapped.IsZero() && now.Sub(a.quitTapped) <= quitDoubleTapWindow {
		a.window.Cleanup()
		return
	}
	a.quitTapped = now
}

// player1Buttons/player2Buttons translate the UI's own Button enum (which
// tags player number in the constant itself) onto the NES controller port
// each belongs to.
var player1Buttons = map[graphics.Button]input.Button{
	graphics.ButtonA:      input.ButtonA,
	graphics.ButtonB:      input.ButtonB,
	graphics.ButtonSelect: input.ButtonSelect,
	graphics.ButtonStart:  input.ButtonStart,
	graphics.ButtonUp:     input.ButtonUp,
	graphics.ButtonDown:   input.ButtonDown,
	graphics.ButtonLeft:   input.ButtonLeft,
	graphics.ButtonRight:  input.ButtonRight,
}

var player2Buttons = map[graphics.Button]input.Button{
	graphics.Button2A:      input.ButtonA,
	graphics.Button2B:      input.ButtonB,
	graphics.Button2Select: input.ButtonSelect,
	graphics.Button2Start:  input.ButtonStart,
	graphics.Button2Up:     input.ButtonUp,
	graphics.Button2Down:   input.ButtonDown,
	graphics.Button2Left:   input.ButtonLeft,
	graphics.Button2Right:  input.ButtonRight,
}

func (a *Application) handleButton(ev graphics.InputEvent) {
	if b, ok := player1Buttons[ev.Button]; ok {
		a.rt.SetButton(0, b, ev.Pressed)
		return
	}
	if b, ok := player2Buttons[ev.Button]; ok {
		a.rt.SetButton(1, b, ev.Pressed)
	}
}

// handleHotkey maps F1-F5 to save slots 0-4 and F6-F10 to load slots 0-4.
// The teacher's Shift+F-key scheme for load isn't reachable here: the
// graphics backend's InputEvent never carries a populated Modifiers field
// (ebitengine_backend.go's key-event path doesn't set it), so splitting the
// F-keys by save/load instead of by shift state leaves five slots (0-4)
// reachable for both saving and loading, without inventing modifier
// tracking that isn't there yet.
func (a *Application) handleHotkey(ev graphics.InputEvent) {
	if !ev.Pressed {
		return
	}
	mgr := a.rt.Manager()
	if mgr == nil {
		return
	}

	saveKeys := map[graphics.Key]int{
		graphics.KeyF1: 0, graphics.KeyF2: 1, graphics.KeyF3: 2, graphics.KeyF4: 3, graphics.KeyF5: 4,
	}
	loadKeys := map[graphics.Key]int{
		graphics.KeyF6: 0, graphics.KeyF7: 1, graphics.KeyF8: 2, graphics.KeyF9: 3, graphics.KeyF10: 4,
	}

	if slot, ok := saveKeys[ev.Key]; ok {
		if err := a.slots.Save(mgr, slot, a.rt.FrameSequence()); err != nil {
			fmt.Printf("save slot %d failed: %v\n", slot, err)
		} else {
			fmt.Printf("saved slot %d\n", slot)
		}
		return
	}
	if slot, ok := loadKeys[ev.Key]; ok {
		if err := a.slots.Load(mgr, slot); err != nil {
			fmt.Printf("load slot %d failed: %v\n", slot, err)
		} else {
			fmt.Printf("loaded slot %d\n", slot)
		}
	}
}

// GetFrameCount returns the number of frames the PPU has completed so far.
func (a *Application) GetFrameCount() uint64 { return a.rt.FrameSequence() }

// GetUptime returns how long Run has been executing.
func (a *Application) GetUptime() time.Duration { return time.Since(a.startedAt) }

// GetFPS returns the inverse of the runtime's average measured frame time,
// in frames per second (0 before any frame has been timed).
func (a *Application) GetFPS() float64 {
	stats := a.rt.Stats()
	if stats.AverageFrameTime <= 0 {
		return 0
	}
	return float64(time.Second) / float64(stats.AverageFrameTime)
}

// Cleanup stops the emulation thread and releases graphics resources.
func (a *Application) Cleanup() error {
	a.rt.Stop()
	if a.window != nil {
		a.window.Cleanup()
	}
	return a.backend.Cleanup()
}
