// Package savestate implements versioned binary snapshots of a running
// machine plus a frame-by-frame rewind history. A snapshot is a tagged
// aggregate of every component's own State type; baseline snapshots
// encode the full aggregate, while the rewind history instead keeps
// reverse byte-level patches so stepping back one frame at a time stays
// cheap. Both are LZ4-compressed, following the same design as the
// reference rewind implementation this package is ported from.
package savestate

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"nesgo/internal/apu"
	"nesgo/internal/bus"
	"nesgo/internal/cpu"
	"nesgo/internal/mixer"
	"nesgo/internal/ppu"
)

// FormatVersion is bumped whenever Snapshot's shape changes in a way that
// breaks decoding older saves.
const FormatVersion = 1

// Snapshot is the tagged aggregate of every component's own state. Mapper
// state is opaque bytes (cartridge.Mapper.SaveState/LoadState) since each
// mapper's layout is private to itself.
type Snapshot struct {
	CPU   cpu.State
	PPU   ppu.State
	APU   apu.State
	Mixer mixer.State
	Bus   bus.State

	MapperID    uint16
	MapperState []byte
}

// Header is the metadata every saved or rewound state carries: enough to
// tell an incompatible or foreign-ROM save apart from a loadable one
// before attempting to decode the payload.
type Header struct {
	FormatVersion uint32
	BaselineID    uint64
	Tick          uint64
	RomHash       [32]uint8
	MapperID      uint16
	SubmapperID   uint8
}

// Machine is the narrow set of components a Manager captures and restores.
// Each field is a concrete package type (rather than an interface) because
// Restore rebuilds private fields (e.g. the CPU's in-flight micro-op
// queue) that have no business being exposed through an interface.
type Machine struct {
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Mixer *mixer.Mixer
	Bus   *bus.Bus

	MapperID    uint16
	SubmapperID uint8
	Mapper      SaveableMapper
}

// SaveableMapper is the subset of cartridge.Mapper a Manager needs to
// capture/restore bank-switching state.
type SaveableMapper interface {
	SaveState() []byte
	LoadState(data []byte) error
}

// Capture builds a Snapshot from the machine's current state.
func (m Machine) Capture() Snapshot {
	s := Snapshot{
		CPU:      m.CPU.CaptureState(),
		PPU:      m.PPU.CaptureState(),
		APU:      m.APU.CaptureState(),
		Mixer:    m.Mixer.CaptureState(),
		Bus:      m.Bus.CaptureState(),
		MapperID: m.MapperID,
	}
	if m.Mapper != nil {
		s.MapperState = m.Mapper.SaveState()
	}
	return s
}

// Apply restores the machine's state from a Snapshot. The mapper must
// already be the one identified by MapperID; Apply does not swap mappers.
func (m Machine) Apply(s Snapshot) error {
	m.CPU.Restore(s.CPU)
	m.PPU.Restore(s.PPU)
	m.APU.Restore(s.APU)
	m.Mixer.Restore(s.Mixer)
	m.Bus.Restore(s.Bus)
	if m.Mapper != nil && s.MapperState != nil {
		if err := m.Mapper.LoadState(s.MapperState); err != nil {
			return fmt.Errorf("savestate: mapper state rejected: %w", err)
		}
	}
	return nil
}

// encodeSnapshot gob-encodes a Snapshot into bytes suitable for
// compression, hashing, or delta-patching.
func encodeSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("savestate: encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeSnapshot is the inverse of encodeSnapshot.
func decodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("savestate: decode snapshot: %w", err)
	}
	return s, nil
}
