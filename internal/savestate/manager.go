package savestate

import (
	"fmt"
)

// SavedState is a standalone, independently loadable snapshot: a header
// plus an LZ4-compressed, gob-encoded Snapshot. Baseline states (the kind
// a user explicitly saves to a slot or file) are always this shape.
type SavedState struct {
	Header  Header
	Payload []byte // compressBlock(encodeSnapshot(snapshot))
}

// Manager captures and restores baseline states for one running machine.
// BaselineID increments on every SaveBaseline call so a delta chain (not
// implemented by Manager itself, see Rewinder) can tell which baseline it
// was built against.
type Manager struct {
	machine      Machine
	romHash      [32]uint8
	nextBaseline uint64
}

// NewManager creates a Manager bound to machine, tagging every saved state
// with romHash (typically sha256 of the raw cartridge image) so
// LoadBaseline can refuse to load a state from a different game.
func NewManager(machine Machine, romHash [32]uint8) *Manager {
	return &Manager{machine: machine, romHash: romHash, nextBaseline: 1}
}

// SaveBaseline captures the machine's current state as an independently
// loadable SavedState tagged with tick (the caller's frame/cycle counter).
func (m *Manager) SaveBaseline(tick uint64) (SavedState, error) {
	snap := m.machine.Capture()
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return SavedState{}, err
	}

	id := m.nextBaseline
	m.nextBaseline++

	return SavedState{
		Header: Header{
			FormatVersion: FormatVersion,
			BaselineID:    id,
			Tick:          tick,
			RomHash:       m.romHash,
			MapperID:      m.machine.MapperID,
			SubmapperID:   m.machine.SubmapperID,
		},
		Payload: compressBlock(raw),
	}, nil
}

// LoadBaseline restores the machine from a previously saved SavedState.
func (m *Manager) LoadBaseline(s SavedState) error {
	if s.Header.FormatVersion != FormatVersion {
		return fmt.Errorf("savestate: unsupported format version %d (have %d)", s.Header.FormatVersion, FormatVersion)
	}
	if s.Header.RomHash != m.romHash {
		return fmt.Errorf("savestate: state was saved for a different ROM (hash %x, loaded ROM is %x)", s.Header.RomHash, m.romHash)
	}
	if s.Header.MapperID != m.machine.MapperID {
		return fmt.Errorf("savestate: state was saved with mapper %d, loaded ROM uses mapper %d", s.Header.MapperID, m.machine.MapperID)
	}

	raw, err := decompressBlock(s.Payload)
	if err != nil {
		return err
	}
	snap, err := decodeSnapshot(raw)
	if err != nil {
		return err
	}
	return m.machine.Apply(snap)
}
