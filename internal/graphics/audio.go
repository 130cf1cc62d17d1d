//go:build !headless
// +build !headless

package graphics

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"nesgo/internal/runtime"
)

// sinkBufferBytes sizes the ring buffer backing EbitengineAudioSink: stereo
// 16-bit frames (4 bytes/sample-pair) at roughly a quarter second of audio,
// generous enough to absorb a GC pause or a slow frame without underrunning.
const sinkBufferBytes = 48000 / 4 * 4

// EbitengineAudioSink adapts the runtime's push-only AudioSink interface to
// ebiten's audio.Player, which instead pulls PCM through an io.Reader on its
// own goroutine. A ring buffer decouples the two cadences: Push (called from
// the emulator thread) never blocks, dropping samples that don't fit; Read
// (called from ebiten's audio goroutine) never blocks either, filling with
// silence on underrun instead of stalling playback.
type EbitengineAudioSink struct {
	mu     sync.Mutex
	buf    []byte
	read   int
	write  int
	filled int

	player *audio.Player
}

// NewEbitengineAudioSink creates a sink and starts its player immediately;
// sampleRate must match the rate the runtime's mixer is configured for
// (SetIntegerFpsTarget rescales it, so callers that use non-native cadences
// should recreate the sink after changing it).
func NewEbitengineAudioSink(sampleRate int) (*EbitengineAudioSink, error) {
	sink := &EbitengineAudioSink{buf: make([]byte, sinkBufferBytes)}
	ctx := audio.NewContext(sampleRate)
	player, err := ctx.NewPlayer(sink)
	if err != nil {
		return nil, err
	}
	sink.player = player
	player.Play()
	return sink, nil
}

// Push implements runtime.AudioSink. Samples are mono 16-bit PCM; ebiten's
// audio package expects interleaved stereo frames, so each sample is
// duplicated to both channels.
func (s *EbitengineAudioSink) Push(samples []int16) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := 0
	for _, sample := range samples {
		if s.filled+4 > len(s.buf) {
			break
		}
		lo, hi := byte(sample), byte(sample>>8)
		for _, b := range [4]byte{lo, hi, lo, hi} {
			s.buf[s.write] = b
			s.write = (s.write + 1) % len(s.buf)
		}
		s.filled += 4
		accepted++
	}
	return accepted
}

// Read implements io.Reader for the audio.Player's pull goroutine.
func (s *EbitengineAudioSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for n < len(p) {
		if s.filled == 0 {
			p[n] = 0
			n++
			continue
		}
		p[n] = s.buf[s.read]
		s.read = (s.read + 1) % len(s.buf)
		s.filled--
		n++
	}
	return n, nil
}

// Close stops playback; implements io.Closer for symmetry with audio.Player.
func (s *EbitengineAudioSink) Close() error {
	return s.player.Close()
}

var _ runtime.AudioSink = (*EbitengineAudioSink)(nil)
