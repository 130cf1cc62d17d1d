//go:build headless
// +build headless

package graphics

import "fmt"

// EbitengineAudioSink stub for headless builds: headless mode has no audio
// output device to drive, so construction always fails rather than silently
// discarding audio a caller expected to hear.
type EbitengineAudioSink struct{}

func NewEbitengineAudioSink(sampleRate int) (*EbitengineAudioSink, error) {
	return nil, fmt.Errorf("audio sink not available in headless build")
}

func (s *EbitengineAudioSink) Push(samples []int16) int { return len(samples) }
func (s *EbitengineAudioSink) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("audio sink not available in headless build")
}
func (s *EbitengineAudioSink) Close() error { return nil }
