// Package mixer is a Go port of Shay Green's blip_buf band-limited
// resampler: it accepts clock-tagged amplitude deltas from the APU and
// produces PCM samples at a fixed output rate through a precomputed sinc
// kernel plus a one-pole high-pass filter.
//
// Original C source: http://www.slack.net/~ant/blip_buf.html (LGPL-2.1).
package mixer

import "math"

const (
	preShift    = 32
	timeBits    = preShift + 20
	bassShift   = 9
	endFrameExtra = 2
	halfWidth   = 8
	bufExtra    = halfWidth*2 + endFrameExtra
	phaseBits   = 5
	phaseCount  = 1 << phaseBits
	deltaBits   = 15
	deltaUnit   = 1 << deltaBits
	fracBits    = timeBits - preShift
	maxRatio    = 1 << 20
)

const timeUnit = uint64(1) << timeBits

// blStep is Sinc_Generator(0.9, 0.55, 4.5), the same kernel blip_buf ships.
var blStep = [phaseCount + 1][halfWidth]int16{
	{43, -115, 350, -488, 1136, -914, 5861, 21022},
	{44, -118, 348, -473, 1076, -799, 5274, 21001},
	{45, -121, 344, -454, 1011, -677, 4706, 20936},
	{46, -122, 336, -431, 942, -549, 4156, 20829},
	{47, -123, 327, -404, 868, -418, 3629, 20679},
	{47, -122, 316, -375, 792, -285, 3124, 20488},
	{47, -120, 303, -344, 714, -151, 2644, 20256},
	{46, -117, 289, -310, 634, -17, 2188, 19985},
	{46, -114, 273, -275, 553, 117, 1758, 19675},
	{44, -108, 255, -237, 471, 247, 1356, 19327},
	{43, -103, 237, -199, 390, 373, 981, 18944},
	{42, -98, 218, -160, 310, 495, 633, 18527},
	{40, -91, 198, -121, 231, 611, 314, 18078},
	{38, -84, 178, -81, 153, 722, 22, 17599},
	{36, -76, 157, -43, 80, 824, -241, 17092},
	{34, -68, 135, -3, 8, 919, -476, 16558},
	{32, -61, 115, 34, -60, 1006, -683, 16001},
	{29, -52, 94, 70, -123, 1083, -862, 15422},
	{27, -44, 73, 106, -184, 1152, -1015, 14824},
	{25, -36, 53, 139, -239, 1211, -1142, 14210},
	{22, -27, 34, 170, -290, 1261, -1244, 13582},
	{20, -20, 16, 199, -335, 1301, -1322, 12942},
	{18, -12, -3, 226, -375, 1331, -1376, 12293},
	{15, -4, -19, 250, -410, 1351, -1408, 11638},
	{13, 3, -35, 272, -439, 1361, -1419, 10979},
	{11, 9, -49, 292, -464, 1362, -1410, 10319},
	{9, 16, -63, 309, -483, 1354, -1383, 9660},
	{7, 22, -75, 322, -496, 1337, -1339, 9005},
	{6, 26, -85, 333, -504, 1312, -1280, 8355},
	{4, 31, -94, 341, -507, 1278, -1205, 7713},
	{3, 35, -102, 347, -506, 1238, -1119, 7082},
	{1, 40, -110, 350, -499, 1190, -1021, 6464},
	{0, 43, -115, 350, -488, 1136, -914, 5861},
}

// Mixer is a band-limited delta-to-PCM buffer. The zero value is not
// usable; construct with New.
type Mixer struct {
	factor     uint64
	offset     uint64
	avail      int
	size       int
	integrator int32
	buf        []int32

	sampleRate float64
}

// New creates a buffer converting deltas at clockRate (Hz) into samples at
// sampleRate (Hz); minBufferSamples is a lower bound on capacity (actual
// capacity is at least one second of output).
func New(clockRate, sampleRate float64, minBufferSamples int) *Mixer {
	if clockRate <= 0 || sampleRate <= 0 {
		panic("mixer: clockRate and sampleRate must be positive")
	}
	if clockRate > sampleRate*maxRatio {
		panic("mixer: clockRate/sampleRate exceeds the supported ratio")
	}

	size := minBufferSamples
	if s := int(math.Ceil(sampleRate)); s > size {
		size = s
	}
	if size < 1 {
		size = 1
	}

	defaultFactor := timeUnit / maxRatio
	m := &Mixer{
		factor: defaultFactor,
		offset: defaultFactor / 2,
		size:   size,
		buf:    make([]int32, size+bufExtra),
	}
	m.SetRates(clockRate, sampleRate)
	return m
}

// SetRates reconfigures the input/output rates, preserving buffered samples.
func (m *Mixer) SetRates(clockRate, sampleRate float64) {
	if clockRate <= 0 || sampleRate <= 0 {
		panic("mixer: clockRate and sampleRate must be positive")
	}
	if clockRate > sampleRate*maxRatio {
		panic("mixer: clockRate/sampleRate exceeds the supported ratio")
	}
	m.factor = computeFactor(clockRate, sampleRate)
	m.sampleRate = sampleRate
}

// OutputSampleRate returns the output rate (Hz) the mixer is currently
// configured to produce, as last set by New or SetRates. Callers building an
// audio device around ReadSamples/ReadSamplesI16 must drive it at this rate,
// not whatever rate a config file happens to name, or playback pitch drifts.
func (m *Mixer) OutputSampleRate() float64 { return m.sampleRate }

// Clear discards all buffered samples and resets filter state.
func (m *Mixer) Clear() {
	m.offset = m.factor / 2
	m.avail = 0
	m.integrator = 0
	for i := range m.buf {
		m.buf[i] = 0
	}
}

// SamplesAvail returns the number of samples ready for ReadSamples.
func (m *Mixer) SamplesAvail() int { return m.avail }

// AddDelta deposits a delta at the given source-clock time into the kernel,
// spreading it across the band-limited taps around that time's output
// sample. Implements the apu.Mixer interface.
func (m *Mixer) AddDelta(cpuCycle uint64, delta int32) {
	if delta == 0 {
		return
	}

	fixed := ((cpuCycle * m.factor) + m.offset) >> preShift
	outIndex := m.avail + int(fixed>>fracBits)
	if outIndex > m.size+endFrameExtra {
		panic("mixer: add delta overflow")
	}

	phaseShift := uint(fracBits - phaseBits)
	phase := int((fixed >> phaseShift) & (phaseCount - 1))
	interpMask := uint64(deltaUnit - 1)
	interp := int32((fixed >> (phaseShift - deltaBits)) & interpMask)
	delta2 := (delta * interp) >> deltaBits
	delta1 := delta - delta2

	in0 := &blStep[phase]
	in1 := &blStep[phase+1]
	for k := 0; k < halfWidth; k++ {
		inc := int32(in0[k])*delta1 + int32(in1[k])*delta2
		m.buf[outIndex+k] += inc
	}

	rev := &blStep[phaseCount-phase]
	revPrev := &blStep[phaseCount-phase-1]
	for k := 0; k < halfWidth; k++ {
		idx := halfWidth - 1 - k
		inc := int32(rev[idx])*delta1 + int32(revPrev[idx])*delta2
		m.buf[outIndex+halfWidth+k] += inc
	}
}

// EndFrame makes clocks up to clockDuration available as output samples.
// Implements the apu.Mixer interface.
func (m *Mixer) EndFrame(clockDuration uint64) {
	off := clockDuration*m.factor + m.offset
	m.avail += int(off >> timeBits)
	m.offset = off & (timeUnit - 1)

	if m.avail > m.size {
		panic("mixer: end frame overflow")
	}
}

// ReadSamples drains up to len(out) samples into out, scaled to roughly
// [-1.0, 1.0], and returns the number produced.
func (m *Mixer) ReadSamples(out []float32) int {
	count := len(out)
	if count > m.avail {
		count = m.avail
	}
	if count == 0 {
		return 0
	}
	tmp := make([]int16, count)
	produced := m.ReadSamplesI16(tmp)
	for i := 0; i < produced; i++ {
		out[i] = float32(tmp[i]) / 32768.0
	}
	return produced
}

// ReadSamplesI16 drains up to len(out) samples as 16-bit PCM.
func (m *Mixer) ReadSamplesI16(out []int16) int {
	count := len(out)
	if count > m.avail {
		count = m.avail
	}
	if count == 0 {
		return 0
	}

	sum := m.integrator
	for i := 0; i < count; i++ {
		s := sum >> deltaBits
		sum += m.buf[i]
		s = clampToI16CStyle(s)
		out[i] = int16(s)
		sum -= s << (deltaBits - bassShift)
	}
	m.integrator = sum
	m.removeSamples(count)
	return count
}

func (m *Mixer) removeSamples(count int) {
	oldAvail := m.avail
	remain := oldAvail + bufExtra - count
	m.avail = oldAvail - count

	copy(m.buf[0:remain], m.buf[count:count+remain])
	for i := remain; i < remain+count; i++ {
		m.buf[i] = 0
	}
}

// State is the complete contents of the mixer's internal buffer, captured
// so a savestate restore resumes audio output without a click at the
// resume point instead of just silencing the integrator.
type State struct {
	Offset     uint64
	Avail      int
	Integrator int32
	Buf        []int32
}

// CaptureState snapshots the buffer. The returned Buf is a copy; mutating
// it afterward does not affect the mixer.
func (m *Mixer) CaptureState() State {
	buf := make([]int32, len(m.buf))
	copy(buf, m.buf)
	return State{Offset: m.offset, Avail: m.avail, Integrator: m.integrator, Buf: buf}
}

// Restore replaces the mixer's buffered deltas and filter state. The
// factor/size configured via New or SetRates is left untouched; len(s.Buf)
// must match the buffer this mixer was constructed with.
func (m *Mixer) Restore(s State) {
	m.offset = s.Offset
	m.avail = s.Avail
	m.integrator = s.Integrator
	copy(m.buf, s.Buf)
}

func computeFactor(clockRate, sampleRate float64) uint64 {
	exact := float64(timeUnit) * sampleRate / clockRate
	factor := uint64(exact)
	if float64(factor) < exact {
		factor++
	}
	return factor
}

// clampToI16CStyle matches blip_buf's CLAMP macro: if truncating to int16
// would change the value, fold it with (s>>16)^0x7FFF instead of
// saturating, which is what the reference implementation does.
func clampToI16CStyle(s int32) int32 {
	if int32(int16(s)) != s {
		return (s >> 16) ^ 0x7FFF
	}
	return s
}
