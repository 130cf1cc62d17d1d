// Package framebuffer implements the NES's double-buffered output plane:
// the PPU writes (palette index, emphasis bits) into the back plane one
// pixel at a time, swaps planes once per frame, and a consumer (the
// graphics backend) reads the completed front plane, resolving colors
// through the palette table in whichever pixel format it needs.
package framebuffer

import (
	"sync"
	"sync/atomic"
)

const (
	Width  = 256
	Height = 240
)

// ColorFormat selects how Copy* methods encode resolved colors.
type ColorFormat int

const (
	FormatIndex ColorFormat = iota
	FormatRGB555
	FormatRGB565
	FormatRGB888
	FormatRGBA8888
	FormatBGRA8888
	FormatARGB8888
)

// plane holds one complete frame's worth of (index, emphasis) pairs.
type plane struct {
	index    [Width * Height]uint8
	emphasis [Width * Height]uint8
}

// Framebuffer is the swapchain the PPU renders into. WritePixel/EndFrame
// are called only from the emulation thread (the producer); BeginFrontCopy/
// EndFrontCopy/Copy* may be called concurrently from a consumer thread.
type Framebuffer struct {
	mu       sync.RWMutex
	planes   [2]plane
	frontIdx int // guarded by mu

	backX, backY int // unused: no method reads or writes them

	seq uint64 // atomic; bumped once per completed frame

	palette [64]uint32 // RGB888, 0x00RRGGBB, NTSC 2C02 palette
}

// New creates a framebuffer with the standard NTSC 2C02 palette loaded.
func New() *Framebuffer {
	fb := &Framebuffer{}
	fb.palette = defaultPalette
	return fb
}

// SetPalette installs a custom 64-entry RGB888 palette (0x00RRGGBB per
// entry), e.g. for a PAL or Dendy-accurate table. Index 0 is not special —
// callers pick the palette kind by providing the whole table.
func (fb *Framebuffer) SetPalette(p [64]uint32) { fb.palette = p }

// DefaultPalette returns the standard NTSC 2C02 table New installs, so a
// caller that has switched away from it can name it explicitly again
// without keeping its own copy.
func DefaultPalette() [64]uint32 { return defaultPalette }

// WritePixel stores one pixel into the back plane. x/y are NES screen
// coordinates in [0,256)x[0,240); out-of-range coordinates are ignored
// rather than panicking, since a mis-timed PPU dot should not crash the
// emulator.
func (fb *Framebuffer) WritePixel(x, y int, index uint8, emphasis uint8) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	back := &fb.planes[1-fb.frontIdxUnsafe()]
	i := y*Width + x
	back.index[i] = index
	back.emphasis[i] = emphasis
}

// frontIdxUnsafe reads frontIdx without locking: safe here because only the
// producer goroutine ever calls WritePixel/EndFrame, and frontIdx only
// changes from within EndFrame (also producer-only), never concurrently
// with a write to the back plane.
func (fb *Framebuffer) frontIdxUnsafe() int { return fb.frontIdx }

// EndFrame publishes the back plane as the new front plane and bumps the
// sequence counter consumers can poll to detect a new frame.
func (fb *Framebuffer) EndFrame() {
	fb.mu.Lock()
	fb.frontIdx = 1 - fb.frontIdx
	fb.mu.Unlock()
	atomic.AddUint64(&fb.seq, 1)
}

// Sequence returns the number of frames published so far.
func (fb *Framebuffer) Sequence() uint64 { return atomic.LoadUint64(&fb.seq) }

// frontSnapshot is a read-locked handle on the current front plane,
// returned by BeginFrontCopy and released by EndFrontCopy.
type frontSnapshot struct {
	fb *Framebuffer
	p  *plane
}

// BeginFrontCopy takes a shared read lock on the front plane and returns a
// handle a consumer can repeatedly Copy* from; the caller must call
// EndFrontCopy exactly once when done.
func (fb *Framebuffer) BeginFrontCopy() *frontSnapshot {
	fb.mu.RLock()
	return &frontSnapshot{fb: fb, p: &fb.planes[fb.frontIdx]}
}

// EndFrontCopy releases the lock taken by BeginFrontCopy.
func (s *frontSnapshot) EndFrontCopy() { s.fb.mu.RUnlock() }

// CopyIndex copies the raw (index, emphasis) planes verbatim; the consumer
// performs color resolution itself.
func (s *frontSnapshot) CopyIndex(dstIndex, dstEmphasis []uint8) {
	copy(dstIndex, s.p.index[:])
	copy(dstEmphasis, s.p.emphasis[:])
}

// CopyRGB555 resolves every pixel and packs it 5-5-5 little-endian.
func (s *frontSnapshot) CopyRGB555(dst []uint16) {
	for i := range s.p.index {
		r, g, b := s.fb.resolveRGB8(s.p.index[i], s.p.emphasis[i])
		dst[i] = (uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3))
	}
}

// CopyRGB565 resolves every pixel and packs it 5-6-5 little-endian.
func (s *frontSnapshot) CopyRGB565(dst []uint16) {
	for i := range s.p.index {
		r, g, b := s.fb.resolveRGB8(s.p.index[i], s.p.emphasis[i])
		dst[i] = (uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
	}
}

// CopyRGB888 packs each pixel as 0x00RRGGBB.
func (s *frontSnapshot) CopyRGB888(dst []uint32) {
	for i := range s.p.index {
		r, g, b := s.fb.resolveRGB8(s.p.index[i], s.p.emphasis[i])
		dst[i] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
}

// CopyRGBA8888 packs each pixel as R,G,B,A bytes with alpha fixed at 0xFF.
func (s *frontSnapshot) CopyRGBA8888(dst []byte) {
	for i := range s.p.index {
		r, g, b := s.fb.resolveRGB8(s.p.index[i], s.p.emphasis[i])
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = r, g, b, 0xFF
	}
}

// CopyBGRA8888 packs each pixel as B,G,R,A bytes with alpha fixed at 0xFF.
func (s *frontSnapshot) CopyBGRA8888(dst []byte) {
	for i := range s.p.index {
		r, g, b := s.fb.resolveRGB8(s.p.index[i], s.p.emphasis[i])
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = b, g, r, 0xFF
	}
}

// CopyARGB8888 packs each pixel as A,R,G,B bytes with alpha fixed at 0xFF.
func (s *frontSnapshot) CopyARGB8888(dst []byte) {
	for i := range s.p.index {
		r, g, b := s.fb.resolveRGB8(s.p.index[i], s.p.emphasis[i])
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = 0xFF, r, g, b
	}
}

// resolveRGB8 looks up the palette entry and scales it by the emphasis
// bits latched for that pixel. Emphasis bit 0 is red, bit 1 green, bit 2
// blue; an active bit dims the *other two* channels by ~25%, and stacked
// bits stack multiplicatively.
func (fb *Framebuffer) resolveRGB8(index uint8, emphasis uint8) (r, g, b uint8) {
	c := fb.palette[index&0x3F]
	r = uint8(c >> 16)
	g = uint8(c >> 8)
	b = uint8(c)

	if emphasis&0x1 != 0 { // emphasize red: dim green/blue
		g = dim(g)
		b = dim(b)
	}
	if emphasis&0x2 != 0 { // emphasize green: dim red/blue
		r = dim(r)
		b = dim(b)
	}
	if emphasis&0x4 != 0 { // emphasize blue: dim red/green
		r = dim(r)
		g = dim(g)
	}
	return r, g, b
}

func dim(c uint8) uint8 {
	return uint8(uint16(c) * 3 / 4)
}

// defaultPalette is the standard NTSC 2C02 64-entry RGB table.
var defaultPalette = [64]uint32{
	0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
	0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
	0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
	0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
	0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
	0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
	0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
	0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
}
