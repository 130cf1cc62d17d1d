package runtime

import "nesgo/internal/framebuffer"

// PaletteKind names one of the 64-entry RGB tables a consumer can select by
// name instead of supplying raw color data via SetPalette.
//
// Only PaletteNesdevNtsc resolves to real, measured color data: that table
// is the one internal/framebuffer ships by default. The other five kinds
// are accepted (SetPaletteKind never errors on them) but currently alias to
// the same table, because the reference RGB data for Mesen's own 2C02
// table, the FBX composite-direct table, the Sony CXA2025AS decoder table,
// the PAL 2C07 table, and a raw-linear-light table all live in a module
// (nesium-core's ppu/palette.rs) that was not included in this retrieval
// pack — inventing the numbers would mean fabricating calibration data, not
// porting it. SetPalette remains the fully general path for installing any
// of these exactly once real data is available.
type PaletteKind uint8

const (
	PaletteNesdevNtsc PaletteKind = iota
	PaletteMesen2C02
	PaletteFbxCompositeDirect
	PaletteSonyCxa2025AsUs
	PalettePal2c07
	PaletteRawLinear
)

func resolvePaletteKind(_ PaletteKind) [64]uint32 {
	return framebuffer.DefaultPalette()
}
