package cartridge

import "testing"

func buildINES(mapperLow, mapperHigh, flags6extra uint8, prgUnits, chrUnits uint8) []byte {
	data := make([]byte, 16)
	copy(data[0:4], "NES\x1A")
	data[4] = prgUnits
	data[5] = chrUnits
	data[6] = (mapperLow << 4) | flags6extra
	data[7] = mapperHigh << 4
	return data
}

func TestParseHeader_RejectsBadMagic(t *testing.T) {
	data := make([]byte, 16)
	copy(data[0:4], "BAD\x00")
	if _, err := parseHeader(data); err != ErrBadMagic {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
}

func TestParseHeader_RejectsTooShort(t *testing.T) {
	if _, err := parseHeader(make([]byte, 10)); err != ErrTooShort {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestParseHeader_RejectsZeroPRG(t *testing.T) {
	data := buildINES(0, 0, 0, 0, 1)
	if _, err := parseHeader(data); err != ErrZeroPRGSize {
		t.Errorf("expected ErrZeroPRGSize, got %v", err)
	}
}

func TestParseHeader_MapperIDAssembly(t *testing.T) {
	// Mapper 4 (MMC3): low nibble 4, high nibble 0.
	data := buildINES(4, 0, 0, 1, 1)
	hdr, err := parseHeader(data)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if hdr.MapperID != 4 {
		t.Errorf("expected mapper ID 4, got %d", hdr.MapperID)
	}

	// Mapper 66 (GxROM): low nibble 2, high nibble 4 -> 0x42 = 66.
	data = buildINES(0x2, 0x4, 0, 1, 1)
	hdr, err = parseHeader(data)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if hdr.MapperID != 66 {
		t.Errorf("expected mapper ID 66, got %d", hdr.MapperID)
	}
}

func TestParseHeader_MirroringAndBattery(t *testing.T) {
	// Flags6 bit0 = vertical mirroring, bit1 = battery.
	data := buildINES(0, 0, 0x03, 1, 1)
	hdr, err := parseHeader(data)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if hdr.Mirroring != MirrorVertical {
		t.Errorf("expected vertical mirroring, got %v", hdr.Mirroring)
	}
	if !hdr.HasBattery {
		t.Error("expected HasBattery true")
	}

	// Flags6 bit3 forces four-screen regardless of bit0.
	data = buildINES(0, 0, 0x09, 1, 1)
	hdr, err = parseHeader(data)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if hdr.Mirroring != MirrorFourScreen {
		t.Errorf("expected four-screen mirroring, got %v", hdr.Mirroring)
	}
}

func TestParseHeader_PRGCHRSizes(t *testing.T) {
	data := buildINES(0, 0, 0, 2, 1) // 2x16KiB PRG, 1x8KiB CHR
	hdr, err := parseHeader(data)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if hdr.PRGROMSize != 2*16384 {
		t.Errorf("expected PRG size %d, got %d", 2*16384, hdr.PRGROMSize)
	}
	if hdr.CHRROMSize != 8192 {
		t.Errorf("expected CHR size %d, got %d", 8192, hdr.CHRROMSize)
	}
}

func TestLoadFromBytes_NROM(t *testing.T) {
	prg := make([]byte, 16384)
	prg[0] = 0xAB
	chr := make([]byte, 8192)
	data := append(buildINES(0, 0, 0, 1, 1), append(prg, chr...)...)

	cart, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	value, ok := cart.CPURead(0x8000)
	if !ok || value != 0xAB {
		t.Errorf("expected (0xAB, true) at 0x8000, got (0x%02X, %v)", value, ok)
	}
	// 16KiB NROM mirrors into $C000 too.
	value, ok = cart.CPURead(0xC000)
	if !ok || value != 0xAB {
		t.Errorf("expected mirrored 0xAB at 0xC000, got (0x%02X, %v)", value, ok)
	}
}

func TestLoadFromBytes_TruncatedPRGFails(t *testing.T) {
	data := buildINES(0, 0, 0, 2, 0) // claims 32KiB PRG but supplies none
	if _, err := LoadFromBytes(data); err != ErrTooShort {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestLoadFromBytes_UnsupportedMapper(t *testing.T) {
	prg := make([]byte, 16384)
	data := append(buildINES(0xF, 0xF, 0, 1, 0), prg...) // mapper 255
	_, err := LoadFromBytes(data)
	var unsupported *ErrUnsupportedMapper
	if err == nil {
		t.Fatal("expected an error for unsupported mapper")
	}
	if e, ok := err.(*ErrUnsupportedMapper); ok {
		unsupported = e
	}
	if unsupported == nil || unsupported.ID != 255 {
		t.Errorf("expected ErrUnsupportedMapper{255}, got %v", err)
	}
}
