package savestate

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// compressBlock LZ4-compresses src and prepends its original length plus a
// one-byte encoding flag, mirroring lz4_flex's compress_prepend_size (the
// reference rewind history uses that exact framing). Incompressible input
// is stored raw rather than padded, since blip LZ4 block compression
// reports zero bytes written when it can't shrink the input.
func compressBlock(src []byte) []byte {
	bound := lz4.CompressBlockBound(len(src))
	dst := make([]byte, 5+bound)
	binary.LittleEndian.PutUint32(dst[0:4], uint32(len(src)))

	var table [1 << 16]int
	n, err := lz4.CompressBlock(src, dst[5:], table[:])
	if err != nil || n == 0 || n >= len(src) {
		dst = dst[:5+len(src)]
		dst[4] = 0
		copy(dst[5:], src)
		return dst
	}
	dst[4] = 1
	return dst[:5+n]
}

// decompressBlock is the inverse of compressBlock.
func decompressBlock(data []byte) ([]byte, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("savestate: truncated compressed block")
	}
	origLen := binary.LittleEndian.Uint32(data[0:4])
	flag := data[4]
	payload := data[5:]

	if flag == 0 {
		if uint32(len(payload)) != origLen {
			return nil, fmt.Errorf("savestate: raw block length mismatch")
		}
		out := make([]byte, origLen)
		copy(out, payload)
		return out, nil
	}

	out := make([]byte, origLen)
	n, err := lz4.UncompressBlock(payload, out)
	if err != nil {
		return nil, fmt.Errorf("savestate: lz4 decompress: %w", err)
	}
	if uint32(n) != origLen {
		return nil, fmt.Errorf("savestate: decompressed length mismatch: want %d got %d", origLen, n)
	}
	return out, nil
}
