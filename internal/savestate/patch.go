package savestate

import (
	"encoding/binary"
	"fmt"
)

// buildReversePatch builds a patch that reconstructs prev from cur:
//
//	[prev_len u32 LE][cur_len u32 LE][xor_prefix of min(prev_len,cur_len) bytes][prev_tail of max(0, prev_len-cur_len) bytes]
//
// Ported from the reference rewind history's reverse-patch format.
func buildReversePatch(prev, cur []byte) []byte {
	prevLen, curLen := len(prev), len(cur)
	minLen := prevLen
	if curLen < minLen {
		minLen = curLen
	}

	patch := make([]byte, 8+minLen+max(0, prevLen-minLen))
	binary.LittleEndian.PutUint32(patch[0:4], uint32(prevLen))
	binary.LittleEndian.PutUint32(patch[4:8], uint32(curLen))
	for i := 0; i < minLen; i++ {
		patch[8+i] = prev[i] ^ cur[i]
	}
	if prevLen > minLen {
		copy(patch[8+minLen:], prev[minLen:])
	}
	return patch
}

// applyReversePatch reconstructs prev from cur and a patch built by
// buildReversePatch. cur is consumed (XORed in place is not safe since its
// length may change), so the caller's current-bytes buffer should be
// replaced with the returned slice.
func applyReversePatch(cur []byte, patch []byte) ([]byte, error) {
	if len(patch) < 8 {
		return nil, fmt.Errorf("savestate: patch shorter than header")
	}
	prevLen := int(binary.LittleEndian.Uint32(patch[0:4]))
	curLen := int(binary.LittleEndian.Uint32(patch[4:8]))
	if curLen != len(cur) {
		return nil, fmt.Errorf("savestate: patch cur_len %d does not match current bytes %d", curLen, len(cur))
	}

	minLen := prevLen
	if curLen < minLen {
		minLen = curLen
	}
	xorPrefixEnd := 8 + minLen
	if len(patch) < xorPrefixEnd {
		return nil, fmt.Errorf("savestate: patch truncated in xor prefix")
	}
	tailLen := prevLen - minLen
	if tailLen < 0 {
		tailLen = 0
	}
	if len(patch) != xorPrefixEnd+tailLen {
		return nil, fmt.Errorf("savestate: patch has unexpected trailing length")
	}

	prev := make([]byte, prevLen)
	for i := 0; i < minLen; i++ {
		prev[i] = cur[i] ^ patch[8+i]
	}
	if prevLen > minLen {
		copy(prev[minLen:], patch[xorPrefixEnd:])
	}
	return prev, nil
}
