package column

import "github.com/packr/packr/errs"

// bitpackBias shifts a nibble-range delta (-8..7) into an unsigned nibble
// (0..15) per §4.5's BITPACK_COL sub-strategy.
const bitpackBias = 8

// bitpackFits reports whether every delta fits in the signed nibble range
// [-8, 7] that BITPACK_COL packs two-per-byte.
func bitpackFits(deltas []int64) bool {
	for _, d := range deltas {
		if d < -8 || d > 7 {
			return false
		}
	}

	return true
}

// bitpackEncode packs deltas two to a byte, high nibble first. An odd final
// count leaves the low nibble of the last byte as the bias value (8, i.e.
// delta 0) per §4.5.
func bitpackEncode(deltas []int64) []byte {
	out := make([]byte, 0, (len(deltas)+1)/2)

	for i := 0; i < len(deltas); i += 2 {
		hi := byte(deltas[i] + bitpackBias)
		lo := byte(bitpackBias)
		if i+1 < len(deltas) {
			lo = byte(deltas[i+1] + bitpackBias)
		}
		out = append(out, (hi<<4)|lo)
	}

	return out
}

// bitpackDecode unpacks n deltas from packed nibble bytes.
func bitpackDecode(data []byte, n int) ([]int64, error) {
	want := (n + 1) / 2
	if len(data) < want {
		return nil, errs.ErrTruncatedInput
	}

	out := make([]int64, n)
	for i := 0; i < n; i++ {
		b := data[i/2]
		var nib byte
		if i%2 == 0 {
			nib = b >> 4
		} else {
			nib = b & 0x0F
		}
		out[i] = int64(nib) - bitpackBias
	}

	return out, nil
}
