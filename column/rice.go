package column

import (
	"github.com/packr/packr/errs"
	"github.com/packr/packr/internal/bitio"
)

// riceK selects the Rice parameter k for a set of deltas per §4.5:
// k = clamp(ceil(log2(max|delta|)) - 2, 0, 7). An all-zero delta set
// uses k = 0.
func riceK(deltas []int64) uint {
	var maxAbs uint64
	for _, d := range deltas {
		a := uint64(d)
		if d < 0 {
			a = uint64(-d)
		}
		if a > maxAbs {
			maxAbs = a
		}
	}

	if maxAbs == 0 {
		return 0
	}

	// bits = ceil(log2(maxAbs)), the bit length of maxAbs-1.
	bits := 0
	for v := maxAbs - 1; v > 0; v >>= 1 {
		bits++
	}

	k := bits - 2
	if k < 0 {
		k = 0
	}
	if k > 7 {
		k = 7
	}

	return uint(k)
}

// newRiceWriter creates a fresh bit writer for a column's Rice-coded payload.
func newRiceWriter() *bitio.BitWriter {
	return bitio.NewBitWriter(nil)
}

// riceEncode writes deltas as Rice codes with parameter k: each zigzag-mapped
// value is split into quotient (q = v >> k, unary: q ones then a zero
// terminator) and remainder (k-bit binary, low bits first as written by
// BitWriter.WriteBits).
func riceEncode(bw *bitio.BitWriter, deltas []int64, k uint) {
	for _, d := range deltas {
		v := bitio.ZigZagEncode(d)
		q := int(v >> k)
		bw.WriteUnary(q)
		if k > 0 {
			rem := v & ((1 << k) - 1)
			bw.WriteBits(rem, k)
		}
	}
}

// riceDecode reads n Rice codes with parameter k back into signed deltas.
func riceDecode(br *bitio.BitReader, n int, k uint) ([]int64, error) {
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		q, ok := br.ReadUnary()
		if !ok {
			return nil, errs.ErrTruncatedInput
		}

		var rem uint64
		if k > 0 {
			rem, ok = br.ReadBits(k)
			if !ok {
				return nil, errs.ErrTruncatedInput
			}
		}

		v := (uint64(q) << k) | rem
		out[i] = bitio.ZigZagDecode(v)
	}

	return out, nil
}
