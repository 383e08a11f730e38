package column

import (
	"github.com/packr/packr/internal/bitio"
	"github.com/packr/packr/token"
)

// Strategy identifies how one column's values are encoded within an
// ULTRA_BATCH block, per spec §4.5.
type Strategy uint8

const (
	// StrategyPlain means the column carries no special compression: each
	// row's value is written with the ordinary scalar token ladder
	// (dictionary refs for strings/MACs, NEW_* for first occurrences,
	// plain INT/FLOAT32 otherwise). This is the fallback for TypeMixed and
	// TypeNull columns, for float columns that also hold int rows, and for
	// string/bool/binary columns where neither RLE nor MFV is cheaper.
	StrategyPlain Strategy = iota
	StrategyConstant
	StrategyDelta
	StrategyRLE
	StrategyMFV
)

// DeltaForm is the sub-strategy chosen for a StrategyDelta column.
type DeltaForm uint8

const (
	DeltaFormNone DeltaForm = iota
	DeltaFormBitpack
	DeltaFormRice
	DeltaFormLadder
)

// Column flag bits (spec §4.5). MFV and the plain fallback share the "no
// bit set" flags value and are told apart structurally instead: an MFV
// column body leads with the MFV_COLUMN token, a plain column body does not.
const (
	FlagConstant byte = 0x01
	FlagDelta    byte = 0x02
	FlagRLE      byte = 0x04
	FlagHasNulls byte = 0x08
)

// selectNumericStrategy chooses among StrategyConstant and the StrategyDelta
// sub-forms for a column of quantized integer values (raw ints, or FLOAT32
// fixed-point units — the caller has already done any quantization).
func selectNumericStrategy(values []int64) (Strategy, DeltaForm, []int64, uint) {
	if allEqual(values) {
		return StrategyConstant, DeltaFormNone, nil, 0
	}

	deltas := make([]int64, len(values))
	deltas[0] = values[0]
	for i := 1; i < len(values); i++ {
		deltas[i] = values[i] - values[i-1]
	}
	rest := deltas[1:]

	if bitpackFits(rest) {
		bitpackBytes := (len(rest) + 1) / 2
		if ladderCost(rest) < int(0.8*float64(bitpackBytes)) {
			return StrategyDelta, DeltaFormLadder, deltas, 0
		}

		return StrategyDelta, DeltaFormBitpack, deltas, 0
	}

	k := riceK(rest)
	if riceWins(rest, k) {
		return StrategyDelta, DeltaFormRice, deltas, k
	}

	return StrategyDelta, DeltaFormLadder, deltas, 0
}

// riceWins reports whether RICE_COLUMN applies per §4.5: every delta's
// zigzag magnitude under 1024, and the resulting Rice-coded bit length under
// 1.5 bytes (12 bits) per delta on average.
func riceWins(deltas []int64, k uint) bool {
	if len(deltas) == 0 {
		return true
	}

	var maxAbs uint64
	totalBits := 0
	for _, d := range deltas {
		z := bitio.ZigZagEncode(d)
		if z > maxAbs {
			maxAbs = z
		}
		totalBits += int(z>>k) + 1 + int(k)
	}

	if maxAbs >= 1024 {
		return false
	}

	return float64(totalBits) < 12*float64(len(deltas))
}

// ladderCost estimates the §4.4 ladder fallback's byte length (with the
// §4.5 zero-run RLE optimization applied), by actually running the encoder
// over a scratch writer. Used only at strategy-selection time to compare
// against the bitpack cost.
func ladderCost(deltas []int64) int {
	w := token.NewWriter()
	defer w.Finish()

	encodeLadderDeltas(w, deltas)

	return len(w.Bytes())
}

func allEqual(values []int64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] != values[0] {
			return false
		}
	}

	return true
}

// selectStringStrategy chooses among StrategyConstant, StrategyRLE,
// StrategyMFV and StrategyPlain for a column of comparable string keys
// (already rendered, e.g. via a stable textual form of each value), per
// §4.5's "MFV chosen whenever it outperforms the type's default strategy":
// RLE and MFV costs are estimated in token-emission units and the cheapest
// of the three (RLE, MFV, Plain) wins.
func selectStringStrategy(keys []string) (Strategy, int, []int) {
	n := len(keys)

	allSame := true
	for i := 1; i < n; i++ {
		if keys[i] != keys[0] {
			allSame = false

			break
		}
	}
	if allSame {
		return StrategyConstant, 0, nil
	}

	runs := countRuns(keys)
	rleCost := runs + countRepeatingRuns(keys)
	plainCost := n

	candidate, _, mfvOK := mfvQualifies(keys)
	mfvCost := n // disqualified unless mfvOK, so it never wins the comparison below
	var exceptions []int
	if mfvOK {
		exceptions = make([]int, 0, n)
		for i, k := range keys {
			if k != keys[candidate] {
				exceptions = append(exceptions, i)
			}
		}
		mfvCost = 1 + (n+7)/8 + len(exceptions)
	}

	switch {
	case mfvOK && mfvCost <= rleCost && mfvCost <= plainCost:
		return StrategyMFV, candidate, exceptions
	case rleCost < plainCost:
		return StrategyRLE, 0, nil
	default:
		return StrategyPlain, 0, nil
	}
}

func countRuns(keys []string) int {
	if len(keys) == 0 {
		return 0
	}

	runs := 1
	for i := 1; i < len(keys); i++ {
		if keys[i] != keys[i-1] {
			runs++
		}
	}

	return runs
}

// countRepeatingRuns counts runs of length > 1, each of which costs one
// extra RLE_REPEAT token on top of the run's single value emission.
func countRepeatingRuns(keys []string) int {
	repeating := 0
	i := 0
	for i < len(keys) {
		j := i + 1
		for j < len(keys) && keys[j] == keys[i] {
			j++
		}
		if j-i > 1 {
			repeating++
		}
		i = j
	}

	return repeating
}
