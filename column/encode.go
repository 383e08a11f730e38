package column

import (
	"github.com/packr/packr/dict"
	"github.com/packr/packr/document"
	"github.com/packr/packr/internal/pool"
	"github.com/packr/packr/scalar"
	"github.com/packr/packr/token"
)

// Dicts bundles the three dictionary instances a batch needs to reference
// field names and string/MAC values, mirroring the trio threaded through the
// rest of the codec.
type Dicts struct {
	Fields  *dict.Dict
	Strings *dict.Dict
	Macs    *dict.Dict
}

// EncodeBatch writes rows (each a document.Object) as one ULTRA_BATCH block:
// the batch token, row count, discovered schema, and each column's chosen
// strategy payload in turn.
//
// ok is false if rows aren't uniformly objects, in which case the caller
// should fall back to encoding the array element-by-element instead of
// batching it.
func EncodeBatch(w *token.Writer, d Dicts, rows []document.Value) bool {
	return encodeBatchTag(w, d, rows, token.UltraBatch)
}

// EncodeBatchPartial is EncodeBatch but tagged BATCH_PARTIAL instead of
// ULTRA_BATCH, for one chunk of the streaming scheduler of §4.6. The payload
// shape is identical; only the outer tag differs, so the streaming scheduler
// can recognize chunk boundaries while DecodeBatch stays tag-agnostic.
func EncodeBatchPartial(w *token.Writer, d Dicts, rows []document.Value) bool {
	return encodeBatchTag(w, d, rows, token.BatchPartial)
}

func encodeBatchTag(w *token.Writer, d Dicts, rows []document.Value, tag token.Tag) bool {
	schema, ok := Discover(rows)
	if !ok {
		return false
	}

	w.Emit(tag)
	w.AppendVarint(uint64(len(rows)))
	w.AppendVarint(uint64(len(schema.Columns)))

	for _, col := range schema.Columns {
		encodeColumn(w, d, rows, col)
	}

	return true
}

func encodeColumn(w *token.Writer, d Dicts, rows []document.Value, col Column) {
	scalar.WriteFieldName(w, d.Fields, col.Name)

	values := ExtractColumn(rows, col.Name)

	presentIdx := make([]int, 0, len(rows))
	validity := make([]bool, len(rows))
	for i, v := range values {
		if v.Kind != document.Null {
			presentIdx = append(presentIdx, i)
			validity[i] = true
		}
	}

	flags := byte(0)
	if col.HasNulls {
		flags |= FlagHasNulls
	}

	present := make([]document.Value, len(presentIdx))
	for i, idx := range presentIdx {
		present[i] = values[idx]
	}

	if len(present) == 0 {
		w.AppendBytes([]byte{byte(col.Type), flags})
		if col.HasNulls {
			w.AppendBytes(packBitmap(validity))
		}

		return
	}

	strategy, form, deltas, k, mfvIdx, mfvExceptions := chooseColumnStrategy(col.Type, present)

	switch strategy {
	case StrategyConstant:
		flags |= FlagConstant
	case StrategyDelta:
		flags |= FlagDelta
	case StrategyRLE:
		flags |= FlagRLE
	}
	// MFV and Plain both leave flags at its HAS_NULLS-only value; an MFV
	// column body is told apart by the MFV_COLUMN token leading it.

	w.AppendBytes([]byte{byte(col.Type), flags})

	if col.HasNulls {
		w.AppendBytes(packBitmap(validity))
	}

	switch strategy {
	case StrategyConstant:
		encodeScalar(w, d, present[0])
	case StrategyDelta:
		encodeDeltaColumn(w, form, deltas, k, present, col.Type)
	case StrategyRLE:
		encodeRLEColumn(w, d, present)
	case StrategyMFV:
		w.Emit(token.MFVColumn)
		encodeMFVColumn(w, d, present, mfvIdx, mfvExceptions)
	case StrategyPlain:
		for _, v := range present {
			encodeScalar(w, d, v)
		}
	}
}

// chooseColumnStrategy dispatches to the numeric or string strategy
// selectors depending on the widened column type. Bool and binary columns
// use string-shaped selection over a rendered key (values already compare
// equal/unequal the same way their keys do).
func chooseColumnStrategy(t Type, present []document.Value) (strategy Strategy, form DeltaForm, deltas []int64, k uint, mfvIdx int, mfvExceptions []int) {
	switch t {
	case TypeInt:
		vals, release := pool.GetInt64Slice(len(present))
		defer release()
		for i, v := range present {
			vals[i] = v.IntV
		}
		strategy, form, deltas, k = selectNumericStrategy(vals)

		return strategy, form, deltas, k, 0, nil
	case TypeFloat:
		// A float column that also holds int rows is written value by value,
		// so each row keeps its own kind and value.
		for _, v := range present {
			if v.Kind != document.Float {
				return StrategyPlain, DeltaFormNone, nil, 0, 0, nil
			}
		}
		vals, release := pool.GetInt64Slice(len(present))
		defer release()
		for i, v := range present {
			vals[i] = int64(scalar.QuantizeFloat32(v.FloatV))
		}
		strategy, form, deltas, k = selectNumericStrategy(vals)

		return strategy, form, deltas, k, 0, nil
	case TypeMixed, TypeNull:
		return StrategyPlain, DeltaFormNone, nil, 0, 0, nil
	default:
		keys := make([]string, len(present))
		for i, v := range present {
			keys[i] = renderKey(v)
		}
		strategy, mfvIdx, mfvExceptions = selectStringStrategy(keys)

		return strategy, DeltaFormNone, nil, 0, mfvIdx, mfvExceptions
	}
}

func renderKey(v document.Value) string {
	switch v.Kind {
	case document.String:
		return "s:" + v.StrV
	case document.Bool:
		if v.BoolV {
			return "b:1"
		}

		return "b:0"
	case document.Binary:
		return "x:" + string(v.BinV)
	default:
		return ""
	}
}

func encodeScalar(w *token.Writer, d Dicts, v document.Value) {
	switch v.Kind {
	case document.Null:
		w.NullTok()
	case document.Bool:
		w.Bool(v.BoolV)
	case document.Int:
		w.Int(v.IntV)
	case document.Float:
		scalar.EncodeFloat32(w, v.FloatV)
	case document.Binary:
		scalar.EncodeBinary(w, v.BinV)
	case document.String:
		scalar.WriteStringValue(w, d.Strings, d.Macs, v.StrV)
	}
}

// encodeDeltaColumn writes a DELTA column body: the base value token, then
// one of the three sub-forms of §4.5, each led by its own wire token (or, for
// the ladder fallback, no wrapping token at all — just the §4.4 delta tokens
// themselves, with a run-length optimization for long zero runs).
func encodeDeltaColumn(w *token.Writer, form DeltaForm, deltas []int64, k uint, present []document.Value, t Type) {
	writeAbsolute(w, present[0], t)

	rest := deltas[1:]

	switch form {
	case DeltaFormBitpack:
		w.Emit(token.BitpackCol)
		w.AppendVarint(uint64(len(rest)))
		w.AppendBytes(bitpackEncode(rest))
	case DeltaFormRice:
		w.Emit(token.RiceColumn)
		w.AppendVarint(uint64(len(rest)))
		w.AppendBytes([]byte{byte(k)})
		bw := newRiceWriter()
		riceEncode(bw, rest, k)
		w.AppendBytes(bw.Bytes())
	case DeltaFormLadder:
		encodeLadderDeltas(w, rest)
	}
}

// encodeLadderDeltas writes the §4.4 delta ladder token for each delta, with
// the §4.5 optimization that a run of four or more zero deltas is replaced
// entirely by a single RLE_REPEAT carrying the run length (no per-delta
// tokens within the run, unlike the RLE column strategy's "value, then
// RLE_REPEAT(run-1) more" shape — here RLE_REPEAT stands in place of the
// whole run, so its payload is the full count).
func encodeLadderDeltas(w *token.Writer, deltas []int64) {
	i := 0
	for i < len(deltas) {
		if deltas[i] == 0 {
			j := i
			for j < len(deltas) && deltas[j] == 0 {
				j++
			}
			if run := j - i; run >= 4 {
				w.Emit(token.RLERepeat)
				w.AppendVarint(uint64(run))
				i = j

				continue
			}
		}
		ladderDelta(w, deltas[i])
		i++
	}
}

func writeAbsolute(w *token.Writer, v document.Value, t Type) {
	if t == TypeFloat {
		w.Float32(scalar.QuantizeFloat32(v.FloatV))

		return
	}

	w.Int(v.IntV)
}

// ladderDelta writes a bare delta token (no field-memory involvement — batch
// columns keep their own running base, tracked implicitly by the decoder
// re-summing as it reads).
func ladderDelta(w *token.Writer, delta int64) {
	switch {
	case delta == 0:
		w.DeltaZeroTok()
	case delta == 1:
		w.DeltaOneTok()
	case delta == -1:
		w.DeltaNegOneTok()
	case delta >= -8 && delta <= 7:
		w.DeltaSmall(int(delta))
	case delta >= -64 && delta <= 63:
		w.DeltaMedium(int(delta))
	default:
		w.DeltaLarge(delta)
	}
}

// encodeRLEColumn writes each distinct run's value once, followed by
// RLE_REPEAT(run-1) whenever the run repeats (spec §4.5's RLE strategy —
// there is no leading run-count; the decoder reads values until it has
// reconstructed presentCount of them).
func encodeRLEColumn(w *token.Writer, d Dicts, present []document.Value) {
	i := 0
	for i < len(present) {
		j := i + 1
		for j < len(present) && sameValue(present[j], present[i]) {
			j++
		}
		encodeScalar(w, d, present[i])
		if run := j - i; run > 1 {
			w.RLERepeatTok(run - 1)
		}
		i = j
	}
}

func sameValue(a, b document.Value) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case document.Null:
		return true
	case document.Bool:
		return a.BoolV == b.BoolV
	case document.Int:
		return a.IntV == b.IntV
	case document.Float:
		return a.FloatV == b.FloatV
	case document.String:
		return a.StrV == b.StrV
	case document.Binary:
		return string(a.BinV) == string(b.BinV)
	default:
		return false
	}
}

// encodeMFVColumn writes the MFV candidate, a per-row exception bitmap
// (1 = exception, 0 = mode), then the exception values in row order (spec
// §4.5; the MFV_COLUMN token itself is emitted by the caller).
func encodeMFVColumn(w *token.Writer, d Dicts, present []document.Value, mfvIdx int, exceptions []int) {
	encodeScalar(w, d, present[mfvIdx])

	isException := make([]bool, len(present))
	for _, idx := range exceptions {
		isException[idx] = true
	}
	w.AppendBytes(packBitmap(isException))

	for _, idx := range exceptions {
		encodeScalar(w, d, present[idx])
	}
}

// packBitmap packs one bit per entry, LSB-first per byte (spec §4.5's
// HAS_NULLS bitmap wording; used for both the validity bitmap and the MFV
// exception bitmap for consistency).
func packBitmap(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, v := range bits {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}

	return out
}

func unpackBitmap(data []byte, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = data[i/8]&(1<<uint(i%8)) != 0
	}

	return out
}
