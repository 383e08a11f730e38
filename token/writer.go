package token

import (
	"math"

	"github.com/packr/packr/internal/bitio"
	"github.com/packr/packr/internal/pool"
)

// Writer accumulates the body byte stream and tracks the symbol count carried
// in the frame header (spec §3 "varint symbol count"). Every call to Emit (or
// one of the per-token convenience methods) counts as exactly one symbol,
// regardless of how many payload bytes follow it.
type Writer struct {
	buf         *pool.ByteBuffer
	symbolCount uint64
}

// NewWriter creates a Writer backed by a pooled buffer.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetBuffer()}
}

// Finish returns the writer's buffer to the pool. The Writer must not be used
// afterward.
func (w *Writer) Finish() {
	if w.buf != nil {
		pool.PutBuffer(w.buf)
		w.buf = nil
	}
}

// Bytes returns the accumulated body bytes. The returned slice is valid until
// the next write.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// SymbolCount returns the number of tokens emitted so far.
func (w *Writer) SymbolCount() uint64 {
	return w.symbolCount
}

// Emit appends a single tag byte and counts it as one symbol. Use the
// AppendXxx helpers afterward to add that token's payload, which does not
// count as additional symbols.
func (w *Writer) Emit(tag Tag) {
	w.buf.MustWrite([]byte{tag})
	w.symbolCount++
}

// AppendVarint appends a LEB128 varint payload continuing the current token.
func (w *Writer) AppendVarint(v uint64) {
	w.buf.B = bitio.AppendUvarint(w.buf.B, v)
}

// AppendZigZagVarint appends a zigzag+varint signed payload.
func (w *Writer) AppendZigZagVarint(v int64) {
	w.buf.B = bitio.AppendZigZagVarint(w.buf.B, v)
}

// AppendBytes appends raw bytes with no length prefix.
func (w *Writer) AppendBytes(b []byte) {
	w.buf.MustWrite(b)
}

// AppendU16LE appends a little-endian uint16.
func (w *Writer) AppendU16LE(v uint16) {
	w.buf.MustWrite([]byte{byte(v), byte(v >> 8)})
}

// AppendU32LE appends a little-endian uint32.
func (w *Writer) AppendU32LE(v uint32) {
	w.buf.MustWrite([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// AppendU64LE appends a little-endian uint64.
func (w *Writer) AppendU64LE(v uint64) {
	w.buf.MustWrite([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
}

// --- per-token convenience wrappers -----------------------------------------

// FieldRef emits a field-dictionary reference token.
func (w *Writer) FieldRef(index int) {
	w.Emit(FieldDictBase + Tag(index))
}

// StringRef emits a string-dictionary reference token.
func (w *Writer) StringRef(index int) {
	w.Emit(StringDictBase + Tag(index))
}

// MacRef emits a MAC-dictionary reference token.
func (w *Writer) MacRef(index int) {
	w.Emit(MacDictBase + Tag(index))
}

// Int emits an INT token: signed zig-zag varint payload.
func (w *Writer) Int(v int64) {
	w.Emit(Int)
	w.AppendZigZagVarint(v)
}

// Float16 emits a FLOAT16 token: i16 LE fixed-point payload already scaled by
// the caller (scalar package owns the ×256 scaling).
func (w *Writer) Float16(fixed int16) {
	w.Emit(Float16)
	w.AppendU16LE(uint16(fixed)) //nolint:gosec
}

// Float32 emits a FLOAT32 token: i32 LE fixed-point payload already scaled by
// the caller (scalar package owns the ×65536 scaling).
func (w *Writer) Float32(fixed int32) {
	w.Emit(Float32)
	w.AppendU32LE(uint32(fixed)) //nolint:gosec
}

// DeltaSmall emits an inline DELTA_SMALL token for delta in -8..+7.
func (w *Writer) DeltaSmall(delta int) {
	w.Emit(DeltaSmallMin + Tag(delta+DeltaSmallBias))
}

// DeltaMedium emits a DELTA_MEDIUM token for delta in -64..+63.
func (w *Writer) DeltaMedium(delta int) {
	w.Emit(DeltaMedium)
	w.buf.MustWrite([]byte{byte(delta + DeltaMediumBias)})
}

// DeltaLarge emits a DELTA_LARGE token: signed zig-zag varint delta.
func (w *Writer) DeltaLarge(delta int64) {
	w.Emit(DeltaLarge)
	w.AppendZigZagVarint(delta)
}

// DeltaZeroTok, DeltaOneTok and DeltaNegOneTok emit the single-byte delta
// tokens for the most common deltas (0, +1, -1).
func (w *Writer) DeltaZeroTok()   { w.Emit(DeltaZero) }
func (w *Writer) DeltaOneTok()    { w.Emit(DeltaOne) }
func (w *Writer) DeltaNegOneTok() { w.Emit(DeltaNegOne) }

// NewStringTok emits a NEW_STRING token: varint length + raw bytes.
func (w *Writer) NewStringTok(b []byte) {
	w.Emit(NewString)
	w.AppendVarint(uint64(len(b)))
	w.AppendBytes(b)
}

// NewFieldTok emits a NEW_FIELD token: varint length + raw bytes.
func (w *Writer) NewFieldTok(b []byte) {
	w.Emit(NewField)
	w.AppendVarint(uint64(len(b)))
	w.AppendBytes(b)
}

// NewMacTok emits a NEW_MAC token: 6 raw bytes.
func (w *Writer) NewMacTok(mac [MacLen]byte) {
	w.Emit(NewMac)
	w.AppendBytes(mac[:])
}

// Bool emits BOOL_TRUE or BOOL_FALSE.
func (w *Writer) Bool(v bool) {
	if v {
		w.Emit(BoolTrue)
	} else {
		w.Emit(BoolFalse)
	}
}

// NullTok emits NULL.
func (w *Writer) NullTok() { w.Emit(Null) }

// ArrayStartTok emits ARRAY_START with its element-count payload.
func (w *Writer) ArrayStartTok(count int) {
	w.Emit(ArrayStart)
	w.AppendVarint(uint64(count))
}

// ArrayEndTok emits ARRAY_END.
func (w *Writer) ArrayEndTok() { w.Emit(ArrayEnd) }

// ObjectStartTok emits OBJECT_START.
func (w *Writer) ObjectStartTok() { w.Emit(ObjectStart) }

// ObjectEndTok emits OBJECT_END.
func (w *Writer) ObjectEndTok() { w.Emit(ObjectEnd) }

// DoubleTok emits a DOUBLE token: IEEE-754 binary64 LE payload.
func (w *Writer) DoubleTok(v float64) {
	w.Emit(Double)
	w.AppendU64LE(math.Float64bits(v))
}

// BinaryTok emits a BINARY token: varint length + raw bytes.
func (w *Writer) BinaryTok(b []byte) {
	w.Emit(Binary)
	w.AppendVarint(uint64(len(b)))
	w.AppendBytes(b)
}

// RLERepeatTok emits RLE_REPEAT with its run-length payload (run-1, per
// §4.5's "follow with RLE_REPEAT || varint(run-1)").
func (w *Writer) RLERepeatTok(runMinusOne int) {
	w.Emit(RLERepeat)
	w.AppendVarint(uint64(runMinusOne))
}

// ArrayStreamTok emits ARRAY_STREAM.
func (w *Writer) ArrayStreamTok() { w.Emit(ArrayStream) }
