// Package delta implements the inline Delta Codec of spec §4.4: per-field
// "last numeic value" memory and the size-tiered delta token ladder. This is
// the codec used for individual object fields outside of batch/columnar
// encoding (spec §4.5 has its own, related but separate, batch delta
// strategy built on top of the same ladder).
package delta

import "github.com/packr/packr/token"

// Kind is the delta memory's type tag for a field slot (spec §3: "type tag ∈
// {none, int, float}").
type Kind uint8

const (
	// KindNone means the slot has never held a numeric value since the last
	// Reset (frame start).
	KindNone Kind = iota
	// KindInt means the slot's last value was encoded as a plain INT.
	KindInt
	// KindFloat means the slot's last value was encoded as FLOAT32 (or
	// DOUBLE — DOUBLE updates the memory using the same fixed-point units so
	// a later FLOAT32-ish value for the same field can still delta off of
	// it, even though DOUBLE itself is never delta-compressed; see
	// DESIGN.md).
	KindFloat
)

type slot struct {
	kind      Kind
	lastInt   int64
	lastFixed int64 // FLOAT32 fixed-point units (value * scalar.Float32Scale)
}

// Memory holds the per-field delta state for one frame: one slot per
// dictionary index, mirroring the 64 field-dictionary slots of §3.
type Memory struct {
	slots []slot
}

// NewMemory creates delta memory with the given capacity (normally
// dict.DefaultCapacity).
func NewMemory(capacity int) *Memory {
	return &Memory{slots: make([]slot, capacity)}
}

// Reset clears all slots back to KindNone, per §3 "Resets to 'none' on frame
// start".
func (m *Memory) Reset() {
	for i := range m.slots {
		m.slots[i] = slot{}
	}
}

// Kind returns the type tag currently held for fieldSlot.
func (m *Memory) Kind(fieldSlot int) Kind {
	return m.slots[fieldSlot].kind
}

// LastInt returns the last plain-int value recorded for fieldSlot. Only
// meaningful when Kind(fieldSlot) == KindInt.
func (m *Memory) LastInt(fieldSlot int) int64 {
	return m.slots[fieldSlot].lastInt
}

// LastFixed returns the last FLOAT32 fixed-point value recorded for
// fieldSlot. Only meaningful when Kind(fieldSlot) == KindFloat.
func (m *Memory) LastFixed(fieldSlot int) int64 {
	return m.slots[fieldSlot].lastFixed
}

// SetInt records v as the slot's last value with KindInt. The encoder must
// call this with the *reconstructed* value (identical to v for ints — there
// is no quantization), never a separately tracked "true" value, per §4.4's
// anti-drift invariant.
func (m *Memory) SetInt(fieldSlot int, v int64) {
	m.slots[fieldSlot] = slot{kind: KindInt, lastInt: v}
}

// SetFixed records fixed as the slot's last FLOAT32 fixed-point value with
// KindFloat. The caller must pass the value actually reconstructable by the
// decoder (the quantized fixed-point integer), never the pre-quantization
// float, to prevent drift across long delta runs.
func (m *Memory) SetFixed(fieldSlot int, fixed int64) {
	m.slots[fieldSlot] = slot{kind: KindFloat, lastFixed: fixed}
}

// Ladder selects the smallest delta token for the given signed delta and
// writes it, per the §4.4 selection table. Dedicated single-byte tokens are
// preferred for delta 0, +1 and -1 over the otherwise-equal-size DELTA_SMALL
// range.
func Ladder(w *token.Writer, delta int64) {
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

// EncodeInt encodes an int value for fieldSlot, emitting a delta token
// against the slot's memory only when the slot already holds KindInt — a
// delta against a KindFloat slot's fixed-point units would mix units with
// the raw int and reconstruct garbage — or a plain INT token otherwise
// (KindNone, or a kind mismatch). Memory is updated with the reconstructed
// value either way.
func EncodeInt(w *token.Writer, mem *Memory, fieldSlot int, v int64) {
	if mem.Kind(fieldSlot) == KindInt {
		Ladder(w, v-mem.LastInt(fieldSlot))
	} else {
		w.Int(v)
	}
	mem.SetInt(fieldSlot, v)
}

// EncodeFloat32 encodes a float32-ish value for fieldSlot, emitting a delta
// token against the slot's fixed-point memory only when the slot already
// holds KindFloat, or a full FLOAT32 token otherwise (KindNone, or a kind
// mismatch against a KindInt slot).
func EncodeFloat32(w *token.Writer, mem *Memory, fieldSlot int, fixed int32) {
	if mem.Kind(fieldSlot) == KindFloat {
		Ladder(w, int64(fixed)-mem.LastFixed(fieldSlot))
	} else {
		w.Float32(fixed)
	}
	mem.SetFixed(fieldSlot, int64(fixed))
}

// ApplyDeltaToInt reconstructs an int value from a decoded delta against a
// KindInt slot.
func ApplyDeltaToInt(mem *Memory, fieldSlot int, delta int64) int64 {
	v := mem.LastInt(fieldSlot) + delta
	mem.SetInt(fieldSlot, v)

	return v
}

// ApplyDeltaToFixed reconstructs a FLOAT32 fixed-point value from a decoded
// delta against a KindFloat slot.
func ApplyDeltaToFixed(mem *Memory, fieldSlot int, delta int64) int64 {
	fixed := mem.LastFixed(fieldSlot) + delta
	mem.SetFixed(fieldSlot, fixed)

	return fixed
}
