// Package scalar implements the Scalar Codec of spec §4.3: the encode/decode
// logic for int, float32 (fixed-point), double, bool, null, and binary
// values, plus the string/field/MAC dictionary-routing rules. It sits one
// level above the token package, owning the semantics (rounding, clamping,
// MAC detection) that the token alphabet itself is agnostic to.
package scalar

import (
	"math"
	"regexp"

	"github.com/packr/packr/dict"
	"github.com/packr/packr/token"
)

// Float32Scale and Float16Scale are the fixed-point scaling factors of §4.3.
const (
	Float32Scale = 65536 // FLOAT32: value * 65536, stored as i32 LE
	Float16Scale = 256   // FLOAT16: value * 256, stored as i16 LE
)

// macPattern matches the 17-character colon- or hyphen-separated MAC address
// form named in §6: `^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`.
var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)

// QuantizeFloat32 converts v to the FLOAT32 fixed-point representation:
// round-to-nearest-even of v*65536, clamped to the int32 range. The loss is
// explicit per §4.3 and §8 ("quantize to multiples of 2⁻¹⁶").
func QuantizeFloat32(v float64) int32 {
	return quantizeFixed(v, Float32Scale)
}

// DequantizeFloat32 reverses QuantizeFloat32.
func DequantizeFloat32(fixed int32) float64 {
	return float64(fixed) / Float32Scale
}

// QuantizeFloat16 converts v to the FLOAT16 fixed-point representation:
// round-to-nearest-even of v*256, clamped to the int16 range.
func QuantizeFloat16(v float64) int16 {
	return int16(quantizeFixed(v, Float16Scale))
}

// DequantizeFloat16 reverses QuantizeFloat16.
func DequantizeFloat16(fixed int16) float64 {
	return float64(fixed) / Float16Scale
}

func quantizeFixed(v float64, scale float64) int32 {
	scaled := math.RoundToEven(v * scale)
	if scaled > math.MaxInt32 {
		return math.MaxInt32
	}
	if scaled < math.MinInt32 {
		return math.MinInt32
	}

	return int32(scaled)
}

// IsMAC reports whether s is a 17-character MAC address per the regex of §6,
// returning the 6 raw address bytes if so.
func IsMAC(s string) (mac [token.MacLen]byte, ok bool) {
	if len(s) != 17 || !macPattern.MatchString(s) {
		return mac, false
	}

	for i := 0; i < 6; i++ {
		hi := hexVal(s[i*3])
		lo := hexVal(s[i*3+1])
		mac[i] = hi<<4 | lo
	}

	return mac, true
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default: // 'A'..'F'
		return c - 'A' + 10
	}
}

// MACString renders a 6-byte MAC address back into its canonical colon form.
func MACString(mac [token.MacLen]byte) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 17)
	for i := 0; i < 6; i++ {
		buf[i*3] = hexDigits[mac[i]>>4]
		buf[i*3+1] = hexDigits[mac[i]&0xF]
		if i < 5 {
			buf[i*3+2] = ':'
		}
	}

	return string(buf)
}

// WriteStringValue encodes a string value (not a field name): MAC addresses
// route to the MAC dictionary, everything else to the string dictionary.
func WriteStringValue(w *token.Writer, strings, macs *dict.Dict, s string) {
	if mac, ok := IsMAC(s); ok {
		idx, isNew := macs.LookupOrAdd(mac[:])
		if isNew {
			w.NewMacTok(mac)
		} else {
			w.MacRef(idx)
		}

		return
	}

	idx, isNew := strings.LookupOrAdd([]byte(s))
	if isNew {
		w.NewStringTok([]byte(s))
	} else {
		w.StringRef(idx)
	}
}

// WriteFieldName encodes a field name through the field dictionary and
// returns its dictionary slot, which doubles as the field's delta-memory
// slot (the two tables are the same size and indexed identically).
func WriteFieldName(w *token.Writer, fields *dict.Dict, name string) int {
	idx, isNew := fields.LookupOrAdd([]byte(name))
	if isNew {
		w.NewFieldTok([]byte(name))
	} else {
		w.FieldRef(idx)
	}

	return idx
}

// EncodeInt emits an INT token for v.
func EncodeInt(w *token.Writer, v int64) { w.Int(v) }

// DecodeIntPayload decodes an INT token's payload (the tag must already have
// been consumed by the caller).
func DecodeIntPayload(r *token.Reader) (int64, error) {
	return r.ReadZigZagVarint()
}

// EncodeDouble emits a DOUBLE token for v (lossless IEEE-754 binary64).
func EncodeDouble(w *token.Writer, v float64) { w.DoubleTok(v) }

// DecodeDoublePayload decodes a DOUBLE token's payload.
func DecodeDoublePayload(r *token.Reader) (float64, error) {
	return r.ReadDoubleBits()
}

// EncodeFloat32 emits a FLOAT32 token for v, quantizing to the fixed-point
// representation.
func EncodeFloat32(w *token.Writer, v float64) { w.Float32(QuantizeFloat32(v)) }

// DecodeFloat32Payload decodes a FLOAT32 token's payload back to a float64.
func DecodeFloat32Payload(r *token.Reader) (float64, error) {
	bits, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}

	return DequantizeFloat32(int32(bits)), nil //nolint:gosec
}

// EncodeFloat16 emits a FLOAT16 token for v.
func EncodeFloat16(w *token.Writer, v float64) { w.Float16(QuantizeFloat16(v)) }

// DecodeFloat16Payload decodes a FLOAT16 token's payload back to a float64.
func DecodeFloat16Payload(r *token.Reader) (float64, error) {
	bits, err := r.ReadU16LE()
	if err != nil {
		return 0, err
	}

	return DequantizeFloat16(int16(bits)), nil //nolint:gosec
}

// EncodeBinary emits a BINARY token for b.
func EncodeBinary(w *token.Writer, b []byte) { w.BinaryTok(b) }

// DecodeBinaryPayload decodes a BINARY token's payload.
func DecodeBinaryPayload(r *token.Reader) ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}

	return r.ReadBytes(int(n))
}
