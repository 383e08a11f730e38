package token

import (
	"math"

	"github.com/packr/packr/errs"
	"github.com/packr/packr/internal/bitio"
)

// Reader consumes the body byte stream produced by a Writer. It has no
// dictionary or delta state of its own — that lives in the dict/delta
// packages and is threaded through by the codec package — it only knows how
// to pull the next tag and payload off the wire.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current byte offset into data.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Done reports whether all bytes have been consumed.
func (r *Reader) Done() bool { return r.pos >= len(r.data) }

// PeekTag returns the next tag byte without consuming it.
func (r *Reader) PeekTag() (Tag, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}

	return r.data[r.pos], true
}

// ReadTag consumes and returns the next tag byte.
func (r *Reader) ReadTag() (Tag, error) {
	if r.pos >= len(r.data) {
		return 0, errs.ErrTruncatedInput
	}
	t := r.data[r.pos]
	r.pos++

	return t, nil
}

// ReadVarint consumes a LEB128 varint.
func (r *Reader) ReadVarint() (uint64, error) {
	v, next, ok := bitio.ReadUvarint(r.data, r.pos)
	if !ok {
		return 0, errs.ErrTruncatedInput
	}
	r.pos = next

	return v, nil
}

// ReadZigZagVarint consumes a zigzag+varint signed value.
func (r *Reader) ReadZigZagVarint() (int64, error) {
	v, next, ok := bitio.ReadZigZagVarint(r.data, r.pos)
	if !ok {
		return 0, errs.ErrTruncatedInput
	}
	r.pos = next

	return v, nil
}

// Remaining returns the unconsumed tail of the input without advancing pos.
// Used by callers (e.g. the column package's Rice-coded delta bodies) that
// need to hand off to a bit-level reader with no length prefix of its own and
// then resync pos to the whole-byte count that reader actually consumed.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

// Advance skips n bytes forward, as if they had been read and discarded.
func (r *Reader) Advance(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return errs.ErrTruncatedInput
	}
	r.pos += n

	return nil
}

// ReadBytes consumes and returns n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, errs.ErrTruncatedInput
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

// ReadU16LE consumes a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}

	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadU32LE consumes a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}

	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadU64LE consumes a little-endian uint64.
func (r *Reader) ReadU64LE() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}

	var v uint64
	for i := 7; i >= 0; i-- {
		v = (v << 8) | uint64(b[i])
	}

	return v, nil
}

// ReadDoubleBits consumes a DOUBLE token's payload and returns the decoded
// float64.
func (r *Reader) ReadDoubleBits() (float64, error) {
	bits, err := r.ReadU64LE()
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(bits), nil
}

// DecodeDelta interprets tag as one of the delta tokens of §4.4
// (DeltaZero/DeltaOne/DeltaNegOne/DeltaSmall/DeltaMedium/DeltaLarge),
// consuming any payload the tag requires, and returns the signed delta. ok
// is false if tag is not a delta token at all.
func (r *Reader) DecodeDelta(tag Tag) (delta int64, ok bool, err error) {
	switch {
	case tag == DeltaZero:
		return 0, true, nil
	case tag == DeltaOne:
		return 1, true, nil
	case tag == DeltaNegOne:
		return -1, true, nil
	case tag >= DeltaSmallMin && tag <= DeltaSmallMax:
		return int64(tag-DeltaSmallMin) - DeltaSmallBias, true, nil
	case tag == DeltaMedium:
		b, err := r.ReadBytes(1)
		if err != nil {
			return 0, true, err
		}

		return int64(b[0]) - DeltaMediumBias, true, nil
	case tag == DeltaLarge:
		v, err := r.ReadZigZagVarint()
		return v, true, err
	default:
		return 0, false, nil
	}
}
