package token

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReaderIntRoundTrip(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.Int(42)
	w.Int(-17)

	r := NewReader(w.Bytes())

	tag, err := r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, Int, tag)
	v, err := r.ReadZigZagVarint()
	require.NoError(t, err)
	require.Equal(t, int64(42), v)

	tag, err = r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, Int, tag)
	v, err = r.ReadZigZagVarint()
	require.NoError(t, err)
	require.Equal(t, int64(-17), v)
	require.True(t, r.Done())
}

func TestWriterSymbolCount(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.ObjectStartTok()
	w.NullTok()
	w.ObjectEndTok()

	require.Equal(t, uint64(3), w.SymbolCount())
}

func TestDictRefRanges(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.FieldRef(5)
	w.StringRef(10)
	w.MacRef(3)

	r := NewReader(w.Bytes())

	tag, _ := r.ReadTag()
	idx, ok := IsFieldRef(tag)
	require.True(t, ok)
	require.Equal(t, 5, idx)

	tag, _ = r.ReadTag()
	idx, ok = IsStringRef(tag)
	require.True(t, ok)
	require.Equal(t, 10, idx)

	tag, _ = r.ReadTag()
	idx, ok = IsMacRef(tag)
	require.True(t, ok)
	require.Equal(t, 3, idx)
}

func TestIsDeltaSmallRange(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.DeltaSmall(-8)
	w.DeltaSmall(7)

	r := NewReader(w.Bytes())

	tag, _ := r.ReadTag()
	d, ok := IsDeltaSmall(tag)
	require.True(t, ok)
	require.Equal(t, -8, d)

	tag, _ = r.ReadTag()
	d, ok = IsDeltaSmall(tag)
	require.True(t, ok)
	require.Equal(t, 7, d)
}

func TestDeltaMediumRoundTrip(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.DeltaMedium(-64)
	w.DeltaMedium(63)

	r := NewReader(w.Bytes())

	tag, err := r.ReadTag()
	require.NoError(t, err)
	v, ok, err := r.DecodeDelta(tag)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(-64), v)

	tag, err = r.ReadTag()
	require.NoError(t, err)
	v, ok, err = r.DecodeDelta(tag)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(63), v)
}

func TestDeltaLargeRoundTrip(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.DeltaLarge(123456789)

	r := NewReader(w.Bytes())
	tag, err := r.ReadTag()
	require.NoError(t, err)
	v, ok, err := r.DecodeDelta(tag)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(123456789), v)
}

func TestDecodeDeltaFalseForNonDeltaTag(t *testing.T) {
	_, ok, err := (&Reader{}).DecodeDelta(Int)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDoubleTokRoundTrip(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.DoubleTok(math.Pi)

	r := NewReader(w.Bytes())
	tag, err := r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, Double, tag)

	v, err := r.ReadDoubleBits()
	require.NoError(t, err)
	require.Equal(t, math.Pi, v)
}

func TestBoolTokens(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.Bool(true)
	w.Bool(false)

	r := NewReader(w.Bytes())
	tag, _ := r.ReadTag()
	require.Equal(t, BoolTrue, tag)
	tag, _ = r.ReadTag()
	require.Equal(t, BoolFalse, tag)
}

func TestNewFieldStringMacTokens(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.NewFieldTok([]byte("name"))
	w.NewStringTok([]byte("value"))
	var mac [MacLen]byte
	copy(mac[:], []byte{1, 2, 3, 4, 5, 6})
	w.NewMacTok(mac)

	r := NewReader(w.Bytes())

	tag, _ := r.ReadTag()
	require.Equal(t, NewField, tag)
	n, err := r.ReadVarint()
	require.NoError(t, err)
	b, err := r.ReadBytes(int(n))
	require.NoError(t, err)
	require.Equal(t, "name", string(b))

	tag, _ = r.ReadTag()
	require.Equal(t, NewString, tag)
	n, err = r.ReadVarint()
	require.NoError(t, err)
	b, err = r.ReadBytes(int(n))
	require.NoError(t, err)
	require.Equal(t, "value", string(b))

	tag, _ = r.ReadTag()
	require.Equal(t, NewMac, tag)
	b, err = r.ReadBytes(MacLen)
	require.NoError(t, err)
	require.Equal(t, mac[:], b)
}

func TestArrayObjectStructuralTokens(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.ArrayStartTok(3)
	w.ObjectStartTok()
	w.ObjectEndTok()
	w.ArrayEndTok()
	w.ArrayStreamTok()

	r := NewReader(w.Bytes())

	tag, _ := r.ReadTag()
	require.Equal(t, ArrayStart, tag)
	n, err := r.ReadVarint()
	require.NoError(t, err)
	require.Equal(t, uint64(3), n)

	tag, _ = r.ReadTag()
	require.Equal(t, ObjectStart, tag)
	tag, _ = r.ReadTag()
	require.Equal(t, ObjectEnd, tag)
	tag, _ = r.ReadTag()
	require.Equal(t, ArrayEnd, tag)
	tag, _ = r.ReadTag()
	require.Equal(t, ArrayStream, tag)
}

func TestReaderPeekTagDoesNotAdvance(t *testing.T) {
	w := NewWriter()
	defer w.Finish()
	w.NullTok()

	r := NewReader(w.Bytes())
	tag, ok := r.PeekTag()
	require.True(t, ok)
	require.Equal(t, Null, tag)

	tag2, err := r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, tag, tag2)
}

func TestReaderRemainingAndAdvance(t *testing.T) {
	w := NewWriter()
	defer w.Finish()
	w.Int(1)
	w.Int(2)

	r := NewReader(w.Bytes())
	r.ReadTag() //nolint:errcheck
	rest := r.Remaining()
	require.NotEmpty(t, rest)

	err := r.Advance(len(rest))
	require.NoError(t, err)
	require.True(t, r.Done())
}

func TestReaderAdvancePastEndFails(t *testing.T) {
	r := NewReader([]byte{1, 2})
	err := r.Advance(10)
	require.Error(t, err)
}

func TestReaderTruncatedTagFails(t *testing.T) {
	r := NewReader(nil)
	_, err := r.ReadTag()
	require.Error(t, err)
}

func TestU16U32U64LERoundTrip(t *testing.T) {
	w := NewWriter()
	defer w.Finish()

	w.AppendU16LE(0xBEEF)
	w.AppendU32LE(0xDEADBEEF)
	w.AppendU64LE(0x0123456789ABCDEF)

	r := NewReader(w.Bytes())
	v16, err := r.ReadU16LE()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), v16)

	v32, err := r.ReadU32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), v32)

	v64, err := r.ReadU64LE()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0123456789ABCDEF), v64)
}
