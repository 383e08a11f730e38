package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTripSmall(t *testing.T) {
	for _, v := range []uint64{0, 1, 0x7F, 0x80, 300, 1 << 20, 1 << 63} {
		buf := AppendUvarint(nil, v)
		got, next, ok := ReadUvarint(buf, 0)
		require.True(t, ok)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), next)
	}
}

func TestUvarintSingleByteFastPath(t *testing.T) {
	buf := AppendUvarint(nil, 0x7F)
	require.Len(t, buf, 1)
}

func TestUvarintMultiByteSequential(t *testing.T) {
	var buf []byte
	buf = AppendUvarint(buf, 1)
	buf = AppendUvarint(buf, 300)
	buf = AppendUvarint(buf, 70000)

	v1, pos, ok := ReadUvarint(buf, 0)
	require.True(t, ok)
	require.Equal(t, uint64(1), v1)

	v2, pos, ok := ReadUvarint(buf, pos)
	require.True(t, ok)
	require.Equal(t, uint64(300), v2)

	v3, pos, ok := ReadUvarint(buf, pos)
	require.True(t, ok)
	require.Equal(t, uint64(70000), v3)
	require.Equal(t, len(buf), pos)
}

func TestReadUvarintTruncated(t *testing.T) {
	buf := AppendUvarint(nil, 70000)
	_, _, ok := ReadUvarint(buf[:1], 0)
	require.False(t, ok)
}

func TestReadUvarintOffsetPastEnd(t *testing.T) {
	_, _, ok := ReadUvarint([]byte{1, 2, 3}, 10)
	require.False(t, ok)
}

func TestZigZagEncodeDecode(t *testing.T) {
	cases := []struct {
		v int64
		u uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
	}
	for _, c := range cases {
		require.Equal(t, c.u, ZigZagEncode(c.v))
		require.Equal(t, c.v, ZigZagDecode(c.u))
	}
}

func TestZigZagVarintRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1000, -1000, 1 << 40, -(1 << 40)} {
		buf := AppendZigZagVarint(nil, v)
		got, next, ok := ReadZigZagVarint(buf, 0)
		require.True(t, ok)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), next)
	}
}

func TestBitWriterReaderRoundTrip(t *testing.T) {
	w := NewBitWriter(nil)
	w.WriteBits(0b101, 3)
	w.WriteBit(1)
	w.WriteUnary(4)
	w.WriteBits(0b11001, 5)

	data := w.Bytes()

	r := NewBitReader(data)
	v, ok := r.ReadBits(3)
	require.True(t, ok)
	require.Equal(t, uint64(0b101), v)

	b, ok := r.ReadBit()
	require.True(t, ok)
	require.Equal(t, uint8(1), b)

	q, ok := r.ReadUnary()
	require.True(t, ok)
	require.Equal(t, 4, q)

	v2, ok := r.ReadBits(5)
	require.True(t, ok)
	require.Equal(t, uint64(0b11001), v2)
}

func TestBitReaderExhaustedReturnsNotOK(t *testing.T) {
	r := NewBitReader([]byte{0xFF})
	for i := 0; i < 8; i++ {
		_, ok := r.ReadBit()
		require.True(t, ok)
	}
	_, ok := r.ReadBit()
	require.False(t, ok)
}

func TestBitWriterPadsFinalByteWithZeros(t *testing.T) {
	w := NewBitWriter(nil)
	w.WriteBits(0b101, 3)
	data := w.Bytes()
	require.Len(t, data, 1)
	require.Equal(t, byte(0b10100000), data[0])
}

func TestBitReaderBytePosRoundsUpPartialByte(t *testing.T) {
	r := NewBitReader([]byte{0xFF, 0xFF})
	r.ReadBits(3)
	require.Equal(t, 1, r.BytePos())
	r.ReadBits(5)
	require.Equal(t, 1, r.BytePos())
	r.ReadBits(1)
	require.Equal(t, 2, r.BytePos())
}

func TestWriteUnaryZeroQuotient(t *testing.T) {
	w := NewBitWriter(nil)
	w.WriteUnary(0)
	r := NewBitReader(w.Bytes())
	q, ok := r.ReadUnary()
	require.True(t, ok)
	require.Equal(t, 0, q)
}
