package frame

import (
	"hash/crc32"

	"github.com/packr/packr/errs"
	"github.com/packr/packr/internal/bitio"
	"github.com/packr/packr/lz77"
)

// streamSentinelLen is the u32 LE "length" field streaming frames carry in
// place of a single-shot block's real declared length (spec §4.8: "emit the
// outer 0xFE 0x03 header with sentinel length 0xFFFFFFFF when compression is
// on"). It tells Decode-style readers that what follows is an open-ended
// LZ77 stream, not one length-prefixed compressed block.
var streamSentinelLen = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}

// StreamEncoder assembles a PACKR frame incrementally: instead of buffering
// the whole header+body+CRC and compressing it once (Encode's single-shot
// path), it pushes each piece through one persistent lz77.StreamEncoder and
// flushes whatever compressed bytes that produces to sink immediately. This
// is the streaming counterpart frame.Encode has no equivalent for.
type StreamEncoder struct {
	sink func([]byte) error
	lz   *lz77.StreamEncoder
	crc  uint32
}

// NewStreamEncoder creates a streaming frame encoder that writes compressed
// bytes to sink as they become available.
func NewStreamEncoder(sink func([]byte) error) *StreamEncoder {
	return &StreamEncoder{sink: sink, lz: lz77.NewStreamEncoder()}
}

// Start writes the wrapper and sentinel length, then the frame header,
// folding the header bytes into both the running CRC and the LZ77 stream
// exactly like a WriteBody call would (header is part of "HEADER‖BODY" for
// CRC purposes, same as the single-shot path).
func (e *StreamEncoder) Start(symbolCount uint64) error {
	if err := e.sink(lz77Wrapper[:]); err != nil {
		return err
	}
	if err := e.sink(streamSentinelLen[:]); err != nil {
		return err
	}

	return e.WriteBody(buildHeader(FlagLZ77Envelope, symbolCount))
}

// WriteBody folds chunk into the running CRC and pushes it through the
// shared LZ77 stream, flushing whatever compressed bytes result to sink.
func (e *StreamEncoder) WriteBody(chunk []byte) error {
	e.crc = crc32.Update(e.crc, crc32.IEEETable, chunk)

	if out := e.lz.Write(chunk); len(out) > 0 {
		return e.sink(out)
	}

	return nil
}

// Finish pushes the CRC trailer through the LZ77 stream (per spec §4.8 it is
// part of the compressed payload even though it is excluded from the running
// CRC computation itself, since the CRC covers only HEADER‖BODY), then
// performs the final LZ77 flush.
func (e *StreamEncoder) Finish() error {
	sum := e.crc
	crcBytes := []byte{byte(sum), byte(sum >> 8), byte(sum >> 16), byte(sum >> 24)}

	if out := e.lz.Write(crcBytes); len(out) > 0 {
		if err := e.sink(out); err != nil {
			return err
		}
	}

	if tail := e.lz.Flush(); len(tail) > 0 {
		return e.sink(tail)
	}

	return nil
}

// StreamDecoder reverses StreamEncoder. Feed it the raw stream bytes
// following the 0xFE 0x03 ‖ sentinel-length prefix via Write, then call
// Finish once the source is exhausted to validate the reconstructed frame
// and get its header fields and body back.
type StreamDecoder struct {
	lz *lz77.StreamDecoder
}

// NewStreamDecoder creates an empty StreamDecoder.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{lz: lz77.NewStreamDecoder()}
}

// Write feeds more raw (still LZ77-compressed) stream bytes in.
func (d *StreamDecoder) Write(chunk []byte) error {
	_, err := d.lz.Write(chunk)

	return err
}

// Finish validates the fully reconstructed frame (magic, version, CRC) and
// returns its header fields and body, mirroring Decode's own checks.
func (d *StreamDecoder) Finish() (Decoded, error) {
	all := d.lz.Bytes()

	if len(all) < 4+1+1+1+4 {
		return Decoded{}, errs.ErrTruncatedInput
	}

	if all[0] != Magic[0] || all[1] != Magic[1] || all[2] != Magic[2] || all[3] != Magic[3] {
		return Decoded{}, errs.ErrInvalidMagic
	}

	version := all[4]
	if version != Version {
		return Decoded{}, errs.ErrVersionMismatch
	}

	flags := all[5]

	symbolCount, next, ok := bitio.ReadUvarint(all, 6)
	if !ok {
		return Decoded{}, errs.ErrTruncatedInput
	}

	if next+4 > len(all) {
		return Decoded{}, errs.ErrTruncatedInput
	}

	body := all[next : len(all)-4]
	wantSum := crc32.ChecksumIEEE(all[:len(all)-4])
	gotSum := uint32(all[len(all)-4]) | uint32(all[len(all)-3])<<8 |
		uint32(all[len(all)-2])<<16 | uint32(all[len(all)-1])<<24

	if wantSum != gotSum {
		return Decoded{}, errs.ErrCrcMismatch
	}

	return Decoded{Flags: flags, SymbolCount: symbolCount, Body: body}, nil
}

// IsStreamingPrefix reports whether data opens with the streaming frame's
// wrapper‖sentinel-length prefix rather than a single-shot compressed block,
// so a caller can route to StreamDecoder instead of Decode.
func IsStreamingPrefix(data []byte) bool {
	return len(data) >= 6 &&
		data[0] == lz77Wrapper[0] && data[1] == lz77Wrapper[1] &&
		data[2] == streamSentinelLen[0] && data[3] == streamSentinelLen[1] &&
		data[4] == streamSentinelLen[2] && data[5] == streamSentinelLen[3]
}
