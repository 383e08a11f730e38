// Package frame implements the outer framing of spec §4.8: the
// magic/version/flags/symbol-count HEADER, the BODY (a token-writer byte
// stream produced by the codec package), a trailing CRC-32/IEEE checksum
// over HEADER‖BODY, and an optional LZ77 envelope wrapping the whole thing.
package frame

import (
	"hash/crc32"

	"github.com/packr/packr/errs"
	"github.com/packr/packr/internal/bitio"
	"github.com/packr/packr/lz77"
)

// Magic is the 4-byte frame identifier "PKR1".
var Magic = [4]byte{'P', 'K', 'R', '1'}

// Version is the only wire version this package knows how to read/write.
const Version byte = 0x01

// Flag bits carried in the header's flags byte.
const (
	FlagNone       byte = 0x00
	FlagLZ77Envelope byte = 0x01
)

// lz77Wrapper is the 2-byte sentinel prefix (spec §4.8 "0xFE 0x03") marking
// an LZ77-wrapped frame, distinguishing it from a plain frame whose first
// byte is always the 'P' of the magic.
var lz77Wrapper = [2]byte{0xFE, 0x03}

// Encode assembles a complete frame: HEADER(magic, version, flags,
// symbolCount) ‖ body ‖ CRC32(HEADER‖body). If useLZ77 is set, the result is
// instead wrapped as lz77Wrapper ‖ LZ77Compress(frame).
func Encode(body []byte, symbolCount uint64, useLZ77 bool) []byte {
	flags := FlagNone
	header := buildHeader(flags, symbolCount)

	payload := make([]byte, 0, len(header)+len(body)+4)
	payload = append(payload, header...)
	payload = append(payload, body...)

	sum := crc32.ChecksumIEEE(payload)
	payload = append(payload,
		byte(sum), byte(sum>>8), byte(sum>>16), byte(sum>>24))

	if !useLZ77 {
		return payload
	}

	compressed := lz77.Compress(payload)
	out := make([]byte, 0, 2+len(compressed))
	out = append(out, lz77Wrapper[:]...)

	return append(out, compressed...)
}

func buildHeader(flags byte, symbolCount uint64) []byte {
	header := make([]byte, 0, 4+1+1+10)
	header = append(header, Magic[:]...)
	header = append(header, Version, flags)
	header = bitio.AppendUvarint(header, symbolCount)

	return header
}

// Decoded is a successfully parsed frame.
type Decoded struct {
	Flags       byte
	SymbolCount uint64
	Body        []byte
}

// Decode parses a frame produced by Encode, transparently unwrapping the
// LZ77 envelope if present, verifying the magic, version and CRC.
func Decode(data []byte) (Decoded, error) {
	if len(data) >= 2 && data[0] == lz77Wrapper[0] && data[1] == lz77Wrapper[1] {
		inner, err := lz77.Decompress(data[2:])
		if err != nil {
			return Decoded{}, err
		}
		data = inner
	}

	if len(data) < 4+1+1+1+4 {
		return Decoded{}, errs.ErrTruncatedInput
	}

	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return Decoded{}, errs.ErrInvalidMagic
	}

	version := data[4]
	if version != Version {
		return Decoded{}, errs.ErrVersionMismatch
	}

	flags := data[5]

	symbolCount, next, ok := bitio.ReadUvarint(data, 6)
	if !ok {
		return Decoded{}, errs.ErrTruncatedInput
	}

	if next+4 > len(data) {
		return Decoded{}, errs.ErrTruncatedInput
	}

	body := data[next : len(data)-4]
	wantSum := crc32.ChecksumIEEE(data[:len(data)-4])
	gotSum := uint32(data[len(data)-4]) | uint32(data[len(data)-3])<<8 |
		uint32(data[len(data)-2])<<16 | uint32(data[len(data)-1])<<24

	if wantSum != gotSum {
		return Decoded{}, errs.ErrCrcMismatch
	}

	return Decoded{Flags: flags, SymbolCount: symbolCount, Body: body}, nil
}
