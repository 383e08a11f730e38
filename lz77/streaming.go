package lz77

import (
	"errors"

	"github.com/packr/packr/errs"
)

// errNeedMore is an internal control-flow sentinel: a command straddles the
// end of the bytes parsed so far and must wait for the next Write call. It
// never escapes StreamDecoder.Write.
var errNeedMore = errors.New("lz77: need more data")

// StreamEncoder implements the §4.7 streaming variant: a persistent sliding
// window and hash chain shared across calls to Write, rather than restarting
// fresh per chunk the way the single-shot Compress does. It accumulates
// input, emits command sequences as matches are found, and slides (halving)
// the window once free space runs below one maximum match, per spec wording.
type StreamEncoder struct {
	window   []byte  // all bytes still reachable as match sources
	head     []int32 // hash -> most recent window-relative position, -1 if none
	prev     []int32 // window-relative position -> previous position sharing its hash
	searched int     // window-relative position the match finder has reached
	litStart int     // window-relative start of the not-yet-emitted literal run
}

// NewStreamEncoder creates a StreamEncoder with an empty window.
func NewStreamEncoder() *StreamEncoder {
	head := make([]int32, hashBuckets)
	for i := range head {
		head[i] = -1
	}

	return &StreamEncoder{head: head}
}

// Write feeds more source bytes in and returns whatever command bytes can be
// emitted immediately. Trailing bytes too short to confirm a match against
// are held back internally until a later Write or Flush.
func (e *StreamEncoder) Write(chunk []byte) []byte {
	e.window = append(e.window, chunk...)
	out := e.emitReady()
	e.slideIfNeeded()

	return out
}

// Flush emits the buffered-but-unmatched tail of the window as the spec's
// offset-0 "literal-only" command — the streaming flush sentinel, since no
// real match ever has distance 0. A decoder must special-case offset 0 as
// "copy these literals, there is no match" instead of treating it as
// malformed input.
func (e *StreamEncoder) Flush() []byte {
	litLen := len(e.window) - e.litStart
	if litLen == 0 {
		return nil
	}

	out := emitFlushLiterals(nil, e.window[e.litStart:], litLen)
	e.litStart = len(e.window)

	return out
}

func (e *StreamEncoder) ensurePrevLen(n int) {
	if len(e.prev) >= n {
		return
	}

	grown := make([]int32, n)
	copy(grown, e.prev)
	for i := len(e.prev); i < n; i++ {
		grown[i] = -1
	}
	e.prev = grown
}

func (e *StreamEncoder) emitReady() []byte {
	var out []byte
	n := len(e.window)
	e.ensurePrevLen(n)

	for e.searched+minMatch <= n {
		h := hash4(e.window[e.searched:])
		matchPos, matchLen := bestMatch(e.window, e.searched, e.head[h], e.prev)

		if matchLen < minMatch {
			e.prev[e.searched] = e.head[h]
			e.head[h] = int32(e.searched) //nolint:gosec
			e.searched++

			continue
		}

		offset := e.searched - matchPos
		litLen := e.searched - e.litStart
		out = emitSequence(out, e.window[e.litStart:e.searched], litLen, matchLen, offset)

		end := e.searched + matchLen
		for ; e.searched < end && e.searched+minMatch <= n; e.searched++ {
			h := hash4(e.window[e.searched:])
			e.prev[e.searched] = e.head[h]
			e.head[h] = int32(e.searched) //nolint:gosec
		}
		e.searched = end
		e.litStart = end
	}

	return out
}

// slideIfNeeded drops the oldest bytes once the window has grown past the
// 2x-window-size "free space < one maximum match" threshold, rebasing every
// stored position so in-range matches keep resolving correctly. Positions
// that fall out of range collapse to -1 (bestMatch's own distance check
// would have rejected them anyway).
func (e *StreamEncoder) slideIfNeeded() {
	if len(e.window) < 2*windowSize-maxMatch {
		return
	}

	drop := len(e.window) - windowSize
	if drop <= 0 || drop > e.litStart {
		return
	}

	e.window = append([]byte(nil), e.window[drop:]...)
	e.prev = e.prev[drop:]

	for h, p := range e.head {
		if p < 0 {
			continue
		}
		np := p - int32(drop) //nolint:gosec
		if np < 0 {
			np = -1
		}
		e.head[h] = np
	}

	for i := range e.prev {
		if e.prev[i] < 0 {
			continue
		}
		e.prev[i] -= int32(drop) //nolint:gosec
		if e.prev[i] < 0 {
			e.prev[i] = -1
		}
	}

	e.searched -= drop
	e.litStart -= drop
}

func emitFlushLiterals(out []byte, literals []byte, litLen int) []byte {
	litNibble, litLen16 := nibbleLen(litLen)
	out = append(out, byte(litNibble<<4)) // matchNibble 0: no match-length field follows
	out = appendExtraLen(out, litLen16, litLen)
	out = append(out, literals...)

	return append(out, 0x00, 0x00) // offset 0: literal-only sentinel
}

// StreamDecoder reverses StreamEncoder across multiple Write calls. It keeps
// the full reconstructed output as its own back-reference window: matches
// never reach back further than windowSize, but nothing here needs to shed
// memory the way the encoder's bounded buffer does.
type StreamDecoder struct {
	out     []byte
	pending []byte
}

// NewStreamDecoder creates an empty StreamDecoder.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// Write feeds more compressed stream bytes in and returns the output bytes
// decoded from them so far (possibly none, if chunk ends mid-command — the
// remainder is buffered and retried on the next Write).
func (d *StreamDecoder) Write(chunk []byte) ([]byte, error) {
	d.pending = append(d.pending, chunk...)
	start := len(d.out)

	pos := 0
	for pos < len(d.pending) {
		consumed, err := d.decodeOne(d.pending[pos:])
		if err != nil {
			if err == errNeedMore { //nolint:errorlint // internal sentinel, never wrapped
				break
			}

			return nil, err
		}
		pos += consumed
	}
	d.pending = append([]byte(nil), d.pending[pos:]...)

	return d.out[start:], nil
}

// Bytes returns everything decoded so far.
func (d *StreamDecoder) Bytes() []byte {
	return d.out
}

func (d *StreamDecoder) decodeOne(buf []byte) (int, error) {
	cmd, consumed, ok := parseCommand(buf)
	if !ok {
		return 0, errNeedMore
	}

	d.out = append(d.out, cmd.literals...)

	if cmd.offset == 0 {
		return consumed, nil
	}

	if cmd.offset > len(d.out) {
		return 0, errs.ErrInvalidToken
	}

	copyFrom := len(d.out) - cmd.offset
	for k := 0; k < cmd.matchLen; k++ {
		d.out = append(d.out, d.out[copyFrom+k])
	}

	return consumed, nil
}

// command is one parsed LZ77 sequence: a literal run followed by either a
// real match (offset > 0) or, for offset == 0, the streaming flush sentinel
// (no match at all).
type command struct {
	literals []byte
	offset   int
	matchLen int
}

// parseCommand reads one command from the front of buf without mutating any
// decoder state, so a command split across a Write boundary can simply be
// retried once more bytes arrive.
func parseCommand(buf []byte) (cmd command, consumed int, ok bool) {
	if len(buf) < 1 {
		return command{}, 0, false
	}

	tok := buf[0]
	litNibble := int(tok >> 4)
	matchNibble := int(tok & 0x0F)
	pos := 1

	litLen, pos, ok := tryReadExtraLen(buf, pos, litNibble)
	if !ok {
		return command{}, 0, false
	}

	if pos+litLen > len(buf) {
		return command{}, 0, false
	}
	literals := buf[pos : pos+litLen]
	pos += litLen

	if pos+2 > len(buf) {
		return command{}, 0, false
	}
	offset := int(buf[pos]) | int(buf[pos+1])<<8
	pos += 2

	if offset == 0 {
		return command{literals: literals}, pos, true
	}

	matchBase, pos, ok := tryReadExtraLen(buf, pos, matchNibble)
	if !ok {
		return command{}, 0, false
	}

	return command{literals: literals, offset: offset, matchLen: matchBase + minMatch}, pos, true
}

// tryReadExtraLen is readExtraLen with "ran out of bytes" turned into ok=false
// instead of an error, since in the streaming decoder that just means wait
// for the next Write.
func tryReadExtraLen(buf []byte, pos int, nibble int) (length int, next int, ok bool) {
	if nibble < 15 {
		return nibble, pos, true
	}

	length = 15
	for {
		if pos >= len(buf) {
			return 0, pos, false
		}
		b := buf[pos]
		pos++
		length += int(b)
		if b != 0xFF {
			break
		}
	}

	return length, pos, true
}
