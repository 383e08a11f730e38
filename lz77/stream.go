package lz77

import "github.com/packr/packr/errs"

// encodeStream builds the LZ4-style command stream for src: a sequence of
// sequences, each `token‖[extra literal len]‖literals‖offset(2 LE)‖[extra
// match len]`. token's high nibble is min(literalLen,15) (0xF meaning "read
// more length bytes"), low nibble is min(matchLen-minMatch,15) the same way.
// A 4-byte rolling hash into a chained hash table finds match candidates
// within the trailing windowSize bytes, walking at most maxChainSteps
// previous occurrences before settling for the best found.
func encodeStream(src []byte) []byte {
	n := len(src)
	head := make([]int32, hashBuckets)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, n)

	out := make([]byte, 0, n)
	litStart := 0
	i := 0

	for i+minMatch <= n {
		h := hash4(src[i:])
		matchPos, matchLen := bestMatch(src, i, head[h], prev)

		if matchLen < minMatch {
			prev[i] = head[h]
			head[h] = int32(i) //nolint:gosec
			i++

			continue
		}

		offset := i - matchPos
		litLen := i - litStart
		out = emitSequence(out, src[litStart:i], litLen, matchLen, offset)

		// Insert hash entries for the bytes consumed by the match (bounded
		// to keep encode time linear-ish on pathological repeats).
		end := i + matchLen
		for ; i < end && i+minMatch <= n; i++ {
			h := hash4(src[i:])
			prev[i] = head[h]
			head[h] = int32(i) //nolint:gosec
		}
		i = end
		litStart = i
	}

	// Trailing literals with no following match: a final token with
	// matchLen nibble 0 and no offset/match-length fields.
	if litStart < n {
		litLen := n - litStart
		out = emitFinalLiterals(out, src[litStart:n], litLen)
	}

	return out
}

func bestMatch(src []byte, i int, candidate int32, prev []int32) (pos int, length int) {
	best := -1
	bestLen := 0
	steps := 0

	for c := candidate; c >= 0 && steps < maxChainSteps; c = prev[c] {
		steps++
		if i-int(c) > windowSize {
			break
		}

		l := matchLength(src, int(c), i)
		if l > bestLen {
			bestLen = l
			best = int(c)
			if bestLen >= maxMatch {
				break
			}
		}
	}

	if best < 0 {
		return 0, 0
	}

	return best, bestLen
}

func matchLength(src []byte, a, b int) int {
	n := len(src)
	l := 0
	for b+l < n && l < maxMatch && src[a+l] == src[b+l] {
		l++
	}

	return l
}

func emitSequence(out []byte, literals []byte, litLen, matchLen, offset int) []byte {
	litNibble, litLen16 := nibbleLen(litLen)
	matchBase := matchLen - minMatch
	matchNibble, matchLen16 := nibbleLen(matchBase)

	out = append(out, byte(litNibble<<4)|byte(matchNibble))
	out = appendExtraLen(out, litLen16, litLen)
	out = append(out, literals...)
	out = append(out, byte(offset), byte(offset>>8))
	out = appendExtraLen(out, matchLen16, matchBase)

	return out
}

func emitFinalLiterals(out []byte, literals []byte, litLen int) []byte {
	litNibble, litLen16 := nibbleLen(litLen)
	out = append(out, byte(litNibble<<4))
	out = appendExtraLen(out, litLen16, litLen)
	out = append(out, literals...)

	return out
}

func nibbleLen(n int) (nibble int, overflowed bool) {
	if n < 15 {
		return n, false
	}

	return 15, true
}

// appendExtraLen writes the 0xFF-continuation extended length bytes for a
// nibble that saturated at 15, per the LZ4-style convention: subtract 15,
// then emit full 0xFF bytes until the remainder fits in a final byte < 0xFF.
func appendExtraLen(out []byte, overflowed bool, n int) []byte {
	if !overflowed {
		return out
	}

	rem := n - 15
	for rem >= 0xFF {
		out = append(out, 0xFF)
		rem -= 0xFF
	}

	return append(out, byte(rem))
}

// decodeStream reverses encodeStream, reconstructing exactly want bytes.
func decodeStream(stream []byte, want int) ([]byte, error) {
	out := make([]byte, 0, want)
	pos := 0

	for len(out) < want {
		if pos >= len(stream) {
			return nil, errs.ErrTruncatedInput
		}

		tok := stream[pos]
		pos++
		litNibble := int(tok >> 4)
		matchNibble := int(tok & 0x0F)

		litLen, newPos, err := readExtraLen(stream, pos, litNibble)
		if err != nil {
			return nil, err
		}
		pos = newPos

		if pos+litLen > len(stream) {
			return nil, errs.ErrTruncatedInput
		}
		out = append(out, stream[pos:pos+litLen]...)
		pos += litLen

		if len(out) >= want {
			break
		}

		if pos+2 > len(stream) {
			return nil, errs.ErrTruncatedInput
		}
		offset := int(stream[pos]) | int(stream[pos+1])<<8
		pos += 2

		matchBase, newPos, err := readExtraLen(stream, pos, matchNibble)
		if err != nil {
			return nil, err
		}
		pos = newPos
		matchLen := matchBase + minMatch

		if offset <= 0 || offset > len(out) {
			return nil, errs.ErrInvalidToken
		}

		copyFrom := len(out) - offset
		for k := 0; k < matchLen; k++ {
			out = append(out, out[copyFrom+k])
		}
	}

	if len(out) != want {
		return nil, errs.ErrTruncatedInput
	}

	return out, nil
}

func readExtraLen(stream []byte, pos int, nibble int) (length int, next int, err error) {
	if nibble < 15 {
		return nibble, pos, nil
	}

	length = 15
	for {
		if pos >= len(stream) {
			return 0, pos, errs.ErrTruncatedInput
		}
		b := stream[pos]
		pos++
		length += int(b)
		if b != 0xFF {
			break
		}
	}

	return length, pos, nil
}
