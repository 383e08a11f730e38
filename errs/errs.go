// Package errs defines the sentinel errors returned by the PACKR codec, per §7
// of the specification. None of these are ever panicked past a package
// boundary; encoders and decoders return them as ordinary Go errors so callers
// can match with errors.Is.
package errs

import "errors"

var (
	// ErrBufferFull is returned by a fixed-output-size sink when there is
	// insufficient space to write the next chunk.
	ErrBufferFull = errors.New("packr: buffer full")

	// ErrInvalidMagic is returned when a frame's header does not start with
	// the "PKR1" magic.
	ErrInvalidMagic = errors.New("packr: invalid magic")

	// ErrVersionMismatch is returned when a frame declares a version byte the
	// decoder does not support.
	ErrVersionMismatch = errors.New("packr: version mismatch")

	// ErrCrcMismatch is returned when the trailing CRC-32 does not match the
	// header+body of the frame. The whole frame is rejected; no partial
	// decode result is returned.
	ErrCrcMismatch = errors.New("packr: crc mismatch")

	// ErrInvalidToken is returned when the decoder encounters a first byte
	// that does not belong to any token range of §4.1.
	ErrInvalidToken = errors.New("packr: invalid token")

	// ErrTruncatedInput is returned when a token's declared payload runs past
	// the end of the available bytes.
	ErrTruncatedInput = errors.New("packr: truncated input")

	// ErrDictFull is an internal assertion failure: the LRU dictionary
	// invariant guarantees there is always an evictable slot. It should never
	// surface to a caller.
	ErrDictFull = errors.New("packr: dictionary full (internal invariant violated)")

	// ErrInvalidDelta is returned when a delta token appears for a field slot
	// whose delta memory has no preceding numeric value.
	ErrInvalidDelta = errors.New("packr: delta token without preceding numeric value")

	// ErrInvalidNesting is returned when the value-event source produces
	// unbalanced object_start/object_end or array_start/array_end events, or a
	// field event outside an object.
	ErrInvalidNesting = errors.New("packr: invalid event nesting")
)

// SinkError wraps an error returned by a caller-supplied sink's flush
// callback, per §7 "SinkError(code)". The encoder aborts further writes and
// surfaces this to its own caller without attempting recovery.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return "packr: sink error: " + e.Err.Error()
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// NewSinkError wraps err as a SinkError. Returns nil if err is nil.
func NewSinkError(err error) error {
	if err == nil {
		return nil
	}

	return &SinkError{Err: err}
}
