// Package events defines the value-event interface of spec §6: the ordered
// stream of events a source (typically a JSON lexer) feeds to the encoder.
// Nesting must be balanced; field events are only valid inside an object and
// must immediately precede the value event they name.
package events

import "io"

// Kind identifies the shape of one Event.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	Binary
	String
	Field
	ObjectStart
	ObjectEnd
	ArrayStart
	ArrayEnd
)

// Event is one item of the value-event stream.
//
// For Field and String events, Str holds the payload. For ArrayStart, Count
// holds the declared element count (spec §4.1 "ARRAY_START | varint element
// count"); a negative Count means the length is not known up front. The codec
// encoder does not read Count: it collects the array's elements and counts
// them itself.
type Event struct {
	Kind   Kind
	BoolV  bool
	IntV   int64
	FloatV float64
	BinV   []byte
	Str    string
	Count  int
}

// Source yields the next event in the stream. It returns io.EOF once the
// top-level value is complete and there is nothing more to read.
type Source interface {
	Next() (Event, error)
}

// ErrDone is an alias of io.EOF for readability at call sites that aren't
// otherwise touching io.
var ErrDone = io.EOF
