package events

import (
	"io"

	"github.com/packr/packr/document"
)

// docSource walks a document.Value depth-first, yielding it as an event
// stream. It is the in-memory counterpart to a streaming JSON lexer, used
// when the caller already has a materialized Document instead of a live byte
// source.
type docSource struct {
	stack   []frame
	pending *document.Value
}

type frame struct {
	kind     stepKind
	obj      []document.Field
	arr      []document.Value
	idx      int
	started  bool
	fieldSet bool // true once the Field event for the current object index has been emitted
}

type stepKind uint8

const (
	stepObject stepKind = iota
	stepArray
)

// FromDocument creates a Source that replays v as a balanced event stream.
func FromDocument(v document.Value) Source {
	s := &docSource{}
	s.pushChild(v)

	return s
}

func (s *docSource) Next() (Event, error) {
	for {
		if s.pending != nil {
			v := *s.pending
			s.pending = nil

			return s.scalarEvent(v), nil
		}

		if len(s.stack) == 0 {
			return Event{}, io.EOF
		}

		top := &s.stack[len(s.stack)-1]

		switch top.kind {
		case stepObject:
			if !top.started {
				top.started = true

				return Event{Kind: ObjectStart}, nil
			}

			if top.idx >= len(top.obj) {
				s.stack = s.stack[:len(s.stack)-1]

				return Event{Kind: ObjectEnd}, nil
			}

			if !top.fieldSet {
				top.fieldSet = true
				name := top.obj[top.idx].Name

				return Event{Kind: Field, Str: name}, nil
			}

			val := top.obj[top.idx].Value
			top.idx++
			top.fieldSet = false
			s.pushChild(val)

			continue
		case stepArray:
			if !top.started {
				top.started = true

				return Event{Kind: ArrayStart, Count: len(top.arr)}, nil
			}

			if top.idx >= len(top.arr) {
				s.stack = s.stack[:len(s.stack)-1]

				return Event{Kind: ArrayEnd}, nil
			}

			val := top.arr[top.idx]
			top.idx++
			s.pushChild(val)

			continue
		}
	}
}

func (s *docSource) pushChild(v document.Value) {
	switch v.Kind {
	case document.Object:
		s.stack = append(s.stack, frame{kind: stepObject, obj: v.ObjV})
	case document.Array:
		s.stack = append(s.stack, frame{kind: stepArray, arr: v.ArrV})
	default:
		vv := v
		s.pending = &vv
	}
}

func (s *docSource) scalarEvent(v document.Value) Event {
	switch v.Kind {
	case document.Null:
		return Event{Kind: Null}
	case document.Bool:
		return Event{Kind: Bool, BoolV: v.BoolV}
	case document.Int:
		return Event{Kind: Int, IntV: v.IntV}
	case document.Float:
		return Event{Kind: Float, FloatV: v.FloatV}
	case document.Binary:
		return Event{Kind: Binary, BinV: v.BinV}
	case document.String:
		return Event{Kind: String, Str: v.StrV}
	default:
		return Event{Kind: Null}
	}
}
