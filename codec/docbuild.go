package codec

import (
	"github.com/packr/packr/document"
	"github.com/packr/packr/errs"
	"github.com/packr/packr/events"
)

var errInvalidEventSequence = errs.ErrInvalidNesting

// buildValue materializes the next complete value off src into a
// document.Value tree. This is the inverse of events.FromDocument, used so
// the encoder can look ahead far enough to discover whether an array is
// uniformly objects (and thus columnar-batchable) before committing to a
// wire strategy.
func buildValue(src events.Source) (document.Value, error) {
	ev, err := src.Next()
	if err != nil {
		return document.Value{}, err
	}

	return buildValueFrom(src, ev)
}

func buildValueFrom(src events.Source, ev events.Event) (document.Value, error) {
	switch ev.Kind {
	case events.Null:
		return document.NullValue(), nil
	case events.Bool:
		return document.BoolValue(ev.BoolV), nil
	case events.Int:
		return document.IntValue(ev.IntV), nil
	case events.Float:
		return document.FloatValue(ev.FloatV), nil
	case events.Binary:
		return document.BinaryValue(ev.BinV), nil
	case events.String:
		return document.StringValue(ev.Str), nil
	case events.ObjectStart:
		return buildObject(src)
	case events.ArrayStart:
		return buildArray(src)
	default:
		return document.Value{}, errInvalidEventSequence
	}
}

func buildObject(src events.Source) (document.Value, error) {
	fields := make([]document.Field, 0)

	for {
		ev, err := src.Next()
		if err != nil {
			return document.Value{}, err
		}

		if ev.Kind == events.ObjectEnd {
			return document.ObjectValue(fields), nil
		}

		if ev.Kind != events.Field {
			return document.Value{}, errInvalidEventSequence
		}

		val, err := buildValue(src)
		if err != nil {
			return document.Value{}, err
		}

		fields = append(fields, document.Field{Name: ev.Str, Value: val})
	}
}

func buildArray(src events.Source) (document.Value, error) {
	elems := make([]document.Value, 0)

	for {
		ev, err := src.Next()
		if err != nil {
			return document.Value{}, err
		}

		if ev.Kind == events.ArrayEnd {
			return document.ArrayValue(elems), nil
		}

		val, err := buildValueFrom(src, ev)
		if err != nil {
			return document.Value{}, err
		}

		elems = append(elems, val)
	}
}
