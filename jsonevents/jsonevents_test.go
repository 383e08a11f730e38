package jsonevents

import (
	"errors"
	"io"
	"testing"

	"github.com/packr/packr/events"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, src *Source) []events.Event {
	t.Helper()

	var got []events.Event
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return got
		}
		require.NoError(t, err)
		got = append(got, ev)
	}
}

func TestEmptyObject(t *testing.T) {
	got := drain(t, New([]byte(`{}`)))
	require.Equal(t, []events.Event{
		{Kind: events.ObjectStart},
		{Kind: events.ObjectEnd},
	}, got)
}

func TestEmptyArray(t *testing.T) {
	got := drain(t, New([]byte(`[]`)))
	require.Equal(t, []events.Event{
		{Kind: events.ArrayStart, Count: -1},
		{Kind: events.ArrayEnd},
	}, got)
}

func TestSmallObject(t *testing.T) {
	got := drain(t, New([]byte(`{"id":42,"ok":true}`)))
	require.Equal(t, []events.Event{
		{Kind: events.ObjectStart},
		{Kind: events.Field, Str: "id"},
		{Kind: events.Int, IntV: 42},
		{Kind: events.Field, Str: "ok"},
		{Kind: events.Bool, BoolV: true},
		{Kind: events.ObjectEnd},
	}, got)
}

func TestNestedArrayOfObjects(t *testing.T) {
	got := drain(t, New([]byte(`[{"t":1},{"t":2}]`)))
	require.Equal(t, []events.Event{
		{Kind: events.ArrayStart, Count: -1},
		{Kind: events.ObjectStart},
		{Kind: events.Field, Str: "t"},
		{Kind: events.Int, IntV: 1},
		{Kind: events.ObjectEnd},
		{Kind: events.ObjectStart},
		{Kind: events.Field, Str: "t"},
		{Kind: events.Int, IntV: 2},
		{Kind: events.ObjectEnd},
		{Kind: events.ArrayEnd},
	}, got)
}

func TestFloatVsIntClassification(t *testing.T) {
	got := drain(t, New([]byte(`[1, 1.5, -3, -3.25, 1e3, 2E-2]`)))
	require.Len(t, got, 8) // ArrayStart + 6 numbers + ArrayEnd

	require.Equal(t, events.Event{Kind: events.Int, IntV: 1}, got[1])
	require.Equal(t, events.Event{Kind: events.Float, FloatV: 1.5}, got[2])
	require.Equal(t, events.Event{Kind: events.Int, IntV: -3}, got[3])
	require.Equal(t, events.Event{Kind: events.Float, FloatV: -3.25}, got[4])
	require.Equal(t, events.Event{Kind: events.Float, FloatV: 1000}, got[5])
	require.Equal(t, events.Event{Kind: events.Float, FloatV: 0.02}, got[6])
}

func TestStringEscapes(t *testing.T) {
	got := drain(t, New([]byte(`["a\nb\tc\"d\\e", "é"]`)))
	require.Equal(t, "a\nb\tc\"d\\e", got[1].Str)
	require.Equal(t, "é", got[2].Str)
}

func TestNullLiteral(t *testing.T) {
	got := drain(t, New([]byte(`[null]`)))
	require.Equal(t, events.Event{Kind: events.Null}, got[1])
}

func TestWhitespaceIsSkipped(t *testing.T) {
	got := drain(t, New([]byte("  { \"a\" : 1 ,  \"b\" : 2 }  ")))
	require.Equal(t, []events.Event{
		{Kind: events.ObjectStart},
		{Kind: events.Field, Str: "a"},
		{Kind: events.Int, IntV: 1},
		{Kind: events.Field, Str: "b"},
		{Kind: events.Int, IntV: 2},
		{Kind: events.ObjectEnd},
	}, got)
}

func TestUnterminatedStringFails(t *testing.T) {
	src := New([]byte(`{"a": "oops`))
	var err error
	for {
		_, e := src.Next()
		if e != nil {
			err = e
			break
		}
	}
	require.Error(t, err)
	var jerr *Err
	require.ErrorAs(t, err, &jerr)
}

func TestMissingColonFails(t *testing.T) {
	src := New([]byte(`{"a" 1}`))
	var err error
	for {
		_, e := src.Next()
		if e != nil {
			err = e
			break
		}
	}
	require.Error(t, err)
}

func TestUnexpectedCharacterFails(t *testing.T) {
	src := New([]byte(`{"a": @}`))
	var err error
	for {
		_, e := src.Next()
		if e != nil {
			err = e
			break
		}
	}
	require.Error(t, err)
}
