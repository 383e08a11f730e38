package codec

import (
	"testing"

	"github.com/packr/packr/document"
	"github.com/packr/packr/jsonevents"
	"github.com/stretchr/testify/require"
)

// TestEncodeFromJSONSource exercises the full pipeline named in spec §6:
// raw JSON text through jsonevents.Source, through buildValue (via
// Encoder.Encode), through the frame, and back through Decoder.Decode.
func TestEncodeFromJSONSource(t *testing.T) {
	src := jsonevents.New([]byte(`{"id":42,"ok":true,"tags":["a","b"],"ratio":0.5}`))

	enc := NewEncoder()
	encoded, err := enc.Encode(src)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.Decode(encoded)
	require.NoError(t, err)

	want := document.ObjectValue([]document.Field{
		{Name: "id", Value: document.IntValue(42)},
		{Name: "ok", Value: document.BoolValue(true)},
		{Name: "tags", Value: document.ArrayValue([]document.Value{
			document.StringValue("a"), document.StringValue("b"),
		})},
		{Name: "ratio", Value: document.FloatValue(0.5)},
	})
	require.Equal(t, want, got)
}

func TestEncodeFromJSONSourceArrayOfRecords(t *testing.T) {
	src := jsonevents.New([]byte(`[{"t":100},{"t":101},{"t":102}]`))

	enc := NewEncoder()
	encoded, err := enc.Encode(src)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.Decode(encoded)
	require.NoError(t, err)

	want := document.ArrayValue([]document.Value{
		document.ObjectValue([]document.Field{{Name: "t", Value: document.IntValue(100)}}),
		document.ObjectValue([]document.Field{{Name: "t", Value: document.IntValue(101)}}),
		document.ObjectValue([]document.Field{{Name: "t", Value: document.IntValue(102)}}),
	})
	require.Equal(t, want, got)
}

func TestEncodePropagatesSourceError(t *testing.T) {
	src := jsonevents.New([]byte(`{"a": }`))

	enc := NewEncoder()
	_, err := enc.Encode(src)
	require.Error(t, err)
}
