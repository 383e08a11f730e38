// Package packr provides a structure-first binary codec for semi-structured
// telemetry records.
//
// PACKR encodes JSON-shaped documents (objects, arrays, and scalars) into a
// compact, self-delimited token stream. Unlike a general-purpose compressor
// run over JSON text, PACKR understands the shape of the data it is encoding:
// repeated field names and string values are deduplicated through small
// bounded dictionaries, numeric fields delta-encode against their own
// previous value, and uniform arrays of objects are transposed into a
// columnar batch that picks a per-column strategy (constant, delta, run
// length, most-frequent-value) instead of repeating every field name on
// every row.
//
// # Core Features
//
//   - Single-byte token alphabet with packed dictionary-reference ranges
//   - Three independent 64-entry LRU dictionaries (field names, strings, MAC
//     addresses), synchronized between encoder and decoder from the token
//     stream alone
//   - Per-field delta memory with a tiered encoding ladder (single-byte
//     zero/one/minus-one and small tokens, a biased one-byte medium form, and
//     a zigzag-varint large form)
//   - Columnar batch encoding for uniform object arrays, with streaming
//     support for large top-level arrays
//   - A bespoke LZ77 envelope and a framed container with a CRC-32 checksum
//
// # Basic Usage
//
// Encoding and decoding a JSON document:
//
//	import (
//	    "github.com/packr/packr/codec"
//	    "github.com/packr/packr/jsonevents"
//	)
//
//	enc := codec.NewEncoder()
//	frame, err := enc.Encode(jsonevents.New([]byte(`{"device":"eth0","rx_bytes":128}`)))
//	if err != nil {
//	    // handle error
//	}
//
//	dec := codec.NewDecoder()
//	doc, err := dec.Decode(frame)
//	if err != nil {
//	    // handle error
//	}
//
// See the codec, column, delta, dict, and token packages for the individual
// layers this builds on, and cmd/packr for a command-line encoder/decoder.
package packr
