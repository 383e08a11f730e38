package codec

import (
	"github.com/packr/packr/column"
	"github.com/packr/packr/delta"
	"github.com/packr/packr/dict"
	"github.com/packr/packr/document"
	"github.com/packr/packr/events"
	"github.com/packr/packr/frame"
	"github.com/packr/packr/scalar"
	"github.com/packr/packr/token"
)

// Encoder turns a value-event stream into a complete PACKR frame: it owns
// the three dictionaries, the per-field delta memory, and the streaming
// batch scheduler's thresholds.
type Encoder struct {
	cfg Config
}

// NewEncoder creates an Encoder. Each call to Encode starts fresh
// dictionaries and delta memory (spec §3: "resets on frame start"), so a
// single Encoder value can be reused across many independent frames.
func NewEncoder(opts ...Option) *Encoder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Encoder{cfg: cfg}
}

// Encode consumes src to completion and returns one framed, checksummed
// PACKR byte stream.
func (e *Encoder) Encode(src events.Source) ([]byte, error) {
	root, err := buildValue(src)
	if err != nil {
		return nil, err
	}

	return e.EncodeDocument(root)
}

// EncodeDocument encodes an already-materialized document.Value tree (the
// jsonevents path funnels through buildValue into this same entry point, and
// callers that already hold a Document can skip the event stream entirely).
func (e *Encoder) EncodeDocument(root document.Value) ([]byte, error) {
	d := column.Dicts{
		Fields:  dict.New(e.cfg.DictCapacity),
		Strings: dict.New(e.cfg.DictCapacity),
		Macs:    dict.New(e.cfg.DictCapacity),
	}
	mem := delta.NewMemory(e.cfg.DictCapacity)

	w := token.NewWriter()
	defer w.Finish()

	if err := e.writeValue(w, d, mem, root, true); err != nil {
		return nil, err
	}

	return frame.Encode(w.Bytes(), w.SymbolCount(), e.cfg.UseLZ77), nil
}

// streamChunkSize bounds how much body is handed to the LZ77 streaming
// encoder per call in EncodeToSink; it has no effect on the wire format,
// only on how finely compressed output is interleaved with body production.
const streamChunkSize = 4096

// EncodeToSink is Encode's streaming counterpart (spec §4.8's streaming frame
// variant): instead of returning one complete byte slice, it pushes the
// frame to sink incrementally as it is produced. With LZ77 disabled this
// degenerates to a single sink call carrying the same bytes Encode would
// have returned; with LZ77 enabled, the whole document and its token stream
// are still built in memory first, and the body is then pushed through
// frame.StreamEncoder in streamChunkSize pieces, so the compressed output is
// never buffered in full before reaching sink.
func (e *Encoder) EncodeToSink(src events.Source, sink func([]byte) error) error {
	root, err := buildValue(src)
	if err != nil {
		return err
	}

	return e.EncodeDocumentToSink(root, sink)
}

// EncodeDocumentToSink is EncodeToSink for an already-materialized document.
func (e *Encoder) EncodeDocumentToSink(root document.Value, sink func([]byte) error) error {
	d := column.Dicts{
		Fields:  dict.New(e.cfg.DictCapacity),
		Strings: dict.New(e.cfg.DictCapacity),
		Macs:    dict.New(e.cfg.DictCapacity),
	}
	mem := delta.NewMemory(e.cfg.DictCapacity)

	w := token.NewWriter()
	defer w.Finish()

	if err := e.writeValue(w, d, mem, root, true); err != nil {
		return err
	}

	body := w.Bytes()

	if !e.cfg.UseLZ77 {
		return sink(frame.Encode(body, w.SymbolCount(), false))
	}

	se := frame.NewStreamEncoder(sink)
	if err := se.Start(w.SymbolCount()); err != nil {
		return err
	}

	for i := 0; i < len(body); i += streamChunkSize {
		end := i + streamChunkSize
		if end > len(body) {
			end = len(body)
		}
		if err := se.WriteBody(body[i:end]); err != nil {
			return err
		}
	}

	return se.Finish()
}

func (e *Encoder) writeValue(w *token.Writer, d column.Dicts, mem *delta.Memory, v document.Value, topLevel bool) error {
	switch v.Kind {
	case document.Null:
		w.NullTok()
	case document.Bool:
		w.Bool(v.BoolV)
	case document.Int:
		w.Int(v.IntV)
	case document.Float:
		writeFloat(w, v.FloatV)
	case document.Binary:
		scalar.EncodeBinary(w, v.BinV)
	case document.String:
		scalar.WriteStringValue(w, d.Strings, d.Macs, v.StrV)
	case document.Object:
		e.writeObject(w, d, mem, v.ObjV)
	case document.Array:
		return e.writeArray(w, d, mem, v.ArrV, topLevel)
	}

	return nil
}

func (e *Encoder) writeObject(w *token.Writer, d column.Dicts, mem *delta.Memory, fieldList []document.Field) {
	w.ObjectStartTok()

	for _, f := range fieldList {
		idx := scalar.WriteFieldName(w, d.Fields, f.Name)
		e.writeFieldValue(w, d, mem, idx, f.Value)
	}

	w.ObjectEndTok()
}

// writeFieldValue encodes one object field's value, routing int/float
// scalars through the per-field delta memory (spec §4.4); nested
// objects/arrays/strings/etc. have no delta representation and fall back to
// writeValue.
func (e *Encoder) writeFieldValue(w *token.Writer, d column.Dicts, mem *delta.Memory, fieldSlot int, v document.Value) {
	switch v.Kind {
	case document.Int:
		delta.EncodeInt(w, mem, fieldSlot, v.IntV)
	case document.Float:
		writeFieldFloat(w, mem, fieldSlot, v.FloatV)
	default:
		_ = e.writeValue(w, d, mem, v, false)
	}
}

// writeFloat chooses FLOAT32 when the value round-trips losslessly through
// the Q16.16 fixed-point representation, DOUBLE otherwise, per the scalar
// codec's lossy-vs-exact split (§4.3).
func writeFloat(w *token.Writer, v float64) {
	fixed := scalar.QuantizeFloat32(v)
	if scalar.DequantizeFloat32(fixed) == v {
		w.Float32(fixed)

		return
	}

	w.DoubleTok(v)
}

func writeFieldFloat(w *token.Writer, mem *delta.Memory, fieldSlot int, v float64) {
	fixed := scalar.QuantizeFloat32(v)
	if scalar.DequantizeFloat32(fixed) == v {
		delta.EncodeFloat32(w, mem, fieldSlot, fixed)

		return
	}

	// DOUBLE is never delta-compressed (§3), but still updates the delta
	// memory with its quantized units so a later FLOAT32 for the same
	// field can delta off of it without drift.
	w.DoubleTok(v)
	mem.SetFixed(fieldSlot, int64(fixed))
}

func (e *Encoder) writeArray(w *token.Writer, d column.Dicts, mem *delta.Memory, elems []document.Value, topLevel bool) error {
	_, uniform := column.Discover(elems)

	// A batch decodes every row with the full column list in first-seen
	// order, so a field missing from one row would come back as a null
	// field; only arrays whose objects share one field list are batched.
	for i := 1; uniform && i < len(elems); i++ {
		a, b := elems[0].ObjV, elems[i].ObjV
		uniform = len(a) == len(b)
		for j := 0; uniform && j < len(a); j++ {
			uniform = a[j].Name == b[j].Name
		}
	}

	if !uniform || len(elems) == 0 {
		w.ArrayStartTok(len(elems))
		for _, el := range elems {
			if err := e.writeValue(w, d, mem, el, false); err != nil {
				return err
			}
		}
		w.ArrayEndTok()

		return nil
	}

	if topLevel && e.exceedsBatchThresholds(elems) {
		e.writeStreamingArray(w, d, elems)

		return nil
	}

	w.ArrayStartTok(len(elems))
	if !column.EncodeBatch(w, d, elems) {
		// Discover said uniform but EncodeBatch disagreed (shouldn't
		// happen); fall back element-by-element rather than desync.
		for _, el := range elems {
			if err := e.writeValue(w, d, mem, el, false); err != nil {
				return err
			}
		}
	}
	w.ArrayEndTok()

	return nil
}

func (e *Encoder) exceedsBatchThresholds(elems []document.Value) bool {
	if len(elems) > e.cfg.MaxBatchRows {
		return true
	}

	return estimateByteSize(elems) > e.cfg.MaxBatchBytes
}

// estimateByteSize is a cheap pre-flight size estimate (not the actual
// encoded size) used only to decide whether to engage the streaming
// scheduler of §4.6.
func estimateByteSize(elems []document.Value) int {
	total := 0
	for _, el := range elems {
		total += estimateValueSize(el)
	}

	return total
}

func estimateValueSize(v document.Value) int {
	switch v.Kind {
	case document.String:
		return len(v.StrV) + 2
	case document.Binary:
		return len(v.BinV) + 2
	case document.Object:
		n := 4
		for _, f := range v.ObjV {
			n += len(f.Name) + estimateValueSize(f.Value)
		}

		return n
	case document.Array:
		n := 4
		for _, e := range v.ArrV {
			n += estimateValueSize(e)
		}

		return n
	default:
		return 8
	}
}

func (e *Encoder) writeStreamingArray(w *token.Writer, d column.Dicts, elems []document.Value) {
	w.ArrayStreamTok()

	i := 0
	for i < len(elems) {
		j := i + 1
		size := estimateValueSize(elems[i])
		for j < len(elems) && j-i < e.cfg.MaxBatchRows && size < e.cfg.MaxBatchBytes {
			size += estimateValueSize(elems[j])
			j++
		}

		// Any subset of a uniformly-object array is itself uniform, so
		// this always succeeds; Discover over the whole array already
		// confirmed every element is a document.Object.
		column.EncodeBatchPartial(w, d, elems[i:j])

		i = j
	}

	w.ArrayEndTok()
}
