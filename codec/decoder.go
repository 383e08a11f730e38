package codec

import (
	"github.com/packr/packr/column"
	"github.com/packr/packr/delta"
	"github.com/packr/packr/dict"
	"github.com/packr/packr/document"
	"github.com/packr/packr/errs"
	"github.com/packr/packr/frame"
	"github.com/packr/packr/scalar"
	"github.com/packr/packr/token"
)

// Decoder reverses Encoder: it parses a PACKR frame and reconstructs the
// document.Value tree it was built from.
type Decoder struct {
	cfg Config
}

// NewDecoder creates a Decoder. Options must match the Encoder that produced
// the frames this Decoder will read (dictionary capacity in particular — see
// Config's doc comment).
func NewDecoder(opts ...Option) *Decoder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Decoder{cfg: cfg}
}

// Decode parses one complete framed byte stream back into a document.Value.
func (d *Decoder) Decode(data []byte) (document.Value, error) {
	fr, err := frame.Decode(data)
	if err != nil {
		return document.Value{}, err
	}

	dicts := column.Dicts{
		Fields:  dict.New(d.cfg.DictCapacity),
		Strings: dict.New(d.cfg.DictCapacity),
		Macs:    dict.New(d.cfg.DictCapacity),
	}
	mem := delta.NewMemory(d.cfg.DictCapacity)

	r := token.NewReader(fr.Body)

	v, err := readValue(r, dicts, mem)
	if err != nil {
		return document.Value{}, err
	}

	if !r.Done() {
		return document.Value{}, errs.ErrTruncatedInput
	}

	return v, nil
}

func readValue(r *token.Reader, d column.Dicts, mem *delta.Memory) (document.Value, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return document.Value{}, err
	}

	return readValueTag(r, d, mem, tag)
}

func readValueTag(r *token.Reader, d column.Dicts, mem *delta.Memory, tag token.Tag) (document.Value, error) {
	if idx, ok := token.IsStringRef(tag); ok {
		key, found := d.Strings.Key(idx)
		if !found {
			return document.Value{}, errs.ErrInvalidToken
		}
		d.Strings.Touch(idx)

		return document.StringValue(string(key)), nil
	}

	if idx, ok := token.IsMacRef(tag); ok {
		key, found := d.Macs.Key(idx)
		if !found {
			return document.Value{}, errs.ErrInvalidToken
		}
		d.Macs.Touch(idx)

		var mac [token.MacLen]byte
		copy(mac[:], key)

		return document.StringValue(scalar.MACString(mac)), nil
	}

	switch tag {
	case token.Null:
		return document.NullValue(), nil
	case token.BoolTrue:
		return document.BoolValue(true), nil
	case token.BoolFalse:
		return document.BoolValue(false), nil
	case token.Int:
		v, err := scalar.DecodeIntPayload(r)

		return document.IntValue(v), err
	case token.Float32:
		v, err := scalar.DecodeFloat32Payload(r)

		return document.FloatValue(v), err
	case token.Double:
		v, err := scalar.DecodeDoublePayload(r)

		return document.FloatValue(v), err
	case token.Binary:
		b, err := scalar.DecodeBinaryPayload(r)

		return document.BinaryValue(b), err
	case token.NewString:
		n, err := r.ReadVarint()
		if err != nil {
			return document.Value{}, err
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return document.Value{}, err
		}
		idx := d.Strings.SelectInsertSlot()
		d.Strings.Install(idx, b)

		return document.StringValue(string(b)), nil
	case token.NewMac:
		b, err := r.ReadBytes(token.MacLen)
		if err != nil {
			return document.Value{}, err
		}
		idx := d.Macs.SelectInsertSlot()
		d.Macs.Install(idx, b)
		var mac [token.MacLen]byte
		copy(mac[:], b)

		return document.StringValue(scalar.MACString(mac)), nil
	case token.ObjectStart:
		return readObject(r, d, mem)
	case token.ArrayStart:
		return readArray(r, d, mem)
	case token.ArrayStream:
		return readStreamingArray(r, d, mem)
	default:
		if _, ok, _ := r.DecodeDelta(tag); ok {
			return document.Value{}, errs.ErrInvalidDelta
		}

		return document.Value{}, errs.ErrInvalidToken
	}
}

func readFieldName(r *token.Reader, fields *dict.Dict) (string, int, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return "", 0, err
	}

	if idx, ok := token.IsFieldRef(tag); ok {
		key, found := fields.Key(idx)
		if !found {
			return "", 0, errs.ErrInvalidToken
		}
		fields.Touch(idx)

		return string(key), idx, nil
	}

	if tag != token.NewField {
		return "", 0, errs.ErrInvalidToken
	}

	n, err := r.ReadVarint()
	if err != nil {
		return "", 0, err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", 0, err
	}

	idx := fields.SelectInsertSlot()
	fields.Install(idx, b)

	return string(b), idx, nil
}

func readObject(r *token.Reader, d column.Dicts, mem *delta.Memory) (document.Value, error) {
	fields := make([]document.Field, 0)

	for {
		tag, ok := r.PeekTag()
		if !ok {
			return document.Value{}, errs.ErrTruncatedInput
		}
		if tag == token.ObjectEnd {
			r.ReadTag() //nolint:errcheck

			return document.ObjectValue(fields), nil
		}

		name, idx, err := readFieldName(r, d.Fields)
		if err != nil {
			return document.Value{}, err
		}

		val, err := readFieldValue(r, d, mem, idx)
		if err != nil {
			return document.Value{}, err
		}

		fields = append(fields, document.Field{Name: name, Value: val})
	}
}

// readFieldValue mirrors Encoder.writeFieldValue: a delta token standing in
// for an int/float field resolves against the field's delta memory slot.
func readFieldValue(r *token.Reader, d column.Dicts, mem *delta.Memory, fieldSlot int) (document.Value, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return document.Value{}, err
	}

	if deltaVal, ok, derr := r.DecodeDelta(tag); ok {
		if derr != nil {
			return document.Value{}, derr
		}

		if mem.Kind(fieldSlot) == delta.KindInt {
			v := delta.ApplyDeltaToInt(mem, fieldSlot, deltaVal)

			return document.IntValue(v), nil
		}

		v := delta.ApplyDeltaToFixed(mem, fieldSlot, deltaVal)

		return document.FloatValue(scalar.DequantizeFloat32(int32(v))), nil
	}

	switch tag {
	case token.Int:
		v, err := scalar.DecodeIntPayload(r)
		if err != nil {
			return document.Value{}, err
		}
		mem.SetInt(fieldSlot, v)

		return document.IntValue(v), nil
	case token.Float32:
		v, err := scalar.DecodeFloat32Payload(r)
		if err != nil {
			return document.Value{}, err
		}
		mem.SetFixed(fieldSlot, int64(scalar.QuantizeFloat32(v)))

		return document.FloatValue(v), nil
	case token.Double:
		v, err := scalar.DecodeDoublePayload(r)
		if err != nil {
			return document.Value{}, err
		}
		mem.SetFixed(fieldSlot, int64(scalar.QuantizeFloat32(v)))

		return document.FloatValue(v), nil
	default:
		return readValueTag(r, d, mem, tag)
	}
}

func readArray(r *token.Reader, d column.Dicts, mem *delta.Memory) (document.Value, error) {
	count, err := r.ReadVarint()
	if err != nil {
		return document.Value{}, err
	}

	if count == 0 {
		if _, err := r.ReadTag(); err != nil { // ARRAY_END
			return document.Value{}, err
		}

		return document.ArrayValue(nil), nil
	}

	tag, ok := r.PeekTag()
	if !ok {
		return document.Value{}, errs.ErrTruncatedInput
	}

	var elems []document.Value
	if tag == token.UltraBatch {
		r.ReadTag() //nolint:errcheck

		rows, err := column.DecodeBatch(r, d)
		if err != nil {
			return document.Value{}, err
		}
		elems = rows
	} else {
		elems = make([]document.Value, 0, count)
		for uint64(len(elems)) < count {
			v, err := readValue(r, d, mem)
			if err != nil {
				return document.Value{}, err
			}
			elems = append(elems, v)
		}
	}

	endTag, err := r.ReadTag()
	if err != nil {
		return document.Value{}, err
	}
	if endTag != token.ArrayEnd {
		return document.Value{}, errs.ErrInvalidNesting
	}

	return document.ArrayValue(elems), nil
}

func readStreamingArray(r *token.Reader, d column.Dicts, mem *delta.Memory) (document.Value, error) {
	elems := make([]document.Value, 0)

	for {
		tag, ok := r.PeekTag()
		if !ok {
			return document.Value{}, errs.ErrTruncatedInput
		}

		if tag == token.ArrayEnd {
			r.ReadTag() //nolint:errcheck

			return document.ArrayValue(elems), nil
		}

		if tag != token.BatchPartial {
			return document.Value{}, errs.ErrInvalidNesting
		}

		r.ReadTag() //nolint:errcheck

		rows, err := column.DecodeBatch(r, d)
		if err != nil {
			return document.Value{}, err
		}
		elems = append(elems, rows...)
	}
}
