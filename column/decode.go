package column

import (
	"github.com/packr/packr/document"
	"github.com/packr/packr/errs"
	"github.com/packr/packr/internal/bitio"
	"github.com/packr/packr/scalar"
	"github.com/packr/packr/token"
)

// DecodeBatch reads one ULTRA_BATCH block (the tag itself must already have
// been consumed by the caller, matching how the codec package dispatches on
// the peeked tag) and returns the reconstructed rows as document.Object
// values.
func DecodeBatch(r *token.Reader, d Dicts) ([]document.Value, error) {
	rowCountU, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	rowCount := int(rowCountU)

	colCountU, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	colCount := int(colCountU)

	fields := make([][]document.Field, rowCount)
	for i := range fields {
		fields[i] = make([]document.Field, 0, colCount)
	}

	for c := 0; c < colCount; c++ {
		name, err := decodeFieldName(r, d)
		if err != nil {
			return nil, err
		}

		typeByte, err := r.ReadBytes(1)
		if err != nil {
			return nil, err
		}
		colType := Type(typeByte[0])

		flagsByte, err := r.ReadBytes(1)
		if err != nil {
			return nil, err
		}
		flags := flagsByte[0]

		hasNulls := flags&FlagHasNulls != 0

		var validity []bool
		if hasNulls {
			nbytes := (rowCount + 7) / 8
			vb, err := r.ReadBytes(nbytes)
			if err != nil {
				return nil, err
			}
			validity = unpackBitmap(vb, rowCount)
		} else {
			validity = make([]bool, rowCount)
			for i := range validity {
				validity[i] = true
			}
		}

		presentCount := 0
		for _, v := range validity {
			if v {
				presentCount++
			}
		}

		var values []document.Value
		switch {
		case flags&FlagConstant != 0:
			v, err := decodeScalar(r, d)
			if err != nil {
				return nil, err
			}
			values = repeatValue(v, presentCount)
		case flags&FlagDelta != 0:
			values, err = decodeDeltaColumn(r, colType, presentCount)
			if err != nil {
				return nil, err
			}
		case flags&FlagRLE != 0:
			values, err = decodeRLEColumn(r, d, presentCount)
			if err != nil {
				return nil, err
			}
		default:
			// Plain and MFV share this flags value (no bit set beyond
			// HAS_NULLS); told apart by peeking for the MFV_COLUMN token
			// that leads an MFV column body.
			var mfv bool
			if presentCount > 0 {
				if tag, ok := r.PeekTag(); ok && tag == token.MFVColumn {
					r.ReadTag()
					mfv = true
				}
			}

			if mfv {
				values, err = decodeMFVColumn(r, d, presentCount)
				if err != nil {
					return nil, err
				}
			} else {
				values = make([]document.Value, presentCount)
				for i := range values {
					values[i], err = decodeScalar(r, d)
					if err != nil {
						return nil, err
					}
				}
			}
		}

		vi := 0
		for row := 0; row < rowCount; row++ {
			var v document.Value
			if validity[row] {
				v = values[vi]
				vi++
			} else {
				v = document.NullValue()
			}
			fields[row] = append(fields[row], document.Field{Name: name, Value: v})
		}
	}

	rows := make([]document.Value, rowCount)
	for i := range rows {
		rows[i] = document.ObjectValue(fields[i])
	}

	return rows, nil
}

// decodeFieldName reads one field-name token (a field-dictionary reference
// or a NEW_FIELD literal) and returns the resolved name, mirroring
// scalar.WriteFieldName's encode-side routing.
func decodeFieldName(r *token.Reader, d Dicts) (string, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return "", err
	}

	if idx, ok := token.IsFieldRef(tag); ok {
		key, found := d.Fields.Key(idx)
		if !found {
			return "", errs.ErrInvalidToken
		}
		d.Fields.Touch(idx)

		return string(key), nil
	}

	if tag != token.NewField {
		return "", errs.ErrInvalidToken
	}

	n, err := r.ReadVarint()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}

	idx := d.Fields.SelectInsertSlot()
	d.Fields.Install(idx, b)

	return string(b), nil
}

func repeatValue(v document.Value, n int) []document.Value {
	out := make([]document.Value, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func decodeScalar(r *token.Reader, d Dicts) (document.Value, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return document.Value{}, err
	}

	if _, ok := token.IsFieldRef(tag); ok {
		return document.Value{}, errs.ErrInvalidToken
	}

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
	default:
		return document.Value{}, errs.ErrInvalidToken
	}
}

func decodeDeltaColumn(r *token.Reader, colType Type, presentCount int) ([]document.Value, error) {
	if presentCount == 0 {
		return nil, nil
	}

	base, err := decodeAbsolute(r, colType)
	if err != nil {
		return nil, err
	}

	restCount := presentCount - 1

	var deltas []int64
	if restCount > 0 {
		tag, ok := r.PeekTag()
		if !ok {
			return nil, errs.ErrTruncatedInput
		}

		switch tag {
		case token.BitpackCol:
			r.ReadTag() //nolint:errcheck // tag already confirmed present by PeekTag

			n, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			packed, err := r.ReadBytes((int(n) + 1) / 2)
			if err != nil {
				return nil, err
			}
			deltas, err = bitpackDecode(packed, int(n))
			if err != nil {
				return nil, err
			}
		case token.RiceColumn:
			r.ReadTag() //nolint:errcheck // tag already confirmed present by PeekTag

			n, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			kByte, err := r.ReadBytes(1)
			if err != nil {
				return nil, err
			}

			br := bitio.NewBitReader(r.Remaining())
			deltas, err = riceDecode(br, int(n), uint(kByte[0]))
			if err != nil {
				return nil, err
			}
			if err := r.Advance(br.BytePos()); err != nil {
				return nil, err
			}
		default:
			deltas, err = decodeLadderDeltas(r, restCount)
			if err != nil {
				return nil, err
			}
		}
	}

	out := make([]document.Value, presentCount)
	out[0] = base

	var runningInt int64
	var runningFixed int64
	if colType == TypeFloat {
		runningFixed = int64(scalar.QuantizeFloat32(base.FloatV))
	} else {
		runningInt = base.IntV
	}

	for i, d := range deltas {
		if colType == TypeFloat {
			runningFixed += d
			out[i+1] = document.FloatValue(scalar.DequantizeFloat32(int32(runningFixed)))
		} else {
			runningInt += d
			out[i+1] = document.IntValue(runningInt)
		}
	}

	return out, nil
}

func decodeAbsolute(r *token.Reader, colType Type) (document.Value, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return document.Value{}, err
	}

	switch {
	case colType == TypeFloat && tag == token.Float32:
		v, err := scalar.DecodeFloat32Payload(r)

		return document.FloatValue(v), err
	case tag == token.Int:
		v, err := scalar.DecodeIntPayload(r)

		return document.IntValue(v), err
	default:
		return document.Value{}, errs.ErrInvalidToken
	}
}

// decodeLadderDeltas reads n deltas encoded by the §4.4 ladder, expanding any
// RLE_REPEAT token encountered into its (full) run of zero deltas.
func decodeLadderDeltas(r *token.Reader, n int) ([]int64, error) {
	out := make([]int64, 0, n)
	for len(out) < n {
		tag, err := r.ReadTag()
		if err != nil {
			return nil, err
		}

		if tag == token.RLERepeat {
			run, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			for i := uint64(0); i < run; i++ {
				out = append(out, 0)
			}

			continue
		}

		delta, ok, err := r.DecodeDelta(tag)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.ErrInvalidDelta
		}
		out = append(out, delta)
	}

	return out, nil
}

// decodeRLEColumn reads values until presentCount have been reconstructed,
// expanding a run whenever the value it just read is followed by an
// RLE_REPEAT(run-1) token (spec §4.5; there is no leading run count).
func decodeRLEColumn(r *token.Reader, d Dicts, presentCount int) ([]document.Value, error) {
	out := make([]document.Value, 0, presentCount)
	for len(out) < presentCount {
		v, err := decodeScalar(r, d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		if tag, ok := r.PeekTag(); ok && tag == token.RLERepeat {
			r.ReadTag() //nolint:errcheck // tag already confirmed present by PeekTag

			run, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			for i := uint64(0); i < run; i++ {
				out = append(out, v)
			}
		}
	}

	return out, nil
}

// decodeMFVColumn reads the MFV candidate, an exception bitmap, then the
// exception values in order (spec §4.5; the MFV_COLUMN token itself has
// already been consumed by the caller).
func decodeMFVColumn(r *token.Reader, d Dicts, presentCount int) ([]document.Value, error) {
	majority, err := decodeScalar(r, d)
	if err != nil {
		return nil, err
	}

	nbytes := (presentCount + 7) / 8
	bm, err := r.ReadBytes(nbytes)
	if err != nil {
		return nil, err
	}
	isException := unpackBitmap(bm, presentCount)

	out := make([]document.Value, presentCount)
	for i := range out {
		if isException[i] {
			v, err := decodeScalar(r, d)
			if err != nil {
				return nil, err
			}
			out[i] = v
		} else {
			out[i] = majority
		}
	}

	return out, nil
}
