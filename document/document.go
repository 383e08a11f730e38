// Package document defines the in-memory tree form of spec §3's Document data
// model: null, bool, int, float (double precision), binary, string, ordered
// object (field -> value, insertion order preserved), and ordered array.
//
// This is the tree the codec encoder builds from the whole value-event stream
// before it writes any token, the shape the column analyzer reads batch rows
// in, and the tree the codec decoder returns.
package document

// Kind identifies which field of Value is meaningful.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	Binary
	String
	Object
	Array
)

// Value is a single node of a Document tree.
type Value struct {
	Kind   Kind
	BoolV  bool
	IntV   int64
	FloatV float64
	BinV   []byte
	StrV   string
	ObjV   []Field
	ArrV   []Value
}

// Field is one field of an object, in insertion order.
type Field struct {
	Name  string
	Value Value
}

// Get returns the value of the named field and whether it was found.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.ObjV {
		if f.Name == name {
			return f.Value, true
		}
	}

	return Value{}, false
}

func NullValue() Value            { return Value{Kind: Null} }
func BoolValue(b bool) Value      { return Value{Kind: Bool, BoolV: b} }
func IntValue(i int64) Value      { return Value{Kind: Int, IntV: i} }
func FloatValue(f float64) Value  { return Value{Kind: Float, FloatV: f} }
func BinaryValue(b []byte) Value  { return Value{Kind: Binary, BinV: b} }
func StringValue(s string) Value  { return Value{Kind: String, StrV: s} }
func ObjectValue(f []Field) Value { return Value{Kind: Object, ObjV: f} }
func ArrayValue(a []Value) Value  { return Value{Kind: Array, ArrV: a} }
