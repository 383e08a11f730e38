// Package column implements the columnar batch encoding of spec §4.5: schema
// discovery over an array of objects, per-column strategy selection, and the
// ULTRA_BATCH/BATCH_PARTIAL wire encoding built on top of the scalar token
// ladder, Rice coding and nibble bitpacking.
package column

import "github.com/packr/packr/document"

// Type is the widened scalar type of one discovered column.
type Type uint8

const (
	// TypeNull means every row's value for this column was null (or the
	// column widened to nothing observed at all).
	TypeNull Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeBinary
	// TypeMixed means the column's values don't widen to a single scalar
	// type (e.g. a string next to a number); such a column is encoded
	// row-by-row with the ordinary scalar token ladder instead of a
	// columnar strategy.
	TypeMixed
)

// Column describes one discovered column of a batch.
type Column struct {
	Name     string
	Type     Type
	HasNulls bool
}

// Schema is the discovered shape of a batch of object rows: the union of all
// field names seen, each widened to a common type.
type Schema struct {
	Columns []Column
}

// Discover computes the batch schema for rows, which must each be a
// document.Object value. Key order is first-seen order across rows (matching
// the teacher's deterministic-iteration-order convention elsewhere in the
// codebase). Non-object rows make columnar batching inapplicable; the caller
// should fall back to encoding such arrays element-by-element.
func Discover(rows []document.Value) (Schema, bool) {
	order := make([]string, 0)
	seen := map[string]int{}
	types := make([]Type, 0)
	hasNulls := make([]bool, 0)
	present := make([][]bool, 0) // present[col][row]

	for _, row := range rows {
		if row.Kind != document.Object {
			return Schema{}, false
		}
	}

	for rowIdx, row := range rows {
		for _, f := range row.ObjV {
			idx, ok := seen[f.Name]
			if !ok {
				idx = len(order)
				seen[f.Name] = idx
				order = append(order, f.Name)
				types = append(types, TypeNull)
				hasNulls = append(hasNulls, false)
				col := make([]bool, len(rows))
				present = append(present, col)
			}
			present[idx][rowIdx] = true

			t := valueType(f.Value)
			if t == TypeNull {
				hasNulls[idx] = true

				continue
			}

			types[idx] = widen(types[idx], t)
		}
	}

	for idx, col := range present {
		for rowIdx := range rows {
			if !col[rowIdx] {
				hasNulls[idx] = true

				break
			}
		}
	}

	cols := make([]Column, len(order))
	for i, name := range order {
		cols[i] = Column{Name: name, Type: types[i], HasNulls: hasNulls[i]}
	}

	return Schema{Columns: cols}, true
}

func valueType(v document.Value) Type {
	switch v.Kind {
	case document.Null:
		return TypeNull
	case document.Bool:
		return TypeBool
	case document.Int:
		return TypeInt
	case document.Float:
		return TypeFloat
	case document.String:
		return TypeString
	case document.Binary:
		return TypeBinary
	default:
		return TypeMixed
	}
}

// widen combines the running type for a column with a newly observed value's
// type. NULL never widens (callers skip it before calling widen). INT widens
// to FLOAT when a FLOAT value is later seen in the same column (or
// vice-versa); any other combination of distinct types collapses to
// TypeMixed.
func widen(cur, next Type) Type {
	if cur == TypeNull {
		return next
	}
	if cur == next {
		return cur
	}

	if (cur == TypeInt && next == TypeFloat) || (cur == TypeFloat && next == TypeInt) {
		return TypeFloat
	}

	return TypeMixed
}

// ExtractColumn pulls the column named name out of rows as a slice aligned
// one-to-one with rows; missing/null entries are document.NullValue().
func ExtractColumn(rows []document.Value, name string) []document.Value {
	out := make([]document.Value, len(rows))
	for i, row := range rows {
		if v, ok := row.Get(name); ok {
			out[i] = v
		} else {
			out[i] = document.NullValue()
		}
	}

	return out
}
