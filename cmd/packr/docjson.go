package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/packr/packr/document"
)

// writeJSON renders a document.Value back to JSON text. Binary values have
// no native JSON representation, so they round-trip as base64 strings,
// matching original_source/c's text dump mode.
func writeJSON(buf *bytes.Buffer, v document.Value) {
	switch v.Kind {
	case document.Null:
		buf.WriteString("null")
	case document.Bool:
		if v.BoolV {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case document.Int:
		buf.WriteString(strconv.FormatInt(v.IntV, 10))
	case document.Float:
		buf.WriteString(strconv.FormatFloat(v.FloatV, 'g', -1, 64))
	case document.String:
		writeJSONString(buf, v.StrV)
	case document.Binary:
		writeJSONString(buf, base64.StdEncoding.EncodeToString(v.BinV))
	case document.Object:
		buf.WriteByte('{')
		for i, f := range v.ObjV {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, f.Name)
			buf.WriteByte(':')
			writeJSON(buf, f.Value)
		}
		buf.WriteByte('}')
	case document.Array:
		buf.WriteByte('[')
		for i, el := range v.ArrV {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, el)
		}
		buf.WriteByte(']')
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
