package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MarshalJSON encodes the node as plain JSON.  Object keys keep their
// order, sets become arrays, bytes are base64 and times RFC 3339.
// Reals JSON cannot represent become the strings "NaN", "Infinity"
// and "-Infinity".
func (y *Node) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := writeJSON(buf, y); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, y *Node) error {
	if y == nil {
		buf.WriteString("null")
		return nil
	}
	switch y.Type {
	case ObjectType:
		buf.WriteByte('{')
		for i, f := range y.Fields {
			if i != 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(f.String)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := writeJSON(buf, y.Values[i]); err != nil {
				return fmt.Errorf("%s: %w", pathString(f.String), err)
			}
		}
		buf.WriteByte('}')
		return nil
	case ArrayType, SetType:
		buf.WriteByte('[')
		for i, v := range y.Values {
			if i != 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, v); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case NumberType:
		if y.Float64 != nil {
			switch f := *y.Float64; {
			case math.IsNaN(f):
				buf.WriteString(`"NaN"`)
				return nil
			case math.IsInf(f, 1):
				buf.WriteString(`"Infinity"`)
				return nil
			case math.IsInf(f, -1):
				buf.WriteString(`"-Infinity"`)
				return nil
			}
		}
		d, err := json.Marshal(ToAny(y))
		if err != nil {
			return err
		}
		buf.Write(d)
		return nil
	case TimeType:
		d, err := json.Marshal(y.Time.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		buf.Write(d)
		return nil
	default:
		d, err := json.Marshal(ToAny(y))
		if err != nil {
			return err
		}
		buf.Write(d)
		return nil
	}
}
