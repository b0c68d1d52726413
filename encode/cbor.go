package encode

import (
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/signadot/keyedarchive/ir"
)

// SetTag is the CBOR tag number registered for mathematical finite sets.
const SetTag = 258

// encMode writes Core Deterministic Encoding (RFC 8949 §4.2) with
// times as RFC 3339 text.
var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("encode: CBOR encoder initialization failed: " + err.Error())
	}
}

func encodeCBOR(node *ir.Node, w io.Writer) error {
	return encMode.NewEncoder(w).Encode(toCBOR(node))
}

// toCBOR converts node for the CBOR encoder.  Unordered sets carry
// [SetTag]; ordered sets are arrays.
func toCBOR(node *ir.Node) any {
	switch node.Type {
	case ir.ObjectType:
		res := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			res[f.String] = toCBOR(node.Values[i])
		}
		return res
	case ir.ArrayType, ir.SetType:
		res := make([]any, len(node.Values))
		for i, v := range node.Values {
			res[i] = toCBOR(v)
		}
		if node.Type == ir.SetType && !node.Ordered {
			return cbor.Tag{Number: SetTag, Content: res}
		}
		return res
	default:
		return ir.ToAny(node)
	}
}
